// Package stream subscribes to the gateway's live transaction stream so
// newly published posts appear in the current view without a fresh search.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"publicsquare/internal/domain"
)

const reconnectDelay = 5 * time.Second

// Subscriber connects to the gateway's websocket stream and forwards
// matching records to the controller.
type Subscriber struct {
	url        string
	controller *domain.Controller
	mapper     *domain.Mapper
	logger     *zap.Logger
}

// NewSubscriber creates a stream subscriber. The mapper should run with no
// reveal delay; live records arrive one at a time anyway.
func NewSubscriber(streamURL string, controller *domain.Controller, mapper *domain.Mapper, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		url:        streamURL,
		controller: controller,
		mapper:     mapper,
		logger:     logger,
	}
}

// Start connects to the stream and processes events until the context is
// cancelled. It automatically reconnects on transient errors.
func (s *Subscriber) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.subscribe(ctx); err != nil {
				s.logger.Error("stream connection error, reconnecting", zap.Error(err))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectDelay):
					// backoff before reconnecting
				}
			}
		}
	}
}

func (s *Subscriber) buildURL() string {
	u, _ := url.Parse(s.url)
	q := u.Query()
	q.Set("app", domain.AppName)
	q.Set("type", domain.RecordTypePost)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Subscriber) subscribe(ctx context.Context) error {
	wsURL := s.buildURL()
	s.logger.Info("connecting to gateway stream", zap.String("url", wsURL))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	defer conn.Close()

	s.logger.Info("connected to gateway stream")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		record, ok, err := parseEvent(message)
		if err != nil {
			s.logger.Error("failed to parse stream event", zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		// One record at a time; Collect applies no pacing to a single item.
		posts := s.mapper.Collect(ctx, []domain.RawRecord{record})
		if len(posts) == 0 {
			continue
		}
		s.controller.HandleIncoming(posts[0])
		s.logger.Debug("live post delivered", zap.String("id", posts[0].ID))
	}
}

// parseEvent decodes a stream message into a RawRecord. The second return
// is false for records that do not belong to this application.
func parseEvent(data []byte) (domain.RawRecord, bool, error) {
	var event gatewayEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.RawRecord{}, false, fmt.Errorf("unmarshal event: %w", err)
	}

	record := domain.RawRecord{
		ID:    event.ID,
		Owner: event.Owner.Address,
		Tags:  event.tags(),
	}
	if event.Block != nil {
		record.BlockTime = time.Unix(event.Block.Timestamp, 0).UTC()
	}

	if app, ok := record.TagValue(domain.TagAppName); !ok || app != domain.AppName {
		return domain.RawRecord{}, false, nil
	}
	if typ, ok := record.TagValue(domain.TagType); !ok || typ != domain.RecordTypePost {
		return domain.RawRecord{}, false, nil
	}

	return record, true, nil
}
