package domain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Pacer spaces out successive result emissions so the UI can reveal posts
// progressively. It is a presentation affordance only: NoDelay makes the
// mapper fully synchronous for tests.
type Pacer interface {
	// Pace blocks for one reveal interval or until the context is done.
	Pace(ctx context.Context) error
}

type fixedPacer time.Duration

func (p fixedPacer) Pace(ctx context.Context) error {
	if p <= 0 {
		return nil
	}
	select {
	case <-time.After(time.Duration(p)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewFixedPacer returns a Pacer that waits d between emissions. A
// non-positive d never waits.
func NewFixedPacer(d time.Duration) Pacer { return fixedPacer(d) }

// NoDelay is the zero-interval Pacer.
var NoDelay Pacer = fixedPacer(0)

// Mapper converts raw ledger edges into Posts. Bodies are resolved through
// the RecordData port; malformed records are skipped, never fatal.
type Mapper struct {
	data   RecordData
	pacer  Pacer
	logger *zap.Logger
}

// NewMapper creates a Mapper. A nil pacer means no reveal delay.
func NewMapper(data RecordData, pacer Pacer, logger *zap.Logger) *Mapper {
	if pacer == nil {
		pacer = NoDelay
	}
	return &Mapper{data: data, pacer: pacer, logger: logger}
}

// Stream lazily maps records onto the returned channel, preserving the
// input order and pacing successive emissions. The channel is closed once
// all records are mapped or the context is cancelled. Empty input closes
// immediately with no delay.
func (m *Mapper) Stream(ctx context.Context, records []RawRecord) <-chan Post {
	out := make(chan Post)

	go func() {
		defer close(out)

		emitted := 0
		for _, r := range records {
			post, err := m.mapRecord(ctx, r)
			if err != nil {
				m.logger.Warn("skipping malformed record", zap.String("id", r.ID), zap.Error(err))
				continue
			}

			if emitted > 0 {
				if err := m.pacer.Pace(ctx); err != nil {
					return
				}
			}

			select {
			case out <- post:
				emitted++
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Collect drains Stream into a slice.
func (m *Mapper) Collect(ctx context.Context, records []RawRecord) []Post {
	posts := make([]Post, 0, len(records))
	for post := range m.Stream(ctx, records) {
		posts = append(posts, post)
	}
	return posts
}

func (m *Mapper) mapRecord(ctx context.Context, r RawRecord) (Post, error) {
	if r.ID == "" {
		return Post{}, fmt.Errorf("record has no id")
	}
	if r.Owner == "" {
		return Post{}, fmt.Errorf("record has no owner")
	}
	if app, ok := r.TagValue(TagAppName); !ok || app != AppName {
		return Post{}, fmt.Errorf("record is not a %s record", AppName)
	}
	if typ, ok := r.TagValue(TagType); !ok || typ != RecordTypePost {
		return Post{}, fmt.Errorf("record is not a post")
	}

	body, err := m.data.Data(ctx, r.ID)
	if err != nil {
		return Post{}, fmt.Errorf("fetch body: %w", err)
	}

	// Unconfirmed records get a provisional timestamp until a block
	// includes them.
	ts := r.BlockTime
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	topic, _ := r.TagValue(TagTopic)

	return Post{
		ID:        r.ID,
		Author:    r.Owner,
		Body:      string(body),
		Topic:     topic,
		Timestamp: ts,
	}, nil
}
