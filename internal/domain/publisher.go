package domain

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher owns the funded-submission pipeline: fund the storage cost,
// construct the tagged record, sign it, upload it. The four steps are
// strictly sequential per submission; a second publish is refused while one
// is in flight, which is the submit-disable invariant seen by the UI.
type Publisher struct {
	mu        sync.Mutex
	connector *Connector
	funder    Funder
	uploader  Uploader
	logger    *zap.Logger

	draft string
	state SubmissionState
	last  *SubmissionRequest
}

// NewPublisher creates a Publisher. The connector supplies the session
// precondition and the signing capability.
func NewPublisher(connector *Connector, funder Funder, uploader Uploader, logger *zap.Logger) *Publisher {
	return &Publisher{
		connector: connector,
		funder:    funder,
		uploader:  uploader,
		logger:    logger,
		state:     SubmissionIdle,
	}
}

// SetDraft replaces the drafted content. Ignored while a submission is in
// flight, when the input surface is read-only.
func (p *Publisher) SetDraft(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != SubmissionIdle {
		return
	}
	p.draft = content
}

// Draft returns the current drafted content.
func (p *Publisher) Draft() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// State returns the current submission step, or SubmissionIdle when the
// input surface is editable.
func (p *Publisher) State() SubmissionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastSubmission returns a copy of the most recent submission request, or
// nil if none has been attempted.
func (p *Publisher) LastSubmission() *SubmissionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return nil
	}
	cp := *p.last
	return &cp
}

// Publish runs the drafted content through the submission pipeline and
// returns the assigned content id. On success the draft is cleared; on any
// failure it is preserved so the user can retry. The input surface is
// editable again in both outcomes.
func (p *Publisher) Publish(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state != SubmissionIdle {
		p.mu.Unlock()
		return "", ErrSubmissionInFlight
	}
	content := p.draft
	if content == "" {
		p.mu.Unlock()
		return "", ErrEmptyDraft
	}

	session := p.connector.Session()
	if !session.IsConnected {
		p.mu.Unlock()
		return "", ErrWalletNotConnected
	}

	req := &SubmissionRequest{
		ID:      uuid.NewString(),
		Content: content,
		Tags:    PostTags(session.Provider),
		State:   SubmissionFunding,
	}
	p.state = SubmissionFunding
	p.last = req
	p.mu.Unlock()

	id, err := p.run(ctx, req)

	p.mu.Lock()
	if err != nil {
		req.State = SubmissionFailed
	} else {
		req.State = SubmissionSucceeded
		req.PostID = id
		p.draft = ""
	}
	// The surface is re-enabled unconditionally, success or failure.
	p.state = SubmissionIdle
	p.mu.Unlock()

	return id, err
}

func (p *Publisher) run(ctx context.Context, req *SubmissionRequest) (string, error) {
	byteLength := len(req.Content)

	funded, err := p.funder.Fund(ctx, byteLength)
	if err != nil {
		return "", &FundingError{ByteLength: byteLength, Err: err}
	}
	if !funded {
		// No record is constructed or signed for an unfunded submission.
		return "", &FundingError{ByteLength: byteLength, Err: ErrNotFunded}
	}

	rec := &Record{
		Data: []byte(req.Content),
		Tags: req.Tags,
	}

	signer, err := p.connector.ActiveSigner()
	if err != nil {
		return "", &SigningError{Err: err}
	}

	p.setState(req, SubmissionSigning)
	signed, err := signer.SignRecord(ctx, rec)
	if err != nil {
		p.logger.Error("record signing failed", zap.String("submission", req.ID), zap.Error(err))
		return "", &SigningError{Err: err}
	}

	p.setState(req, SubmissionUploading)
	id, err := p.uploader.Upload(ctx, signed)
	if err != nil {
		p.logger.Error("record upload failed", zap.String("submission", req.ID), zap.Error(err))
		return "", &UploadError{Err: err}
	}

	p.logger.Info("post published",
		zap.String("submission", req.ID),
		zap.String("id", id),
		zap.Int("bytes", byteLength),
	)
	return id, nil
}

func (p *Publisher) setState(req *SubmissionRequest, s SubmissionState) {
	p.mu.Lock()
	req.State = s
	p.state = s
	p.mu.Unlock()
}
