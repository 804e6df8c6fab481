package domain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// callLog records the order of collaborator round trips.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeFunder struct {
	log    *callLog
	funded bool
	err    error
	block  chan struct{}
}

func (f *fakeFunder) Fund(ctx context.Context, byteLength int) (bool, error) {
	f.log.add("fund")
	if f.block != nil {
		<-f.block
	}
	return f.funded, f.err
}

type fakeUploader struct {
	log *callLog
	id  string
	err error
	rec *SignedRecord
}

func (u *fakeUploader) Upload(ctx context.Context, rec *SignedRecord) (string, error) {
	u.log.add("upload")
	u.rec = rec
	if u.err != nil {
		return "", u.err
	}
	return u.id, nil
}

// fakeWallet is a signing-capable provider used to drive the publisher.
type fakeWallet struct {
	fakeProvider
	log     *callLog
	signErr error
	signed  *Record
}

func (w *fakeWallet) SignRecord(ctx context.Context, rec *Record) (*SignedRecord, error) {
	w.log.add("sign")
	w.signed = rec
	if w.signErr != nil {
		return nil, w.signErr
	}
	return &SignedRecord{
		Data:      rec.Data,
		Tags:      rec.Tags,
		Owner:     w.addr,
		Signature: []byte("sig"),
	}, nil
}

type publisherFixture struct {
	publisher *Publisher
	wallet    *fakeWallet
	funder    *fakeFunder
	uploader  *fakeUploader
	log       *callLog
}

func newPublisherFixture(t *testing.T, connected bool) *publisherFixture {
	t.Helper()

	log := &callLog{}
	wallet := &fakeWallet{
		fakeProvider: fakeProvider{tag: ProviderNEAR, addr: "carol.near.mainnet"},
		log:          log,
	}
	funder := &fakeFunder{log: log, funded: true}
	uploader := &fakeUploader{log: log, id: "tx123"}

	connector := NewConnector([]WalletProvider{wallet}, nil, zap.NewNop())
	if connected {
		_, err := connector.Connect(context.Background(), ProviderNEAR)
		require.NoError(t, err)
	}

	return &publisherFixture{
		publisher: NewPublisher(connector, funder, uploader, zap.NewNop()),
		wallet:    wallet,
		funder:    funder,
		uploader:  uploader,
		log:       log,
	}
}

func TestPublishSuccess(t *testing.T) {
	f := newPublisherFixture(t, true)
	content := strings.Repeat("x", 280)
	f.publisher.SetDraft(content)

	id, err := f.publisher.Publish(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tx123", id)
	assert.Empty(t, f.publisher.Draft(), "draft is cleared on success")
	assert.Equal(t, SubmissionIdle, f.publisher.State(), "surface is editable again")

	last := f.publisher.LastSubmission()
	require.NotNil(t, last)
	assert.Equal(t, SubmissionSucceeded, last.State)
	assert.Equal(t, "tx123", last.PostID)
	assert.Equal(t, content, last.Content)

	assert.Equal(t, []string{"fund", "sign", "upload"}, f.log.entries())
}

func TestPublishEmitsTagSchemaInOrder(t *testing.T) {
	f := newPublisherFixture(t, true)
	f.publisher.SetDraft("hello permaweb")

	_, err := f.publisher.Publish(context.Background())
	require.NoError(t, err)

	require.NotNil(t, f.wallet.signed)
	assert.Equal(t, []Tag{
		{Name: "App-Name", Value: "PublicSquare"},
		{Name: "Content-Type", Value: "text/plain"},
		{Name: "Version", Value: "1.0.1"},
		{Name: "Type", Value: "post"},
		{Name: "Wallet", Value: "NEAR"},
	}, f.wallet.signed.Tags)
	assert.Equal(t, "hello permaweb", string(f.wallet.signed.Data))
	assert.Equal(t, f.wallet.signed.Tags, f.uploader.rec.Tags)
}

func TestPublishNotFunded(t *testing.T) {
	f := newPublisherFixture(t, true)
	f.funder.funded = false
	f.publisher.SetDraft("hello")

	_, err := f.publisher.Publish(context.Background())

	var fundErr *FundingError
	require.ErrorAs(t, err, &fundErr)
	assert.ErrorIs(t, err, ErrNotFunded)
	assert.Equal(t, 5, fundErr.ByteLength)

	assert.Equal(t, []string{"fund"}, f.log.entries(), "no signing or upload after a funding failure")
	assert.Equal(t, "hello", f.publisher.Draft(), "draft is preserved")
	assert.Equal(t, SubmissionIdle, f.publisher.State())
	assert.Equal(t, SubmissionFailed, f.publisher.LastSubmission().State)
}

func TestPublishFundingBackendError(t *testing.T) {
	f := newPublisherFixture(t, true)
	f.funder.err = errors.New("bundler down")
	f.publisher.SetDraft("hello")

	_, err := f.publisher.Publish(context.Background())

	var fundErr *FundingError
	require.ErrorAs(t, err, &fundErr)
	assert.Equal(t, []string{"fund"}, f.log.entries())
}

func TestPublishSigningRejected(t *testing.T) {
	f := newPublisherFixture(t, true)
	f.wallet.signErr = errors.New("user rejected signature")
	f.publisher.SetDraft("hello")

	_, err := f.publisher.Publish(context.Background())

	var signErr *SigningError
	require.ErrorAs(t, err, &signErr)
	assert.Equal(t, []string{"fund", "sign"}, f.log.entries(), "no upload after a signing failure")
	assert.Equal(t, "hello", f.publisher.Draft())
	assert.Equal(t, SubmissionIdle, f.publisher.State())
}

func TestPublishUploadFails(t *testing.T) {
	f := newPublisherFixture(t, true)
	f.uploader.err = errors.New("storage unavailable")
	f.publisher.SetDraft("hello")

	_, err := f.publisher.Publish(context.Background())

	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "hello", f.publisher.Draft(), "draft survives so the user can re-submit")
	assert.Equal(t, SubmissionIdle, f.publisher.State())
}

func TestPublishRequiresConnectedWallet(t *testing.T) {
	f := newPublisherFixture(t, false)
	f.publisher.SetDraft("hello")

	_, err := f.publisher.Publish(context.Background())

	assert.ErrorIs(t, err, ErrWalletNotConnected)
	assert.Empty(t, f.log.entries(), "no round trips without a session")
}

func TestPublishEmptyDraft(t *testing.T) {
	f := newPublisherFixture(t, true)

	_, err := f.publisher.Publish(context.Background())

	assert.ErrorIs(t, err, ErrEmptyDraft)
}

func TestPublishRefusesConcurrentSubmission(t *testing.T) {
	f := newPublisherFixture(t, true)
	f.funder.block = make(chan struct{})
	f.publisher.SetDraft("first")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := f.publisher.Publish(context.Background())
		assert.NoError(t, err)
	}()

	// Wait for the first submission to reach the funding step.
	require.Eventually(t, func() bool {
		return len(f.log.entries()) == 1
	}, waitFor, tick)

	_, err := f.publisher.Publish(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	f.publisher.SetDraft("overwritten")
	assert.Equal(t, "first", f.publisher.Draft(), "draft is read-only while in flight")

	close(f.funder.block)
	<-done
	assert.Equal(t, SubmissionIdle, f.publisher.State())
}
