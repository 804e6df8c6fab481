package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider is returned (wrapped in a ConnectionError) when a
	// connect is attempted with a provider tag that was never registered.
	ErrUnknownProvider = errors.New("unknown wallet provider")

	// ErrWalletNotConnected is returned when publish is attempted without a
	// connected wallet session.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrSubmissionInFlight is returned when publish is attempted while a
	// previous submission has not reached a terminal state.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")

	// ErrEmptyDraft is returned when publish is attempted with no content.
	ErrEmptyDraft = errors.New("draft content is empty")

	// ErrNotFunded indicates the funding backend declined to credit the
	// requested byte length.
	ErrNotFunded = errors.New("insufficient storage credit")
)

// ConnectionError reports a wallet provider that is unreachable, unknown,
// or denied authorization. The user may retry the connect.
type ConnectionError struct {
	Provider ProviderTag
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect wallet %s: %v", e.Provider, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// FundingError reports insufficient storage credit. No record is
// constructed or signed after a funding failure.
type FundingError struct {
	ByteLength int
	Err        error
}

func (e *FundingError) Error() string {
	return fmt.Sprintf("fund %d bytes: %v", e.ByteLength, e.Err)
}

func (e *FundingError) Unwrap() error { return e.Err }

// SigningError reports a rejected or failed signing round trip. The drafted
// content is preserved so the user can retry.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string { return fmt.Sprintf("sign record: %v", e.Err) }

func (e *SigningError) Unwrap() error { return e.Err }

// UploadError reports a storage failure after signing. The signed record is
// not retried; resubmission constructs and signs a fresh record.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload record: %v", e.Err) }

func (e *UploadError) Unwrap() error { return e.Err }

// QueryError reports a ledger query failure. It surfaces as an empty result
// set and is never fatal to the controller.
type QueryError struct {
	Scope QueryScope
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Scope, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
