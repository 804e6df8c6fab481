package domain

import "context"

// WalletProvider is the shared capability interface over signing providers.
// The Connector dispatches on the provider's tag through this interface
// rather than probing for ambient state.
type WalletProvider interface {
	// Tag identifies the provider.
	Tag() ProviderTag

	// SignedIn reports whether a pre-existing authorized session exists.
	SignedIn(ctx context.Context) (bool, error)

	// Address returns the provider's full wallet address. Only meaningful
	// once signed in.
	Address(ctx context.Context) (string, error)

	// RequestSignIn triggers the provider's authorization flow and blocks
	// until it resolves or fails.
	RequestSignIn(ctx context.Context) error

	// SignOut terminates the provider-level session.
	SignOut(ctx context.Context) error
}

// AmbientAddressProvider is a WalletProvider that can read its active
// address without an authorization round trip.
type AmbientAddressProvider interface {
	WalletProvider

	// ActiveAddress returns the currently active address, or empty if the
	// provider has no active wallet. An empty address is not an error.
	ActiveAddress(ctx context.Context) (string, error)
}

// RecordSigner is the signing capability of a connected wallet.
type RecordSigner interface {
	// SignRecord signs the record with the active wallet's key.
	SignRecord(ctx context.Context, rec *Record) (*SignedRecord, error)
}

// Funder is the funding backend. Storage cost must be prepaid before a
// record may be uploaded.
type Funder interface {
	// Fund requests credit sized to the given content byte length and
	// reports whether sufficient credit now exists.
	Fund(ctx context.Context, byteLength int) (bool, error)
}

// Uploader submits a signed record to the ledger's storage endpoint and
// returns the assigned content id.
type Uploader interface {
	Upload(ctx context.Context, rec *SignedRecord) (string, error)
}

// LedgerQuerier executes a query descriptor against the ledger's query
// service and returns the matching edges, newest first.
type LedgerQuerier interface {
	Execute(ctx context.Context, q QueryDescriptor) ([]RawRecord, error)
}

// RecordData resolves a record's body by its content id.
type RecordData interface {
	Data(ctx context.Context, id string) ([]byte, error)
}
