package domain

// ProviderTag identifies a wallet provider implementation.
type ProviderTag string

const (
	// ProviderNone is the initial, disconnected state.
	ProviderNone ProviderTag = "none"

	// ProviderNEAR is the wallet-service provider that requires an explicit
	// sign-in round trip.
	ProviderNEAR ProviderTag = "near"

	// ProviderArConnect is the browser-agent provider that exposes an
	// ambient active address without interaction.
	ProviderArConnect ProviderTag = "arconnect"
)

// PlatformLabel returns the signer-platform identifier emitted in the
// Wallet tag of published records.
func (t ProviderTag) PlatformLabel() string {
	switch t {
	case ProviderNEAR:
		return "NEAR"
	case ProviderArConnect:
		return "ArConnect"
	default:
		return string(t)
	}
}

// WalletSession is the active signing identity. It is created disconnected
// at process start and transitions to a concrete provider only through the
// Connector.
type WalletSession struct {
	// Provider is the connected provider, or ProviderNone.
	Provider ProviderTag

	// Address is the shortened display form of the wallet address
	// (first five characters, "..", last four). Never the raw address.
	Address string

	// IsConnected is true iff a provider is connected and address
	// resolution succeeded.
	IsConnected bool
}
