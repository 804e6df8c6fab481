package domain

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ConnectObserver is notified exactly once per successful connection,
// enabling dependent surfaces such as the publish affordance.
type ConnectObserver func(session WalletSession)

// Connector unifies heterogeneous signing providers behind one connection
// state machine: Disconnected -> Connecting -> Connected. There is no
// automatic path back to Disconnected.
type Connector struct {
	mu        sync.Mutex
	providers map[ProviderTag]WalletProvider
	defaultP  ProviderTag
	session   WalletSession
	onConnect ConnectObserver
	logger    *zap.Logger
}

// NewConnector creates a Connector over the given providers. The first
// provider is the default one consulted by CheckExistingSession. The
// observer may be nil.
func NewConnector(providers []WalletProvider, onConnect ConnectObserver, logger *zap.Logger) *Connector {
	byTag := make(map[ProviderTag]WalletProvider, len(providers))
	var defaultTag ProviderTag
	for i, p := range providers {
		if i == 0 {
			defaultTag = p.Tag()
		}
		byTag[p.Tag()] = p
	}

	return &Connector{
		providers: byTag,
		defaultP:  defaultTag,
		session:   WalletSession{Provider: ProviderNone},
		onConnect: onConnect,
		logger:    logger,
	}
}

// Session returns a snapshot of the current wallet session.
func (c *Connector) Session() WalletSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// CheckExistingSession asks the default provider for a pre-existing signed-in
// session. If one exists, the session connects without user interaction and
// the observer fires. Failures leave the session disconnected.
func (c *Connector) CheckExistingSession(ctx context.Context) WalletSession {
	p, ok := c.providers[c.defaultP]
	if !ok {
		return c.Session()
	}

	signedIn, err := p.SignedIn(ctx)
	if err != nil {
		c.logger.Warn("wallet session check failed", zap.String("provider", string(p.Tag())), zap.Error(err))
		return c.Session()
	}
	if !signedIn {
		return c.Session()
	}

	addr, err := p.Address(ctx)
	if err != nil || addr == "" {
		c.logger.Warn("wallet address resolution failed", zap.String("provider", string(p.Tag())), zap.Error(err))
		return c.Session()
	}

	return c.establish(p.Tag(), addr)
}

// Connect requests authorization from the selected provider. Providers with
// an ambient address are read directly; others go through their sign-in
// round trip. An ambient provider returning no address is a soft failure:
// the session stays unestablished and no error is returned.
func (c *Connector) Connect(ctx context.Context, tag ProviderTag) (WalletSession, error) {
	p, ok := c.providers[tag]
	if !ok {
		return c.Session(), &ConnectionError{Provider: tag, Err: ErrUnknownProvider}
	}

	if ambient, ok := p.(AmbientAddressProvider); ok {
		addr, err := ambient.ActiveAddress(ctx)
		if err != nil {
			return c.Session(), &ConnectionError{Provider: tag, Err: err}
		}
		if addr == "" {
			c.logger.Info("wallet has no active address, connection not established", zap.String("provider", string(tag)))
			return c.Session(), nil
		}
		return c.establish(tag, addr), nil
	}

	if err := p.RequestSignIn(ctx); err != nil {
		return c.Session(), &ConnectionError{Provider: tag, Err: err}
	}

	addr, err := p.Address(ctx)
	if err != nil {
		return c.Session(), &ConnectionError{Provider: tag, Err: err}
	}
	if addr == "" {
		c.logger.Info("provider returned no address after sign-in", zap.String("provider", string(tag)))
		return c.Session(), nil
	}

	return c.establish(tag, addr), nil
}

// ActiveSigner returns the signing capability of the connected provider.
func (c *Connector) ActiveSigner() (RecordSigner, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if !session.IsConnected {
		return nil, ErrWalletNotConnected
	}
	p := c.providers[session.Provider]
	signer, ok := p.(RecordSigner)
	if !ok {
		return nil, fmt.Errorf("provider %s cannot sign records", session.Provider)
	}
	return signer, nil
}

func (c *Connector) establish(tag ProviderTag, addr string) WalletSession {
	c.mu.Lock()
	c.session = WalletSession{
		Provider:    tag,
		Address:     ShortenAddress(addr),
		IsConnected: true,
	}
	session := c.session
	c.mu.Unlock()

	c.logger.Info("wallet connected",
		zap.String("provider", string(tag)),
		zap.String("address", session.Address),
	)

	if c.onConnect != nil {
		c.onConnect(session)
	}
	return session
}

// ShortenAddress derives the display form of a wallet address: the first
// five characters, "..", and the last four. Short addresses pass through.
func ShortenAddress(addr string) string {
	if len(addr) <= 9 {
		return addr
	}
	return addr[:5] + ".." + addr[len(addr)-4:]
}
