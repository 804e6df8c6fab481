package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the client.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// GatewayURL is the ledger gateway (query service, record data,
	// storage endpoint).
	GatewayURL string

	// BundlerURL is the funding backend node.
	BundlerURL string

	// WalletServiceURL is the sign-in wallet service endpoint.
	WalletServiceURL string

	// WalletAgentURL is the local ambient-address wallet agent endpoint.
	WalletAgentURL string

	// StreamURL is the gateway's websocket transaction stream. Empty
	// disables live updates.
	StreamURL string

	// SessionDBPath is the SQLite file holding wallet provider sessions.
	SessionDBPath string

	// RevealDelay spaces out successive posts during progressive reveal.
	RevealDelay time.Duration

	// LogLevel selects the zap preset ("production" or "development").
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port := 3000
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	revealDelay := 100 * time.Millisecond
	if d := os.Getenv("SQUARE_REVEAL_DELAY"); d != "" {
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return nil, fmt.Errorf("invalid SQUARE_REVEAL_DELAY: %w", err)
		}
		revealDelay = parsed
	}

	gateway := os.Getenv("SQUARE_GATEWAY_URL")
	if gateway == "" {
		gateway = "https://arweave.net"
	}

	bundler := os.Getenv("SQUARE_BUNDLER_URL")
	if bundler == "" {
		bundler = "https://node1.bundlr.network"
	}

	walletService := os.Getenv("SQUARE_WALLET_URL")
	if walletService == "" {
		walletService = "http://localhost:7031"
	}

	walletAgent := os.Getenv("SQUARE_AGENT_URL")
	if walletAgent == "" {
		walletAgent = "http://localhost:7032"
	}

	sessionDB := os.Getenv("SQUARE_SESSION_DB")
	if sessionDB == "" {
		sessionDB = "publicsquare.db"
	}

	logLevel := os.Getenv("SQUARE_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "production"
	}

	return &Config{
		Port:             port,
		GatewayURL:       gateway,
		BundlerURL:       bundler,
		WalletServiceURL: walletService,
		WalletAgentURL:   walletAgent,
		StreamURL:        os.Getenv("SQUARE_STREAM_URL"),
		SessionDBPath:    sessionDB,
		RevealDelay:      revealDelay,
		LogLevel:         logLevel,
	}, nil
}
