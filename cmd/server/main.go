package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"publicsquare/internal/arconnect"
	"publicsquare/internal/arweave"
	"publicsquare/internal/bundlr"
	"publicsquare/internal/config"
	"publicsquare/internal/domain"
	"publicsquare/internal/httpserver"
	"publicsquare/internal/nearwallet"
	"publicsquare/internal/sessionstore"
	"publicsquare/internal/stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	sessions, err := sessionstore.NewStore(cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()

	gateway := arweave.NewClient(cfg.GatewayURL)
	funder := bundlr.NewClient(cfg.BundlerURL)

	providers := []domain.WalletProvider{
		nearwallet.NewClient(cfg.WalletServiceURL, sessions),
		arconnect.NewClient(cfg.WalletAgentURL),
	}
	connector := domain.NewConnector(providers, func(session domain.WalletSession) {
		logger.Info("publishing enabled",
			zap.String("provider", string(session.Provider)),
			zap.String("address", session.Address),
		)
	}, logger)

	publisher := domain.NewPublisher(connector, funder, gateway, logger)
	mapper := domain.NewMapper(gateway, domain.NewFixedPacer(cfg.RevealDelay), logger)
	controller := domain.NewController(gateway, mapper, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Reconnect a pre-existing wallet session without user interaction.
	if session := connector.CheckExistingSession(ctx); session.IsConnected {
		logger.Info("restored wallet session", zap.String("address", session.Address))
	}

	if cfg.StreamURL != "" {
		liveMapper := domain.NewMapper(gateway, domain.NoDelay, logger)
		subscriber := stream.NewSubscriber(cfg.StreamURL, controller, liveMapper, logger)
		go func() {
			if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("stream subscriber exited with error", zap.Error(err))
			}
		}()
	}

	server := httpserver.NewServer(cfg, connector, publisher, controller, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", zap.Error(err))
		}
	}()

	logger.Info("client started", zap.Int("port", cfg.Port), zap.String("gateway", cfg.GatewayURL))

	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", zap.Error(err))
	}

	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
