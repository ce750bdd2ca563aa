package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"parrot/internal/config"
	"parrot/internal/logging"
	"parrot/internal/relay"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRelay()
	if err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("relay stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.RelayConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := relay.NewMetrics()
	if err != nil {
		return err
	}
	defer func() {
		if err := metrics.Shutdown(context.Background()); err != nil {
			logger.Warn("metrics shutdown failed", zap.Error(err))
		}
	}()

	provider, err := relay.NewProvider(cfg, metrics, logger)
	if err != nil {
		return err
	}
	return relay.NewServer(cfg, provider, metrics, logger).Run(ctx)
}
