package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/config"
	"github.com/feral-file/ff-stellar-market/internal/emitter"
	"github.com/feral-file/ff-stellar-market/internal/keycodec"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/metadata"
	"github.com/feral-file/ff-stellar-market/internal/providers/jetstream"
	"github.com/feral-file/ff-stellar-market/internal/providers/stellar"
	"github.com/feral-file/ff-stellar-market/internal/ratelimit"
	"github.com/feral-file/ff-stellar-market/internal/scanner"
	"github.com/feral-file/ff-stellar-market/internal/storage"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadEventEmitterConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "market-event-emitter",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Stellar Market Event Emitter")

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	base64Adapter := adapter.NewBase64()
	natsJS := adapter.NewNatsJetStream()

	limiter := ratelimit.New(map[string]ratelimit.ProviderConfig{
		ratelimit.ProviderHorizon: {RequestsPerSecond: cfg.Stellar.RequestsPerSecond, Burst: cfg.Stellar.Burst},
	}, ratelimit.ProviderConfig{})

	// Initialize ledger client and scanner
	horizon := ledger.NewHorizonHTTPClient(cfg.Stellar.HorizonURL, &http.Client{Timeout: cfg.Stellar.TxTimeout})
	ledgerClient := ledger.NewHorizonClient(horizon, limiter, base64Adapter)
	store := storage.New(keycodec.New(), ledgerClient, base64Adapter)
	resolver := metadata.NewResolver(metadata.Config{
		Gateways:         cfg.Metadata.Gateways,
		CanonicalGateway: cfg.Metadata.CanonicalGateway,
	}, adapter.NewHTTPClient(cfg.Metadata.HTTPTimeout), jsonAdapter, base64Adapter)
	ledgerScanner := scanner.New(scanner.Config{
		HistoryLimit:   cfg.Stellar.HistoryLimit,
		WorkerPoolSize: cfg.Scanner.WorkerPoolSize,
	}, ledgerClient, store, resolver, nil)
	defer ledgerScanner.Close()

	// Initialize NATS publisher
	natsPublisher, err := jetstream.NewPublisher(
		ctx,
		jetstream.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.NATS.StreamName,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
			DuplicateWindow: cfg.NATS.DuplicateWindow,
		}, natsJS, jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	logger.InfoCtx(ctx, "Connected to NATS JetStream")

	// Initialize Stellar subscriber
	stellarSubscriber := stellar.NewSubscriber(stellar.Config{
		PollInterval: cfg.Emitter.Interval,
		SkipBacklog:  cfg.Emitter.SkipBacklog,
	}, ledgerScanner, clockAdapter)

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	eventEmitter := emitter.NewEmitter(
		stellarSubscriber,
		natsPublisher,
		emitter.Config{PublishTimeout: cfg.Emitter.PublishTimeout},
		clockAdapter,
	)
	defer eventEmitter.Close()

	// Channel for emitter errors
	errCh := make(chan error, 1)

	// Start the emitter
	go func() {
		if err := eventEmitter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "emitter"))
		cancel()
	}

	// Give some time for graceful shutdown
	time.Sleep(time.Second)

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Stellar Market Event Emitter stopped")
}
