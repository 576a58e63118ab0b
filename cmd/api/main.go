package main

import (
	"context"
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
	"github.com/feral-file/ff-stellar-market/internal/api/middleware"
	"github.com/feral-file/ff-stellar-market/internal/api/server"
	"github.com/feral-file/ff-stellar-market/internal/config"
	"github.com/feral-file/ff-stellar-market/internal/keycodec"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/market"
	"github.com/feral-file/ff-stellar-market/internal/metadata"
	"github.com/feral-file/ff-stellar-market/internal/pinning"
	"github.com/feral-file/ff-stellar-market/internal/pipeline"
	"github.com/feral-file/ff-stellar-market/internal/ratelimit"
	"github.com/feral-file/ff-stellar-market/internal/registry"
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
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "market-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File Stellar Market API")

	// Initialize adapters
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	base64Adapter := adapter.NewBase64()
	clockAdapter := adapter.NewClock()
	jcsAdapter := adapter.NewJCS()
	httpClient := adapter.NewHTTPClient(cfg.Metadata.HTTPTimeout)

	limiter := ratelimit.New(map[string]ratelimit.ProviderConfig{
		ratelimit.ProviderHorizon: {RequestsPerSecond: cfg.Stellar.RequestsPerSecond, Burst: cfg.Stellar.Burst},
		ratelimit.ProviderPinata:  {RequestsPerSecond: cfg.Pinning.RequestsPerSecond, Burst: 1},
	}, ratelimit.ProviderConfig{})

	// Initialize ledger client
	horizon := ledger.NewHorizonHTTPClient(cfg.Stellar.HorizonURL, &http.Client{Timeout: cfg.Stellar.TxTimeout})
	ledgerClient := ledger.NewHorizonClient(horizon, limiter, base64Adapter)
	logger.InfoCtx(ctx, "Using Horizon", zap.String("url", cfg.Stellar.HorizonURL))

	// Load blocklist
	var blocklist registry.Blocklist
	if cfg.BlocklistPath != "" {
		blocklist, err = registry.NewBlocklistLoader(fs, jsonAdapter).Load(cfg.BlocklistPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load blocklist",
				zap.Error(err),
				zap.String("path", cfg.BlocklistPath))
		}
		logger.InfoCtx(ctx, "Loaded blocklist", zap.String("path", cfg.BlocklistPath))
	} else {
		logger.WarnCtx(ctx, "Blocklist path not configured, every listing will be shown")
	}

	// Compose the marketplace
	codec := keycodec.New()
	store := storage.New(codec, ledgerClient, base64Adapter)
	resolver := metadata.NewResolver(metadata.Config{
		Gateways:         cfg.Metadata.Gateways,
		CanonicalGateway: cfg.Metadata.CanonicalGateway,
	}, httpClient, jsonAdapter, base64Adapter)
	ledgerScanner := scanner.New(scanner.Config{
		HistoryLimit:   cfg.Stellar.HistoryLimit,
		WorkerPoolSize: cfg.Scanner.WorkerPoolSize,
	}, ledgerClient, store, resolver, blocklist)
	defer ledgerScanner.Close()
	pipe := pipeline.New(pipeline.Config{
		NetworkPassphrase: cfg.Stellar.NetworkPassphrase,
		BaseFee:           cfg.Stellar.BaseFee,
		Timeout:           cfg.Stellar.TxTimeout,
	}, ledgerClient, clockAdapter)
	pinClient := pinning.NewPinataClient(pinning.Config{
		APIURL:           cfg.Pinning.APIURL,
		JWT:              cfg.Pinning.JWT,
		APIKey:           cfg.Pinning.APIKey,
		APISecret:        cfg.Pinning.APISecret,
		MaxUploadBytes:   cfg.Pinning.MaxUploadBytes,
		AllowedMIMETypes: cfg.Pinning.AllowedMIMETypes,
	}, httpClient, jsonAdapter, limiter)
	marketplace := market.New(store, pipe, ledgerScanner, pinClient, jcsAdapter, jsonAdapter)

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Pinning.MaxUploadBytes,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	// Reads go straight to the scanner, the caller names the account
	srv := server.New(serverConfig, ledgerScanner, marketplace, jsonAdapter)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
