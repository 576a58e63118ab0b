package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/feral-file/ff-stellar-market/internal/adapter"
	"github.com/feral-file/ff-stellar-market/internal/config"
	"github.com/feral-file/ff-stellar-market/internal/keycodec"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/market"
	"github.com/feral-file/ff-stellar-market/internal/metadata"
	"github.com/feral-file/ff-stellar-market/internal/pinning"
	"github.com/feral-file/ff-stellar-market/internal/pipeline"
	"github.com/feral-file/ff-stellar-market/internal/ratelimit"
	"github.com/feral-file/ff-stellar-market/internal/registry"
	"github.com/feral-file/ff-stellar-market/internal/scanner"
	"github.com/feral-file/ff-stellar-market/internal/signer"
	"github.com/feral-file/ff-stellar-market/internal/storage"
)

const envKey = "env"

// env is what every command runs against
type env struct {
	market   *market.Market
	identity *signer.Identity
	fs       adapter.FileSystem
	json     adapter.JSON
	out      io.Writer
	// maxImageBytes bounds the images read for minting
	maxImageBytes int64
}

func newEnv(cfg *config.CLIConfig, out io.Writer) (*env, error) {
	keypairSigner, err := signer.NewKeypairSigner(cfg.Signer.SecretSeed)
	if err != nil {
		return nil, fmt.Errorf("signer.secret_seed: %w", err)
	}

	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	base64Adapter := adapter.NewBase64()
	httpClient := adapter.NewHTTPClient(cfg.Metadata.HTTPTimeout)

	limiter := ratelimit.New(map[string]ratelimit.ProviderConfig{
		ratelimit.ProviderHorizon: {RequestsPerSecond: cfg.Stellar.RequestsPerSecond, Burst: cfg.Stellar.Burst},
		ratelimit.ProviderPinata:  {RequestsPerSecond: cfg.Pinning.RequestsPerSecond, Burst: 1},
	}, ratelimit.ProviderConfig{})

	horizon := ledger.NewHorizonHTTPClient(cfg.Stellar.HorizonURL, &http.Client{Timeout: cfg.Stellar.TxTimeout})
	ledgerClient := ledger.NewHorizonClient(horizon, limiter, base64Adapter)

	var blocklist registry.Blocklist
	if cfg.BlocklistPath != "" {
		blocklist, err = registry.NewBlocklistLoader(fs, jsonAdapter).Load(cfg.BlocklistPath)
		if err != nil {
			return nil, err
		}
	}

	store := storage.New(keycodec.New(), ledgerClient, base64Adapter)
	resolver := metadata.NewResolver(metadata.Config{
		Gateways:         cfg.Metadata.Gateways,
		CanonicalGateway: cfg.Metadata.CanonicalGateway,
	}, httpClient, jsonAdapter, base64Adapter)
	ledgerScanner := scanner.New(scanner.Config{
		HistoryLimit:   cfg.Stellar.HistoryLimit,
		WorkerPoolSize: cfg.Scanner.WorkerPoolSize,
	}, ledgerClient, store, resolver, blocklist)
	pipe := pipeline.New(pipeline.Config{
		NetworkPassphrase: cfg.Stellar.NetworkPassphrase,
		BaseFee:           cfg.Stellar.BaseFee,
		Timeout:           cfg.Stellar.TxTimeout,
	}, ledgerClient, adapter.NewClock())
	pinClient := pinning.NewPinataClient(pinning.Config{
		APIURL:           cfg.Pinning.APIURL,
		JWT:              cfg.Pinning.JWT,
		APIKey:           cfg.Pinning.APIKey,
		APISecret:        cfg.Pinning.APISecret,
		MaxUploadBytes:   cfg.Pinning.MaxUploadBytes,
		AllowedMIMETypes: cfg.Pinning.AllowedMIMETypes,
	}, httpClient, jsonAdapter, limiter)

	return &env{
		market:   market.New(store, pipe, ledgerScanner, pinClient, adapter.NewJCS(), jsonAdapter),
		identity: &signer.Identity{Account: keypairSigner.Address(), Signer: keypairSigner},
		fs:       fs,
		json:     jsonAdapter,
		out:      out,

		maxImageBytes: cfg.Pinning.MaxUploadBytes,
	}, nil
}

func getEnv(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}

// print writes v as indented JSON
func (e *env) print(v interface{}) error {
	data, err := e.json.MarshalIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.out, string(data))
	return err
}

// accountOrSelf returns the --account flag, defaulting to the signing account
func (e *env) accountOrSelf(c *cli.Context) string {
	if account := c.String("account"); account != "" {
		return account
	}
	return e.identity.Account
}
