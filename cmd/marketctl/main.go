package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-stellar-market/internal/config"
	"github.com/feral-file/ff-stellar-market/internal/logger"
)

func main() {
	app := &cli.App{
		Name:  "marketctl",
		Usage: "operate the Stellar NFT marketplace from a local signing key",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to configuration file",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "path to environment files",
				Value: "config/",
			},
		},
		Before: setup,
		After: func(_ *cli.Context) error {
			logger.Flush(2 * time.Second)
			return nil
		},
		Commands: []*cli.Command{
			accountCmd,
			createdCmd,
			ownedCmd,
			receivedCmd,
			historyCmd,
			marketplaceCmd,
			listingCmd,
			listCmd,
			delistCmd,
			buyCmd,
			transferCmd,
			acceptCmd,
			mintCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and composes the marketplace for the commands
func setup(c *cli.Context) error {
	config.ChdirRepoRoot()
	cfg, err := config.LoadCLIConfig(c.String("config"), c.String("env"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "marketctl",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	e, err := newEnv(cfg, c.App.Writer)
	if err != nil {
		return err
	}
	c.App.Metadata = map[string]interface{}{envKey: e}
	return nil
}
