package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/daoacct/service/cache"
	"github.com/brojonat/daoacct/service/config"
	"github.com/brojonat/daoacct/service/moralis"
	"github.com/brojonat/daoacct/service/pipeline"
	"github.com/brojonat/daoacct/service/safe"
)

// loadConfig reads the environment configuration and applies the global CLI
// flag overrides. The flags are env-backed with the same variables, so this
// only matters when a flag is passed explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.CacheDir = c.String("cache-dir")
	cfg.OutDir = c.String("out-dir")
	if rf := c.String("rules"); rf != cfg.RulesFile {
		rules, err := config.LoadRules(rf)
		if err != nil {
			return nil, err
		}
		cfg.RulesFile = rf
		cfg.Rules = rules
	}
	cfg.LogLevel = c.String("log-level")
	return cfg, nil
}

func newRunner(cfg *config.Config, logger *slog.Logger) *pipeline.Runner {
	indexer := moralis.NewClient(cfg.MoralisBaseURL, cfg.MoralisAPIKey, nil, logger)
	multisig := safe.NewClient(nil, nil, logger)
	store := cache.NewStore(cfg.CacheDir, logger)
	return pipeline.NewRunner(cfg, indexer, multisig, store, logger)
}

func sourceFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "source",
		Usage: fmt.Sprintf("Restrict to one provider (%q or %q)", pipeline.ProviderIndexer, pipeline.ProviderMultisig),
	}
}

func validateSource(c *cli.Context) error {
	switch c.String("source") {
	case "", pipeline.ProviderIndexer, pipeline.ProviderMultisig:
		return nil
	}
	return fmt.Errorf("unknown source %q (want %q or %q)",
		c.String("source"), pipeline.ProviderIndexer, pipeline.ProviderMultisig)
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Fetch, normalize, and write CSV reports for all configured wallets",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "Ignore cached payloads and re-fetch everything",
			},
			sourceFlag(),
		},
		Action: func(c *cli.Context) error {
			if err := validateSource(c); err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			return newRunner(cfg, logger).Run(context.Background(), pipeline.Options{
				Refresh: c.Bool("refresh"),
				Source:  c.String("source"),
			})
		},
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Populate the raw payload caches without writing reports",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "Ignore cached payloads and re-fetch everything",
			},
			sourceFlag(),
		},
		Action: func(c *cli.Context) error {
			if err := validateSource(c); err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			return newRunner(cfg, logger).Run(context.Background(), pipeline.Options{
				Refresh:   c.Bool("refresh"),
				FetchOnly: true,
				Source:    c.String("source"),
			})
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Regenerate CSV reports from cached payloads without touching the network",
		Flags: []cli.Flag{
			sourceFlag(),
		},
		Action: func(c *cli.Context) error {
			if err := validateSource(c); err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			return newRunner(cfg, logger).Run(context.Background(), pipeline.Options{
				Offline: true,
				Source:  c.String("source"),
			})
		},
	}
}
