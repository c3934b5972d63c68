package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "daoacct",
		Usage: "DAO treasury reconciliation CLI",
		Description: `A command-line tool for producing bookkeeper-ready CSV ledgers from
on-chain wallet history.

The run command fetches history from the configured providers, caches the raw
payloads, normalizes everything into uniform records, and writes one CSV per
wallet/chain pair. Use the cache commands to inspect the raw payloads.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			runCommand(),
			fetchCommand(),
			reportCommand(),
			{
				Name:  "cache",
				Usage: "Raw payload cache inspection commands",
				Subcommands: []*cli.Command{
					cacheListCommand(),
					cacheQueryCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cache-dir",
				Usage:   "Directory for raw payload caches",
				EnvVars: []string{"CACHE_DIR"},
				Value:   "cache",
			},
			&cli.StringFlag{
				Name:    "out-dir",
				Usage:   "Directory for CSV reports",
				EnvVars: []string{"OUT_DIR"},
				Value:   "reports",
			},
			&cli.StringFlag{
				Name:    "rules",
				Usage:   "Path to the YAML rules file (protocol labels, trusted tickers)",
				EnvVars: []string{"RULES_FILE"},
				Value:   "rules.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newLogger builds the JSON logger all commands share. Logs go to stderr so
// stdout stays clean for command output.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
