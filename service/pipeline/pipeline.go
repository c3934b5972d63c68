// Package pipeline orchestrates the batch run: for each wallet/chain pair,
// load-or-fetch raw history from both providers, normalize, and export one
// CSV report. Single-threaded by design; each pair is independent.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/brojonat/daoacct/service/cache"
	"github.com/brojonat/daoacct/service/config"
	"github.com/brojonat/daoacct/service/ledger"
	"github.com/brojonat/daoacct/service/moralis"
	"github.com/brojonat/daoacct/service/report"
	"github.com/brojonat/daoacct/service/safe"
)

// Provider names used for cache file naming and source selection.
const (
	ProviderIndexer  = "moralis"
	ProviderMultisig = "safe"
)

// IndexerClient is the fetch surface of the generic indexer.
// This allows mocking the network layer in tests.
type IndexerClient interface {
	FetchAll(ctx context.Context, wallet string, chain ledger.Chain) ([]moralis.Transaction, error)
}

// MultisigClient is the fetch surface of the smart-contract-wallet service.
type MultisigClient interface {
	FetchAll(ctx context.Context, wallet string, chain ledger.Chain) ([]safe.Transaction, error)
}

// Runner executes the batch pipeline. Following the explicit-dependency
// pattern, every collaborator is injected.
type Runner struct {
	cfg      *config.Config
	indexer  IndexerClient
	multisig MultisigClient
	store    *cache.Store
	logger   *slog.Logger
}

// NewRunner creates a Runner with explicit dependencies. A nil logger
// discards output.
func NewRunner(cfg *config.Config, indexer IndexerClient, multisig MultisigClient, store *cache.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Runner{
		cfg:      cfg,
		indexer:  indexer,
		multisig: multisig,
		store:    store,
		logger:   logger,
	}
}

// Options tune a run. The zero value fetches missing caches and writes
// reports from both providers.
type Options struct {
	Refresh   bool   // ignore caches and re-fetch
	FetchOnly bool   // populate caches, skip normalization and reports
	Offline   bool   // never touch the network; report from caches only
	Source    string // "", ProviderIndexer, or ProviderMultisig
}

// Run executes the pipeline for every configured wallet/chain pair. A
// provider failure degrades that pair to whatever was fetched; it never
// aborts the batch. The returned error aggregates per-pair failures.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	logger.Info("starting reconciliation run",
		"wallets", len(r.cfg.Wallets), "fetch_only", opts.FetchOnly, "refresh", opts.Refresh)

	var errs []error
	for _, w := range r.cfg.Wallets {
		if err := r.runPair(ctx, logger, w, opts); err != nil {
			logger.Error("wallet/chain pair failed",
				"wallet", w.Address, "chain", string(w.Chain), "error", err)
			errs = append(errs, fmt.Errorf("%s on %s: %w", w.Address, w.Chain, err))
		}
	}

	logger.Info("reconciliation run complete", "failures", len(errs))
	return errors.Join(errs...)
}

func (r *Runner) runPair(ctx context.Context, logger *slog.Logger, w config.Wallet, opts Options) error {
	var records []ledger.Record
	engine := ledger.NewEngine(w.Address, w.Chain,
		r.cfg.Rules.ProtocolTable(), r.cfg.Rules.TickerRules(), logger)

	var errs []error

	if opts.Source == "" || opts.Source == ProviderIndexer {
		txs, err := r.loadOrFetchIndexer(ctx, logger, w, opts)
		if err != nil {
			// Keep whatever was fetched; a partial ledger beats none.
			errs = append(errs, err)
		}
		if !opts.FetchOnly {
			recs := engine.NormalizeIndexer(moralis.ToLedger(txs))
			logger.Info("normalized indexer history",
				"wallet", w.Address, "chain", string(w.Chain),
				"transactions", len(txs), "records", len(recs))
			records = append(records, recs...)
		}
	}

	if opts.Source == "" || opts.Source == ProviderMultisig {
		txs, err := r.loadOrFetchMultisig(ctx, logger, w, opts)
		if err != nil {
			errs = append(errs, err)
		}
		if !opts.FetchOnly {
			recs := engine.NormalizeMultisig(safe.ToLedger(txs))
			logger.Info("normalized multisig history",
				"wallet", w.Address, "chain", string(w.Chain),
				"transactions", len(txs), "records", len(recs))
			records = append(records, recs...)
		}
	}

	if !opts.FetchOnly {
		path := filepath.Join(r.cfg.OutDir, report.Filename(w.Address, w.Chain))
		if err := report.WriteFile(path, records); err != nil {
			errs = append(errs, err)
		} else {
			logger.Info("wrote report", "path", path, "records", len(records))
		}
	}

	return errors.Join(errs...)
}

// loadOrFetchIndexer returns cached indexer history, fetching and writing
// through when the cache is missing, empty, or a refresh is forced. On fetch
// failure the partial page set is still cached and returned.
func (r *Runner) loadOrFetchIndexer(ctx context.Context, logger *slog.Logger, w config.Wallet, opts Options) ([]moralis.Transaction, error) {
	if !opts.Refresh {
		raw, ok, err := r.store.Load(ProviderIndexer, w.Address, w.Chain)
		if err != nil {
			return nil, err
		}
		if ok {
			var txs []moralis.Transaction
			if err := json.Unmarshal(raw, &txs); err != nil {
				return nil, fmt.Errorf("decoding cached indexer history: %w", err)
			}
			return txs, nil
		}
	}
	if opts.Offline {
		logger.Warn("no cached indexer history in offline mode",
			"wallet", w.Address, "chain", string(w.Chain))
		return nil, nil
	}

	txs, fetchErr := r.indexer.FetchAll(ctx, w.Address, w.Chain)
	if len(txs) > 0 {
		if err := r.store.Save(ProviderIndexer, w.Address, w.Chain, txs); err != nil {
			logger.Warn("failed to cache indexer history", "error", err)
		}
	}
	return txs, fetchErr
}

// loadOrFetchMultisig mirrors loadOrFetchIndexer for the multisig service.
func (r *Runner) loadOrFetchMultisig(ctx context.Context, logger *slog.Logger, w config.Wallet, opts Options) ([]safe.Transaction, error) {
	if !opts.Refresh {
		raw, ok, err := r.store.Load(ProviderMultisig, w.Address, w.Chain)
		if err != nil {
			return nil, err
		}
		if ok {
			var txs []safe.Transaction
			if err := json.Unmarshal(raw, &txs); err != nil {
				return nil, fmt.Errorf("decoding cached multisig history: %w", err)
			}
			return txs, nil
		}
	}
	if opts.Offline {
		logger.Warn("no cached multisig history in offline mode",
			"wallet", w.Address, "chain", string(w.Chain))
		return nil, nil
	}

	txs, fetchErr := r.multisig.FetchAll(ctx, w.Address, w.Chain)
	if len(txs) > 0 {
		if err := r.store.Save(ProviderMultisig, w.Address, w.Chain, txs); err != nil {
			logger.Warn("failed to cache multisig history", "error", err)
		}
	}
	return txs, fetchErr
}
