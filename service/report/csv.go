// Package report serializes ledger records to the bookkeeper-facing CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/brojonat/daoacct/service/ledger"
)

// Columns is the fixed output column order. Bookkeeping spreadsheets key on
// these headers; do not reorder.
var Columns = []string{
	"Date",
	"WalletAddress",
	"Chain",
	"Direction",
	"Amount_Raw",
	"Currency",
	"TransactionHash",
	"Fee_Native",
	"Description",
	"Counterparty",
}

const dateLayout = "2006-01-02 15:04:05"

// Write sorts records chronologically and writes them as UTF-8 CSV. Empty
// input still produces the header row. The input slice is not mutated.
func Write(w io.Writer, records []ledger.Record) error {
	sorted := make([]ledger.Record, len(records))
	copy(sorted, records)
	// Stable: records sharing a timestamp keep their normalization order.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range sorted {
		row := []string{
			r.Date.UTC().Format(dateLayout),
			r.Wallet,
			string(r.Chain),
			string(r.Direction),
			r.Amount,
			r.Currency,
			r.TxHash,
			r.FeeNative,
			r.Description,
			r.Counterparty,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %s: %w", r.TxHash, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path, creating parent directories as
// needed.
func WriteFile(path string, records []ledger.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(f, records); err != nil {
		return err
	}
	return f.Close()
}

// Filename returns the canonical report name for a wallet/chain pair.
func Filename(wallet string, chain ledger.Chain) string {
	return fmt.Sprintf("%s_%s_ledger.csv", chain, wallet)
}
