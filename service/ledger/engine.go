package ledger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Engine normalizes provider-shaped raw transactions into ledger records for
// one wallet on one chain. It is pure with respect to its input: no I/O, and
// normalizing the same input twice produces identical output.
//
// The two provider shapes are handled by NormalizeIndexer and
// NormalizeMultisig; the counterfeit filter, decimal scaling, protocol
// annotation, and record assembly are shared between them.
type Engine struct {
	wallet    string // lowercase
	chain     Chain
	protocols ProtocolTable
	filter    *Filter
	logger    *slog.Logger
}

// NewEngine creates an engine for one wallet/chain pair. The wallet address
// is lowercased here so every comparison downstream is case-insensitive.
// A nil logger discards diagnostics.
func NewEngine(wallet string, chain Chain, protocols ProtocolTable, tickers []TickerRule, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Engine{
		wallet:    strings.ToLower(wallet),
		chain:     chain,
		protocols: protocols,
		filter:    NewFilter(chain, tickers),
		logger:    logger,
	}
}

// resolveDirection determines whether the wallet is the sender or receiver of
// a transfer. The third return is false when the wallet is on neither side,
// in which case the transfer is not a ledger event for this wallet.
func (e *Engine) resolveDirection(from, to string) (Direction, string, bool) {
	switch {
	case strings.ToLower(from) == e.wallet:
		return DirectionOut, lowerOrNA(to), true
	case strings.ToLower(to) == e.wallet:
		return DirectionIn, lowerOrNA(from), true
	}
	return "", "", false
}

// checkCounterfeit runs the shared filter and logs the matched criterion.
// Returns true when the transfer must be dropped.
func (e *Engine) checkCounterfeit(txHash string, t Transfer, feeIsZero bool) bool {
	v := e.filter.Check(t, feeIsZero)
	if v.Counterfeit {
		e.logger.Warn("dropping counterfeit token transfer",
			"tx_hash", txHash,
			"token_symbol", t.TokenSymbol,
			"token_address", t.TokenAddress,
			"ticker", v.Ticker,
			"criterion", string(v.Criterion),
		)
	}
	return v.Counterfeit
}

// emit assembles a canonical record. Wallet and counterparty are already
// lowercase by construction.
func (e *Engine) emit(records []Record, tx Transaction, dir Direction, amount decimal.Decimal, currency, desc, counterparty string, fee decimal.Decimal) []Record {
	return append(records, Record{
		Date:         tx.Timestamp.UTC().Truncate(time.Second),
		Wallet:       e.wallet,
		Chain:        e.chain,
		Direction:    dir,
		Amount:       amount.String(),
		Currency:     currency,
		Description:  desc,
		TxHash:       tx.Hash,
		FeeNative:    fee.String(),
		Counterparty: counterparty,
	})
}

// transferDescription synthesizes the base human-readable description for a
// value transfer.
func transferDescription(dir Direction, amount, currency, counterparty string) string {
	if dir == DirectionOut {
		return fmt.Sprintf("Send %s %s to %s", amount, currency, counterparty)
	}
	return fmt.Sprintf("Receive %s %s from %s", amount, currency, counterparty)
}

// annotateProtocol relabels a transfer description when the counterparty is a
// configured protocol contract. The heuristic: a symbol following the
// protocol's receipt-token naming convention moving toward the protocol is a
// withdrawal in progress (the receipt is being returned), and arriving from
// the protocol it completes a deposit; for the base asset it is the reverse.
func (e *Engine) annotateProtocol(desc string, dir Direction, counterparty, symbol string) string {
	p, ok := e.protocols.Lookup(e.chain, counterparty)
	if !ok {
		return desc
	}
	receipt := p.ReceiptPrefix != "" &&
		strings.HasPrefix(symbol, p.ReceiptPrefix) &&
		len(symbol) > len(p.ReceiptPrefix)
	var label string
	switch {
	case dir == DirectionOut && receipt:
		label = fmt.Sprintf("%s withdrawal (returned receipt token)", p.Name)
	case dir == DirectionIn && receipt:
		label = fmt.Sprintf("%s deposit (received receipt token)", p.Name)
	case dir == DirectionOut:
		label = fmt.Sprintf("%s deposit", p.Name)
	default:
		label = fmt.Sprintf("%s withdrawal", p.Name)
	}
	return fmt.Sprintf("%s: %s", label, desc)
}

// lowerOrNA lowercases an address, mapping an empty one to the "N/A"
// counterparty sentinel.
func lowerOrNA(addr string) string {
	if addr == "" {
		return "N/A"
	}
	return strings.ToLower(addr)
}
