package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeIndexer converts transactions from a generic multi-chain indexer
// into ledger records.
//
// Per-transaction rules:
//   - a missing hash or timestamp makes the record unrecoverable; it is
//     dropped silently (debug-logged only);
//   - the fee prefers the provider's explicit native-unit fee, falls back to
//     gas_used * gas_price / 10^18, and defaults to zero on any parse failure;
//   - fees are attributed only when the wallet initiated the transaction;
//   - a wallet-initiated transaction that produced no records emits exactly
//     one fallback "Contract Interaction" record carrying the fee.
func (e *Engine) NormalizeIndexer(txs []Transaction) []Record {
	records := make([]Record, 0, len(txs))
	for _, tx := range txs {
		if tx.Hash == "" || tx.Timestamp.IsZero() {
			e.logger.Debug("skipping malformed indexer transaction",
				"hash", tx.Hash, "has_timestamp", !tx.Timestamp.IsZero())
			continue
		}

		fee := e.indexerFee(tx)
		initiated := strings.ToLower(tx.From) == e.wallet
		attributedFee := decimal.Zero
		if initiated {
			attributedFee = fee
		}
		succeeded := tx.Successful == nil || *tx.Successful

		before := len(records)
		if succeeded {
			for _, tr := range tx.Transfers {
				switch tr.Kind {
				case TransferFungible:
					records = e.indexerTokenTransfer(records, tx, tr, attributedFee)
				case TransferNative:
					records = e.indexerNativeTransfer(records, tx, tr, attributedFee)
				}
			}
		}

		// Fallback: wallet-initiated calls with no asset movement still belong
		// in the ledger (they cost gas and the bookkeeper will ask about them).
		if len(records) == before && initiated {
			cp := lowerOrNA(tx.To)
			desc := fmt.Sprintf("Contract Interaction with %s", cp)
			if p, ok := e.protocols.Lookup(e.chain, cp); ok {
				desc = fmt.Sprintf("%s (%s)", desc, p.Name)
			}
			records = e.emit(records, tx, DirectionOut, decimal.Zero, "-", desc, cp, fee)
		}
	}
	return records
}

// indexerTokenTransfer emits a record for one fungible-token transfer, or
// returns records unchanged when the transfer is skipped.
func (e *Engine) indexerTokenTransfer(records []Record, tx Transaction, tr Transfer, fee decimal.Decimal) []Record {
	dir, cp, involved := e.resolveDirection(tr.From, tr.To)
	if !involved {
		return records
	}
	if tr.Spam {
		e.logger.Debug("skipping provider-flagged spam transfer",
			"tx_hash", tx.Hash, "token_symbol", tr.TokenSymbol)
		return records
	}
	if tr.AmountRaw == "" || tr.TokenDecimals == nil {
		e.logger.Debug("skipping token transfer with missing amount or decimals",
			"tx_hash", tx.Hash, "token_symbol", tr.TokenSymbol)
		return records
	}
	if e.checkCounterfeit(tx.Hash, tr, fee.IsZero()) {
		return records
	}
	amount, err := scaleAmount(tr.AmountRaw, *tr.TokenDecimals)
	if err != nil {
		e.logger.Warn("unparseable token amount, skipping transfer",
			"tx_hash", tx.Hash, "value", tr.AmountRaw, "error", err)
		return records
	}
	desc := transferDescription(dir, amount.String(), tr.TokenSymbol, cp)
	desc = e.annotateProtocol(desc, dir, cp, tr.TokenSymbol)
	return e.emit(records, tx, dir, amount, tr.TokenSymbol, desc, cp, fee)
}

// indexerNativeTransfer emits a record for one native-asset transfer.
// Zero-amount native transfers are noise and are dropped.
func (e *Engine) indexerNativeTransfer(records []Record, tx Transaction, tr Transfer, fee decimal.Decimal) []Record {
	dir, cp, involved := e.resolveDirection(tr.From, tr.To)
	if !involved {
		return records
	}
	amount, err := weiToNative(tr.AmountRaw)
	if err != nil {
		e.logger.Warn("unparseable native amount, skipping transfer",
			"tx_hash", tx.Hash, "value", tr.AmountRaw, "error", err)
		return records
	}
	if amount.IsZero() {
		return records
	}
	currency := e.chain.NativeSymbol()
	desc := transferDescription(dir, amount.String(), currency, cp)
	desc = e.annotateProtocol(desc, dir, cp, currency)
	return e.emit(records, tx, dir, amount, currency, desc, cp, fee)
}

// indexerFee computes the native-unit fee for an indexer transaction. Parse
// failures degrade to zero with a warning rather than aborting the batch.
func (e *Engine) indexerFee(tx Transaction) decimal.Decimal {
	if tx.FeeNative != "" {
		fee, err := decimal.NewFromString(strings.TrimSpace(tx.FeeNative))
		if err == nil {
			return fee
		}
		e.logger.Warn("unparseable explicit fee, defaulting to zero",
			"tx_hash", tx.Hash, "fee", tx.FeeNative, "error", err)
		return decimal.Zero
	}
	if tx.GasPrice == "" || tx.GasUsed == "" {
		return decimal.Zero
	}
	gasPrice, err1 := decimal.NewFromString(strings.TrimSpace(tx.GasPrice))
	gasUsed, err2 := decimal.NewFromString(strings.TrimSpace(tx.GasUsed))
	if err1 != nil || err2 != nil {
		e.logger.Warn("unparseable gas fields, defaulting fee to zero",
			"tx_hash", tx.Hash, "gas_price", tx.GasPrice, "gas_used", tx.GasUsed)
		return decimal.Zero
	}
	return gasPrice.Mul(gasUsed).Shift(-nativeDecimals)
}
