package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeMultisig converts transactions from a smart-contract-wallet
// transaction service into ledger records.
//
// Per-transaction rules:
//   - a missing execution timestamp makes the record unusable; skip it;
//   - success defaults to true when unreported (externally-originated
//     deposits omit the field; being recorded on-chain, they succeeded);
//   - fees exist only for wallet-initiated kinds (multisig or module
//     operations), scaled from wei;
//   - transfers are processed when the parent succeeded or the transaction is
//     an external incoming one;
//   - a wallet-initiated transaction with no transfer record emits one
//     synthetic record when it cost a fee or succeeded, describing the
//     decoded call.
func (e *Engine) NormalizeMultisig(txs []Transaction) []Record {
	records := make([]Record, 0, len(txs))
	for _, tx := range txs {
		if tx.Timestamp.IsZero() {
			e.logger.Debug("skipping multisig transaction without execution timestamp",
				"hash", tx.Hash)
			continue
		}

		succeeded := tx.Successful == nil || *tx.Successful
		walletInitiated := tx.Kind == KindMultisig || tx.Kind == KindModule
		fee := decimal.Zero
		if walletInitiated {
			fee = e.multisigFee(tx)
		}

		before := len(records)
		if succeeded || tx.Kind == KindExternal {
			for _, tr := range tx.Transfers {
				records = e.multisigTransfer(records, tx, tr, fee)
			}
		}

		if len(records) == before && walletInitiated && (fee.IsPositive() || succeeded) {
			desc := e.syntheticDescription(tx)
			if !succeeded {
				desc = "Failed " + desc
			}
			records = e.emit(records, tx, DirectionOut, decimal.Zero, "N/A", desc, lowerOrNA(tx.To), fee)
		}
	}
	return records
}

// multisigTransfer emits a record for one embedded transfer, or returns
// records unchanged when the transfer is skipped.
func (e *Engine) multisigTransfer(records []Record, tx Transaction, tr Transfer, fee decimal.Decimal) []Record {
	dir, cp, involved := e.resolveDirection(tr.From, tr.To)
	if !involved {
		return records
	}
	if e.checkCounterfeit(tx.Hash, tr, fee.IsZero()) {
		return records
	}

	var (
		amount   decimal.Decimal
		currency string
		err      error
	)
	switch tr.Kind {
	case TransferFungible:
		currency = tr.TokenSymbol
		if currency == "" {
			currency = lowerOrNA(tr.TokenAddress)
		}
		if tr.TokenDecimals != nil {
			amount, err = scaleAmount(tr.AmountRaw, *tr.TokenDecimals)
			if err != nil {
				e.logger.Warn("unparseable token amount, skipping transfer",
					"tx_hash", tx.Hash, "value", tr.AmountRaw, "error", err)
				return records
			}
		} else {
			// No decimals resolved: keep the raw unadjusted value rather than
			// dropping a real transfer. The bookkeeper sees the precision loss.
			amount, err = scaleAmount(tr.AmountRaw, 0)
			if err != nil {
				e.logger.Warn("unparseable token amount, skipping transfer",
					"tx_hash", tx.Hash, "value", tr.AmountRaw, "error", err)
				return records
			}
			e.logger.Warn("token decimals missing, recording raw unadjusted amount",
				"tx_hash", tx.Hash, "token_address", tr.TokenAddress, "value", tr.AmountRaw)
		}
	case TransferNative:
		currency = e.chain.NativeSymbol()
		amount, err = weiToNative(tr.AmountRaw)
		if err != nil {
			e.logger.Warn("unparseable native amount, skipping transfer",
				"tx_hash", tx.Hash, "value", tr.AmountRaw, "error", err)
			return records
		}
	case TransferNFT:
		currency = tr.TokenSymbol
		if currency == "" {
			currency = "NFT"
		}
		amount = nftAmount(tr)
	}

	desc := transferDescription(dir, amount.String(), currency, cp)
	if tr.Kind == TransferNFT && tr.TokenID != "" {
		desc = fmt.Sprintf("%s (token #%s)", desc, tr.TokenID)
	}
	if tx.Method != "" {
		desc = fmt.Sprintf("%s [%s]", desc, tx.Method)
	}
	desc = e.annotateProtocol(desc, dir, cp, tr.TokenSymbol)
	return e.emit(records, tx, dir, amount, currency, desc, cp, fee)
}

// nftAmount resolves the unit count of an NFT transfer. Single-edition
// transfers report a zero or empty value and count as one unit; multi-edition
// transfers carry an explicit count.
func nftAmount(tr Transfer) decimal.Decimal {
	raw := strings.TrimSpace(tr.AmountRaw)
	if raw == "" {
		return decimal.NewFromInt(1)
	}
	count, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NewFromInt(1)
	}
	if !tr.MultiEdition && count.IsZero() {
		return decimal.NewFromInt(1)
	}
	return count
}

// multisigFee scales a wei-denominated fee; parse failures degrade to zero.
func (e *Engine) multisigFee(tx Transaction) decimal.Decimal {
	if tx.FeeRaw == "" {
		return decimal.Zero
	}
	fee, err := weiToNative(tx.FeeRaw)
	if err != nil {
		e.logger.Warn("unparseable fee, defaulting to zero",
			"tx_hash", tx.Hash, "fee", tx.FeeRaw, "error", err)
		return decimal.Zero
	}
	return fee
}

// syntheticDescription describes a wallet-initiated transaction that moved no
// assets: approvals, threshold changes, and other settings calls.
func (e *Engine) syntheticDescription(tx Transaction) string {
	switch {
	case tx.Method == "approve" && tx.ApproveSpender != "":
		return fmt.Sprintf("Token Approval for %s to %s",
			lowerOrNA(tx.To), strings.ToLower(tx.ApproveSpender))
	case tx.Method != "":
		return fmt.Sprintf("Contract call: %s", tx.Method)
	}
	return fmt.Sprintf("Contract Interaction with %s", lowerOrNA(tx.To))
}
