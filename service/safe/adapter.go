package safe

import (
	"fmt"
	"strings"
	"time"

	"github.com/brojonat/daoacct/service/ledger"
)

var executionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999Z",
	"2006-01-02T15:04:05Z",
}

// ToLedger maps service transactions to the provider-neutral model. As with
// the indexer adapter, conversion failures degrade into the representation
// the engine already knows how to skip.
func ToLedger(txs []Transaction) []ledger.Transaction {
	out := make([]ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		lt := ledger.Transaction{
			Hash:       txHash(tx),
			Timestamp:  parseExecutionDate(tx.ExecutionDate),
			Successful: tx.IsSuccessful,
			From:       txInitiator(tx),
			To:         tx.To,
			FeeRaw:     tx.Fee,
			Kind:       txKind(tx.TxType),
		}
		if tx.DataDecoded != nil {
			lt.Method = tx.DataDecoded.Method
			if lt.Method == "approve" {
				lt.ApproveSpender = approveSpender(tx.DataDecoded.Parameters)
			}
		}
		for _, tr := range tx.Transfers {
			lt.Transfers = append(lt.Transfers, toLedgerTransfer(tr))
		}
		out = append(out, lt)
	}
	return out
}

func toLedgerTransfer(tr Transfer) ledger.Transfer {
	lt := ledger.Transfer{
		From:         tr.From,
		To:           tr.To,
		AmountRaw:    tr.Value,
		TokenAddress: tr.TokenAddress,
		TokenID:      tr.TokenID,
	}
	if tr.TokenInfo != nil {
		lt.TokenSymbol = tr.TokenInfo.Symbol
		lt.TokenName = tr.TokenInfo.Name
		lt.TokenDecimals = tr.TokenInfo.Decimals
	}
	switch tr.Type {
	case TransferEther:
		lt.Kind = ledger.TransferNative
		lt.TokenAddress = ""
	case TransferERC20:
		lt.Kind = ledger.TransferFungible
	case TransferERC721:
		lt.Kind = ledger.TransferNFT
		// The feed labels ERC1155 movements ERC721_TRANSFER; the resolved
		// token type tells the editions apart.
		if tr.TokenInfo != nil && tr.TokenInfo.Type == "ERC1155" {
			lt.MultiEdition = true
		}
	default:
		// Unknown transfer type: treat as fungible with whatever metadata
		// came along; the engine's gates decide what survives.
		lt.Kind = ledger.TransferFungible
	}
	return lt
}

// txHash picks the on-chain hash for the transaction variant, falling back
// to the internal safe hash so a record is still traceable.
func txHash(tx Transaction) string {
	switch {
	case tx.TxHash != "":
		return tx.TxHash
	case tx.TransactionHash != "":
		return tx.TransactionHash
	}
	return tx.SafeTxHash
}

// txInitiator: multisig and module operations originate from the safe
// itself; external transactions originate from the counterparty, which the
// feed does not name at the top level, so the safe is only the initiator for
// wallet-initiated kinds.
func txInitiator(tx Transaction) string {
	if tx.TxType == TxTypeMultisig || tx.TxType == TxTypeModule {
		return tx.Safe
	}
	return ""
}

func txKind(txType string) ledger.TransactionKind {
	switch txType {
	case TxTypeMultisig:
		return ledger.KindMultisig
	case TxTypeModule:
		return ledger.KindModule
	case TxTypeEthereum:
		return ledger.KindExternal
	}
	return ledger.KindExternal
}

func parseExecutionDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range executionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// approveSpender pulls the spender argument out of a decoded approve call.
// Providers disagree on the parameter name, so match loosely.
func approveSpender(params []Parameter) string {
	for _, p := range params {
		name := strings.TrimPrefix(strings.ToLower(p.Name), "_")
		if name == "spender" || name == "guy" || name == "usr" {
			if s, ok := p.Value.(string); ok {
				return s
			}
		}
	}
	// Conventional ABI ordering: approve(spender, amount).
	if len(params) > 0 {
		if s, ok := params[0].Value.(string); ok && strings.HasPrefix(s, "0x") {
			return s
		}
	}
	return ""
}

// String implements a compact debug representation used in trace logs.
func (t Transaction) String() string {
	return fmt.Sprintf("%s %s transfers=%d", t.TxType, txHash(t), len(t.Transfers))
}
