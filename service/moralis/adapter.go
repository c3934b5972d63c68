package moralis

import (
	"strconv"
	"strings"
	"time"

	"github.com/brojonat/daoacct/service/ledger"
)

// timestampLayouts covers the formats the indexer has been observed to emit.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
}

// ToLedger maps indexer transactions to the provider-neutral model. Field
// conversion failures are absorbed into the neutral representation (zero
// timestamp, nil decimals) so the engine's skip rules apply uniformly; the
// adapter itself never errors.
func ToLedger(txs []Transaction) []ledger.Transaction {
	out := make([]ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		lt := ledger.Transaction{
			Hash:      tx.Hash,
			Timestamp: parseTimestamp(tx.BlockTimestamp),
			From:      tx.FromAddress,
			To:        tx.ToAddress,
			FeeNative: tx.TransactionFee,
			GasPrice:  tx.GasPrice,
			GasUsed:   tx.ReceiptGasUsed,
			Kind:      ledger.KindDirect,
		}
		if tx.ReceiptStatus != "" {
			ok := tx.ReceiptStatus == "1"
			lt.Successful = &ok
		}
		for _, tr := range tx.ERC20Transfers {
			lt.Transfers = append(lt.Transfers, ledger.Transfer{
				Kind:          ledger.TransferFungible,
				From:          tr.FromAddress,
				To:            tr.ToAddress,
				AmountRaw:     tr.Value,
				TokenAddress:  tr.Address,
				TokenSymbol:   tr.TokenSymbol,
				TokenName:     tr.TokenName,
				TokenDecimals: parseDecimals(tr.TokenDecimals),
				Spam:          tr.PossibleSpam,
			})
		}
		for _, tr := range tx.NativeTransfers {
			lt.Transfers = append(lt.Transfers, ledger.Transfer{
				Kind:      ledger.TransferNative,
				From:      tr.FromAddress,
				To:        tr.ToAddress,
				AmountRaw: tr.Value,
			})
		}
		out = append(out, lt)
	}
	return out
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseDecimals(s string) *int32 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 0 {
		return nil
	}
	d := int32(n)
	return &d
}
