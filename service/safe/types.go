// Package safe fetches transaction history from a Safe-style smart-contract
// wallet transaction service and adapts it to the ledger's provider-neutral
// model.
package safe

// TransactionsPage is one page of the all-transactions endpoint. Pagination
// is by absolute next-page URL; an empty Next means the last page.
type TransactionsPage struct {
	Count    int           `json:"count"`
	Next     string        `json:"next"`
	Previous string        `json:"previous"`
	Results  []Transaction `json:"results"`
}

// Transaction kinds as reported by the service.
const (
	TxTypeMultisig = "MULTISIG_TRANSACTION"
	TxTypeModule   = "MODULE_TRANSACTION"
	TxTypeEthereum = "ETHEREUM_TRANSACTION"
)

// Transaction mirrors one entry of the service's combined transaction feed.
// The three txType variants populate different subsets of these fields.
type Transaction struct {
	TxType          string       `json:"txType"`
	Safe            string       `json:"safe"`
	To              string       `json:"to"`
	ExecutionDate   string       `json:"executionDate"`
	IsSuccessful    *bool        `json:"isSuccessful"` // absent on externally-originated transactions
	Fee             string       `json:"fee"`          // wei
	SafeTxHash      string       `json:"safeTxHash"`
	TransactionHash string       `json:"transactionHash"` // multisig/module on-chain hash
	TxHash          string       `json:"txHash"`          // ethereum-transaction on-chain hash
	Transfers       []Transfer   `json:"transfers"`
	DataDecoded     *DataDecoded `json:"dataDecoded"`
}

// Transfer types as reported by the service.
const (
	TransferEther  = "ETHER_TRANSFER"
	TransferERC20  = "ERC20_TRANSFER"
	TransferERC721 = "ERC721_TRANSFER"
)

// Transfer is one asset movement attached to a transaction.
type Transfer struct {
	Type         string     `json:"type"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	Value        string     `json:"value"`
	TokenID      string     `json:"tokenId"`
	TokenAddress string     `json:"tokenAddress"`
	TokenInfo    *TokenInfo `json:"tokenInfo"`
}

// TokenInfo is the service's resolved token metadata, absent when the token
// contract could not be introspected.
type TokenInfo struct {
	Type     string `json:"type"` // ERC20, ERC721, ERC1155
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals *int32 `json:"decimals"`
}

// DataDecoded carries the decoded contract call, when the service recognized
// the method.
type DataDecoded struct {
	Method     string      `json:"method"`
	Parameters []Parameter `json:"parameters"`
}

// Parameter is one decoded call argument.
type Parameter struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}
