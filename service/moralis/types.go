// Package moralis fetches wallet transaction history from a Moralis-style
// multi-chain indexer and adapts it to the ledger's provider-neutral model.
package moralis

// HistoryPage is one page of the wallet history endpoint. An empty cursor
// means the last page has been reached.
type HistoryPage struct {
	Cursor string        `json:"cursor"`
	Result []Transaction `json:"result"`
}

// Transaction mirrors one entry of the indexer's wallet history response.
// Fields we never read are omitted; unknown fields are ignored on decode.
type Transaction struct {
	Hash            string           `json:"hash"`
	BlockTimestamp  string           `json:"block_timestamp"`
	FromAddress     string           `json:"from_address"`
	ToAddress       string           `json:"to_address"`
	TransactionFee  string           `json:"transaction_fee"` // native units, already scaled
	GasPrice        string           `json:"gas_price"`       // wei
	ReceiptGasUsed  string           `json:"receipt_gas_used"`
	ReceiptStatus   string           `json:"receipt_status"` // "1" success, "0" reverted
	Summary         string           `json:"summary"`
	Category        string           `json:"category"`
	PossibleSpam    bool             `json:"possible_spam"`
	ERC20Transfers  []TokenTransfer  `json:"erc20_transfers"`
	NativeTransfers []NativeTransfer `json:"native_transfers"`
	NFTTransfers    []NFTTransfer    `json:"nft_transfers"`
}

// TokenTransfer is an ERC20 movement decoded by the indexer.
type TokenTransfer struct {
	TokenName        string `json:"token_name"`
	TokenSymbol      string `json:"token_symbol"`
	TokenDecimals    string `json:"token_decimals"` // decimal string, may be empty
	FromAddress      string `json:"from_address"`
	ToAddress        string `json:"to_address"`
	Address          string `json:"address"` // token contract
	Value            string `json:"value"`   // unscaled integer string
	PossibleSpam     bool   `json:"possible_spam"`
	VerifiedContract bool   `json:"verified_contract"`
}

// NativeTransfer is a native-asset movement within a transaction, including
// internal transfers surfaced by the indexer.
type NativeTransfer struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Value       string `json:"value"` // wei
	Direction   string `json:"direction"`
	InternalTx  bool   `json:"internal_transaction"`
	TokenSymbol string `json:"token_symbol"`
}

// NFTTransfer is carried through for cache completeness; the generic-indexer
// normalization variant does not book NFT movements.
type NFTTransfer struct {
	TokenAddress string `json:"token_address"`
	TokenID      string `json:"token_id"`
	FromAddress  string `json:"from_address"`
	ToAddress    string `json:"to_address"`
	ContractType string `json:"contract_type"`
	Amount       string `json:"amount"`
	PossibleSpam bool   `json:"possible_spam"`
}
