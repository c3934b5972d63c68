package ledger

import (
	"time"
)

// Chain identifies a supported EVM chain.
type Chain string

const (
	ChainEthereum Chain = "eth"
	ChainOptimism Chain = "optimism"
)

// NativeSymbol returns the ticker of the chain's native asset.
func (c Chain) NativeSymbol() string {
	switch c {
	case ChainEthereum, ChainOptimism:
		return "ETH"
	}
	return "ETH"
}

// Valid reports whether c is a chain this tool knows about.
func (c Chain) Valid() bool {
	return c == ChainEthereum || c == ChainOptimism
}

// Direction indicates whether value moved into or out of the wallet.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// TransferKind classifies an embedded transfer.
type TransferKind int

const (
	TransferNative TransferKind = iota
	TransferFungible
	TransferNFT
)

// TransactionKind classifies how a transaction originated.
//
// KindMultisig and KindModule are wallet-initiated operations on a
// smart-contract wallet; KindExternal is an externally-originated incoming
// transaction; KindDirect is a plain EOA-style transaction as reported by a
// generic indexer.
type TransactionKind int

const (
	KindDirect TransactionKind = iota
	KindMultisig
	KindModule
	KindExternal
)

// Transfer is a single value movement embedded in a transaction.
// This is our provider-neutral model; the moralis and safe adapters map their
// payloads into it.
type Transfer struct {
	Kind          TransferKind
	From          string
	To            string
	AmountRaw     string // unscaled integer amount as a decimal string
	TokenAddress  string // empty for native transfers
	TokenSymbol   string
	TokenName     string
	TokenDecimals *int32 // nil when the provider did not resolve the token contract
	TokenID       string // NFT transfers only
	MultiEdition  bool   // NFT transfers: true for multi-edition (ERC1155-style) tokens
	Spam          bool   // provider-side spam flag
}

// Transaction is a provider-neutral raw transaction.
//
// Exactly one of the fee representations is populated by an adapter:
// FeeNative carries an already-scaled native-unit fee (generic indexers report
// this), FeeRaw carries a wei-denominated fee (smart-contract wallet services
// report this). GasPrice/GasUsed are the indexer fallback when FeeNative is
// absent.
type Transaction struct {
	Hash       string
	Timestamp  time.Time // zero value means the provider omitted it
	Successful *bool     // nil means the provider did not report it
	From       string
	To         string

	FeeNative string
	FeeRaw    string
	GasPrice  string
	GasUsed   string

	Kind   TransactionKind
	Method string // decoded contract-call method name, if any

	// Approve call parameters, populated when Method == "approve".
	ApproveSpender string

	Transfers []Transfer
}

// Record is a canonical ledger row, ready for CSV export.
type Record struct {
	Date         time.Time // UTC, second precision
	Wallet       string    // always lowercase
	Chain        Chain
	Direction    Direction
	Amount       string // exact decimal string
	Currency     string
	Description  string
	TxHash       string
	FeeNative    string // exact decimal string, "0" when no fee is attributed
	Counterparty string // lowercase address, or "N/A"
}
