package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMultisig_ERC20TransferOut(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe1",
		Timestamp:  time.Date(2025, 5, 5, 6, 19, 11, 0, time.UTC),
		Successful: boolPtr(true),
		Kind:       KindMultisig,
		From:       testWallet,
		To:         otherAddr,
		FeeRaw:     "1000000000000000",
		Transfers: []Transfer{{
			Kind:          TransferFungible,
			From:          testWallet,
			To:            otherAddr,
			AmountRaw:     "1000000",
			TokenAddress:  usdtMainnet,
			TokenSymbol:   "USDT",
			TokenName:     "Tether USD",
			TokenDecimals: i32(6),
		}},
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, time.Date(2025, 5, 5, 6, 19, 11, 0, time.UTC), r.Date)
	assert.Equal(t, DirectionOut, r.Direction)
	assert.Equal(t, "1", r.Amount)
	assert.Equal(t, "USDT", r.Currency)
	assert.Equal(t, "0.001", r.FeeNative)
	assert.Equal(t, otherAddr, r.Counterparty)
}

func TestNormalizeMultisig_FailedFeeOnlyRecord(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe2",
		Timestamp:  time.Now(),
		Successful: boolPtr(false),
		Kind:       KindMultisig,
		From:       testWallet,
		To:         otherAddr,
		FeeRaw:     "21000000000000",
		Transfers: []Transfer{{
			Kind:          TransferFungible,
			From:          testWallet,
			To:            otherAddr,
			AmountRaw:     "1000000",
			TokenAddress:  usdtMainnet,
			TokenSymbol:   "USDT",
			TokenDecimals: i32(6),
		}},
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, DirectionOut, r.Direction)
	assert.Equal(t, "0", r.Amount)
	assert.Equal(t, "N/A", r.Currency)
	assert.Equal(t, "0.000021", r.FeeNative)
	assert.True(t, len(r.Description) > 0)
	assert.Contains(t, r.Description, "Failed ")
}

func TestNormalizeMultisig_FailedWithoutFeeEmitsNothing(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe3",
		Timestamp:  time.Now(),
		Successful: boolPtr(false),
		Kind:       KindMultisig,
		From:       testWallet,
		To:         otherAddr,
	}}

	assert.Empty(t, e.NormalizeMultisig(txs))
}

func TestNormalizeMultisig_ExternalIncomingDefaultsSuccessful(t *testing.T) {
	e := newTestEngine(t)
	// Externally-originated deposits omit the success flag; being recorded
	// on-chain means they happened.
	txs := []Transaction{{
		Hash:      "0xsafe4",
		Timestamp: time.Now(),
		Kind:      KindExternal,
		From:      otherAddr,
		To:        testWallet,
		Transfers: []Transfer{{
			Kind:      TransferNative,
			From:      otherAddr,
			To:        testWallet,
			AmountRaw: "1000000000000000000",
		}},
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)
	assert.Equal(t, DirectionIn, records[0].Direction)
	assert.Equal(t, "1", records[0].Amount)
	assert.Equal(t, "ETH", records[0].Currency)
	assert.Equal(t, "0", records[0].FeeNative)
}

func TestNormalizeMultisig_MissingDecimalsKeepsRawValue(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe5",
		Timestamp:  time.Now(),
		Successful: boolPtr(true),
		Kind:       KindMultisig,
		From:       testWallet,
		FeeRaw:     "1000000000000000",
		Transfers: []Transfer{{
			Kind:         TransferFungible,
			From:         otherAddr,
			To:           testWallet,
			AmountRaw:    "123456",
			TokenAddress: fakeToken,
			TokenSymbol:  "MYSTERY",
		}},
	}}

	// Better a raw unadjusted value in the ledger than a silently vanished
	// transfer.
	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)
	assert.Equal(t, "123456", records[0].Amount)
	assert.Equal(t, "MYSTERY", records[0].Currency)
}

func TestNormalizeMultisig_NFTSingleEditionDefaultsToOne(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe6",
		Timestamp:  time.Now(),
		Successful: boolPtr(true),
		Kind:       KindMultisig,
		From:       testWallet,
		Transfers: []Transfer{{
			Kind:         TransferNFT,
			From:         testWallet,
			To:           otherAddr,
			AmountRaw:    "0",
			TokenAddress: fakeToken,
			TokenSymbol:  "COOLNFT",
			TokenID:      "42",
		}},
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].Amount)
	assert.Contains(t, records[0].Description, "token #42")
}

func TestNormalizeMultisig_NFTMultiEditionUsesCount(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe7",
		Timestamp:  time.Now(),
		Successful: boolPtr(true),
		Kind:       KindMultisig,
		From:       testWallet,
		Transfers: []Transfer{{
			Kind:         TransferNFT,
			From:         testWallet,
			To:           otherAddr,
			AmountRaw:    "5",
			MultiEdition: true,
			TokenAddress: fakeToken,
			TokenSymbol:  "EDITIONS",
			TokenID:      "7",
		}},
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)
	assert.Equal(t, "5", records[0].Amount)
}

func TestNormalizeMultisig_ApprovalSynthetic(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:           "0xsafe8",
		Timestamp:      time.Now(),
		Successful:     boolPtr(true),
		Kind:           KindMultisig,
		From:           testWallet,
		To:             usdtMainnet,
		FeeRaw:         "500000000000000",
		Method:         "approve",
		ApproveSpender: otherAddr,
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Token Approval for "+usdtMainnet+" to "+otherAddr, r.Description)
	assert.Equal(t, "0", r.Amount)
	assert.Equal(t, "N/A", r.Currency)
	assert.Equal(t, "0.0005", r.FeeNative)
}

func TestNormalizeMultisig_SettingsChangeSynthetic(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe9",
		Timestamp:  time.Now(),
		Successful: boolPtr(true),
		Kind:       KindMultisig,
		From:       testWallet,
		To:         testWallet,
		Method:     "changeThreshold",
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)
	assert.Equal(t, "Contract call: changeThreshold", records[0].Description)
}

func TestNormalizeMultisig_CounterfeitDepositDropped(t *testing.T) {
	e := newTestEngine(t)
	// The classic spoof: an unsolicited incoming "USDT" from an unknown
	// contract with a homoglyph symbol and no attributable fee.
	txs := []Transaction{{
		Hash:      "0xsafe10",
		Timestamp: time.Now(),
		Kind:      KindExternal,
		From:      otherAddr,
		To:        testWallet,
		Transfers: []Transfer{{
			Kind:          TransferFungible,
			From:          otherAddr,
			To:            testWallet,
			AmountRaw:     "5000000000",
			TokenAddress:  fakeToken,
			TokenSymbol:   "USDТ", // Cyrillic last letter
			TokenDecimals: i32(6),
		}},
	}}

	assert.Empty(t, e.NormalizeMultisig(txs))
}

func TestNormalizeMultisig_TrustedDepositKept(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:      "0xsafe11",
		Timestamp: time.Now(),
		Kind:      KindExternal,
		From:      otherAddr,
		To:        testWallet,
		Transfers: []Transfer{{
			Kind:          TransferFungible,
			From:          otherAddr,
			To:            testWallet,
			AmountRaw:     "5000000000",
			TokenAddress:  usdtMainnet,
			TokenSymbol:   "USDT",
			TokenDecimals: i32(6),
		}},
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)
	assert.Equal(t, "5000", records[0].Amount)
}

func TestNormalizeMultisig_MissingTimestampSkipped(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe12",
		Successful: boolPtr(true),
		Kind:       KindMultisig,
		From:       testWallet,
	}}
	assert.Empty(t, e.NormalizeMultisig(txs))
}

func TestNormalizeMultisig_MethodAppearsInTransferDescription(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe13",
		Timestamp:  time.Now(),
		Successful: boolPtr(true),
		Kind:       KindMultisig,
		From:       testWallet,
		FeeRaw:     "1000000000000000",
		Method:     "execTransaction",
		Transfers: []Transfer{{
			Kind:      TransferNative,
			From:      testWallet,
			To:        otherAddr,
			AmountRaw: "500000000000000000",
		}},
	}}

	records := e.NormalizeMultisig(txs)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Description, "[execTransaction]")
}

func TestNormalizeMultisig_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	txs := []Transaction{{
		Hash:       "0xsafe14",
		Timestamp:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Successful: boolPtr(true),
		Kind:       KindMultisig,
		From:       testWallet,
		FeeRaw:     "1000000000000000",
		Transfers: []Transfer{{
			Kind:      TransferNative,
			From:      testWallet,
			To:        otherAddr,
			AmountRaw: "1000000000000000000",
		}},
	}}

	assert.Equal(t, e.NormalizeMultisig(txs), e.NormalizeMultisig(txs))
}

func TestNormalizeMultisig_EmptyInput(t *testing.T) {
	e := newTestEngine(t)
	assert.Empty(t, e.NormalizeMultisig(nil))
}
