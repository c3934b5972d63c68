package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brojonat/daoacct/service/ledger"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MORALIS_API_KEY", "test-key")
	t.Setenv("ETH_WALLET_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("OP_WALLET_ADDRESS", "")
	t.Setenv("RULES_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CACHE_DIR", "")
	t.Setenv("OUT_DIR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.MoralisAPIKey)
	assert.Equal(t, "cache", cfg.CacheDir)
	assert.Equal(t, "reports", cfg.OutDir)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NotNil(t, cfg.Rules)

	require.Len(t, cfg.Wallets, 1)
	assert.Equal(t, ledger.ChainEthereum, cfg.Wallets[0].Chain)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Wallets[0].Address)
}

func TestLoad_BothChains(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OP_WALLET_ADDRESS", "0x2222222222222222222222222222222222222222")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Wallets, 2)
	assert.Equal(t, ledger.ChainEthereum, cfg.Wallets[0].Chain)
	assert.Equal(t, ledger.ChainOptimism, cfg.Wallets[1].Chain)
}

func TestLoad_NormalizesChecksumCasing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ETH_WALLET_ADDRESS", "0xDAC17F958D2ee523a2206206994597C13D831ec7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", cfg.Wallets[0].Address)
}

func TestLoad_CollectsAllErrors(t *testing.T) {
	t.Setenv("MORALIS_API_KEY", "")
	t.Setenv("ETH_WALLET_ADDRESS", "")
	t.Setenv("OP_WALLET_ADDRESS", "")
	t.Setenv("RULES_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MORALIS_API_KEY")
	assert.Contains(t, err.Error(), "ETH_WALLET_ADDRESS or OP_WALLET_ADDRESS")
}

func TestLoad_RejectsInvalidAddress(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ETH_WALLET_ADDRESS", "not-an-address")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address")
}

func TestLoadRules_MissingFileFallsBackToDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NotNil(t, rules)
	assert.NotEmpty(t, rules.Tickers)
	assert.NotEmpty(t, rules.Protocols)
}

func TestLoadRules_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
protocols:
  - name: Compound V3
    receipt_prefix: c
    contracts:
      eth:
        - "0xc3d688b66703497daa19211eedff47f25384cdc3"
tickers:
  - ticker: usdc
    trusted_contracts:
      eth:
        - "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	table := rules.ProtocolTable()
	p, ok := table.Lookup(ledger.ChainEthereum, "0xC3D688B66703497DAA19211EEDFF47F25384CDC3")
	require.True(t, ok)
	assert.Equal(t, "Compound V3", p.Name)
	assert.Equal(t, "c", p.ReceiptPrefix)

	tickers := rules.TickerRules()
	require.Len(t, tickers, 1)
	assert.Equal(t, "USDC", tickers[0].Ticker)
	assert.Equal(t,
		[]string{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
		tickers[0].Trusted[ledger.ChainEthereum])
}

func TestLoadRules_InvalidFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tickers: [{ticker: '', trusted_contracts: {mars: ['xyz']}}]"), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chain")
}
