// Package config loads environment configuration and the YAML rule tables
// (protocol allowlist, trusted-ticker table) consumed by the ledger engine.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/brojonat/daoacct/service/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// Wallet is one wallet/chain pair to reconcile.
type Wallet struct {
	Address string // lowercase, validated hex address
	Chain   ledger.Chain
}

// Config holds all application configuration loaded from environment
// variables. All required fields are validated at load so a misconfigured
// run fails before any network call.
type Config struct {
	// Indexer configuration
	MoralisAPIKey  string
	MoralisBaseURL string

	// Wallets to reconcile, derived from the per-chain address variables.
	Wallets []Wallet

	// Paths
	CacheDir  string
	OutDir    string
	RulesFile string

	LogLevel string

	// Rule tables parsed from RulesFile (or the built-in defaults).
	Rules *Rules
}

// Load reads configuration from environment variables and the rules file,
// validating all required fields. Every problem is collected so the operator
// sees the complete list at once.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.MoralisAPIKey = os.Getenv("MORALIS_API_KEY")
	if cfg.MoralisAPIKey == "" {
		errs = append(errs, fmt.Errorf("MORALIS_API_KEY is required"))
	}
	cfg.MoralisBaseURL = os.Getenv("MORALIS_BASE_URL")

	ethWallet := os.Getenv("ETH_WALLET_ADDRESS")
	opWallet := os.Getenv("OP_WALLET_ADDRESS")
	if ethWallet == "" && opWallet == "" {
		errs = append(errs, fmt.Errorf("at least one of ETH_WALLET_ADDRESS or OP_WALLET_ADDRESS is required"))
	}
	if ethWallet != "" {
		addr, err := normalizeAddress(ethWallet)
		if err != nil {
			errs = append(errs, fmt.Errorf("ETH_WALLET_ADDRESS: %w", err))
		} else {
			cfg.Wallets = append(cfg.Wallets, Wallet{Address: addr, Chain: ledger.ChainEthereum})
		}
	}
	if opWallet != "" {
		addr, err := normalizeAddress(opWallet)
		if err != nil {
			errs = append(errs, fmt.Errorf("OP_WALLET_ADDRESS: %w", err))
		} else {
			cfg.Wallets = append(cfg.Wallets, Wallet{Address: addr, Chain: ledger.ChainOptimism})
		}
	}

	cfg.CacheDir = getEnvOrDefault("CACHE_DIR", "cache")
	cfg.OutDir = getEnvOrDefault("OUT_DIR", "reports")
	cfg.RulesFile = getEnvOrDefault("RULES_FILE", "rules.yaml")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	rules, err := LoadRules(cfg.RulesFile)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.Rules = rules
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}
	return cfg, nil
}

// normalizeAddress validates a hex address and lowercases it. Addresses are
// always compared and stored lowercase; checksum casing from the environment
// must never cause a false "different party".
func normalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("invalid address %q", addr)
	}
	return strings.ToLower(common.HexToAddress(addr).Hex()), nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
