package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/brojonat/daoacct/service/ledger"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Rules holds the YAML-configured tables the ledger engine is parameterized
// with: the known-protocol contract allowlist and the counterfeit filter's
// trusted-ticker table.
type Rules struct {
	Protocols []ProtocolRule `yaml:"protocols"`
	Tickers   []TickerRule   `yaml:"tickers"`
}

// ProtocolRule labels a protocol's contract addresses per chain.
type ProtocolRule struct {
	Name          string              `yaml:"name"`
	ReceiptPrefix string              `yaml:"receipt_prefix"`
	Contracts     map[string][]string `yaml:"contracts"` // chain -> addresses
}

// TickerRule lists the canonical (trusted) contract addresses for one asset
// ticker per chain.
type TickerRule struct {
	Ticker  string              `yaml:"ticker"`
	Trusted map[string][]string `yaml:"trusted_contracts"` // chain -> addresses
}

// LoadRules reads the rules file. A missing file falls back to the built-in
// defaults; a present-but-invalid file is an error.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultRules(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if err := rules.validate(); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return &rules, nil
}

// DefaultRules covers the assets and protocols the treasury actually touches:
// canonical USDT contracts and the Aave V3 pools on both chains.
func DefaultRules() *Rules {
	return &Rules{
		Protocols: []ProtocolRule{
			{
				Name:          "Aave V3",
				ReceiptPrefix: "a",
				Contracts: map[string][]string{
					string(ledger.ChainEthereum): {"0x87870bca3f3fd6335c3f4ce8392d69350b4fa4e2"},
					string(ledger.ChainOptimism): {"0x794a61358d6845594f94dc1db02a252b5b4814ad"},
				},
			},
		},
		Tickers: []TickerRule{
			{
				Ticker: "USDT",
				Trusted: map[string][]string{
					string(ledger.ChainEthereum): {"0xdac17f958d2ee523a2206206994597c13d831ec7"},
					string(ledger.ChainOptimism): {"0x94b008aa00579c1307b0ef2c499ad98a8ce58e58"},
				},
			},
		},
	}
}

func (r *Rules) validate() error {
	var errs []error
	for _, p := range r.Protocols {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("protocol with empty name"))
		}
		for chain, addrs := range p.Contracts {
			if !ledger.Chain(chain).Valid() {
				errs = append(errs, fmt.Errorf("protocol %s: unknown chain %q", p.Name, chain))
			}
			for _, a := range addrs {
				if !common.IsHexAddress(a) {
					errs = append(errs, fmt.Errorf("protocol %s: invalid address %q", p.Name, a))
				}
			}
		}
	}
	for _, t := range r.Tickers {
		if t.Ticker == "" {
			errs = append(errs, fmt.Errorf("ticker rule with empty ticker"))
		}
		for chain, addrs := range t.Trusted {
			if !ledger.Chain(chain).Valid() {
				errs = append(errs, fmt.Errorf("ticker %s: unknown chain %q", t.Ticker, chain))
			}
			for _, a := range addrs {
				if !common.IsHexAddress(a) {
					errs = append(errs, fmt.Errorf("ticker %s: invalid address %q", t.Ticker, a))
				}
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// ProtocolTable converts the YAML shape into the engine's lookup table.
func (r *Rules) ProtocolTable() ledger.ProtocolTable {
	table := ledger.ProtocolTable{}
	for _, p := range r.Protocols {
		for chain, addrs := range p.Contracts {
			c := ledger.Chain(chain)
			if table[c] == nil {
				table[c] = map[string]ledger.Protocol{}
			}
			for _, a := range addrs {
				table[c][strings.ToLower(a)] = ledger.Protocol{
					Name:          p.Name,
					ReceiptPrefix: p.ReceiptPrefix,
				}
			}
		}
	}
	return table
}

// TickerRules converts the YAML shape into the engine's filter rules.
func (r *Rules) TickerRules() []ledger.TickerRule {
	out := make([]ledger.TickerRule, 0, len(r.Tickers))
	for _, t := range r.Tickers {
		rule := ledger.TickerRule{
			Ticker:  strings.ToUpper(t.Ticker),
			Trusted: map[ledger.Chain][]string{},
		}
		for chain, addrs := range t.Trusted {
			c := ledger.Chain(chain)
			for _, a := range addrs {
				rule.Trusted[c] = append(rule.Trusted[c], strings.ToLower(a))
			}
		}
		out = append(out, rule)
	}
	return out
}
