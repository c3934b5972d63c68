package ledger

import "strings"

// Protocol describes a known contract the wallet interacts with (lending
// pools and the like). ReceiptPrefix is the naming convention of the
// protocol's receipt tokens, e.g. "a" for Aave aTokens.
type Protocol struct {
	Name          string
	ReceiptPrefix string
}

// ProtocolTable maps chain -> lowercase contract address -> protocol label.
// It is injected into the engine by the configuration layer; the engine never
// hard-codes addresses.
type ProtocolTable map[Chain]map[string]Protocol

// Lookup returns the protocol registered for addr on chain, if any.
// Address comparison is case-insensitive.
func (t ProtocolTable) Lookup(chain Chain, addr string) (Protocol, bool) {
	if t == nil {
		return Protocol{}, false
	}
	p, ok := t[chain][strings.ToLower(addr)]
	return p, ok
}

// TickerRule configures the counterfeit filter for one canonical asset: the
// ticker string counterfeits impersonate, and the canonical contract
// addresses (per chain) that are exempt from filtering.
type TickerRule struct {
	Ticker  string
	Trusted map[Chain][]string
}

// trusted reports whether addr is a canonical contract for this ticker on
// the given chain.
func (r TickerRule) trusted(chain Chain, addr string) bool {
	addr = strings.ToLower(addr)
	for _, t := range r.Trusted[chain] {
		if strings.ToLower(t) == addr {
			return true
		}
	}
	return false
}
