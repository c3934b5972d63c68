package ledger

import (
	"strings"
	"unicode"
)

// Criterion identifies which counterfeit heuristic matched a transfer.
type Criterion string

const (
	// CriterionNonASCIIShortSymbol: the symbol or name contains non-ASCII
	// characters and the symbol is 3-5 characters long, the typical length of
	// a spoofed stablecoin ticker.
	CriterionNonASCIIShortSymbol Criterion = "non_ascii_short_symbol"
	// CriterionConfusableTickerMatch: the symbol or name contains a code point
	// from a confusable Unicode range and the alphanumeric-only uppercased
	// symbol contains the ticker.
	CriterionConfusableTickerMatch Criterion = "confusable_ticker_match"
	// CriterionHomoglyphTicker: the symbol renders as the exact ticker but its
	// underlying code points differ from the canonical ASCII ones.
	CriterionHomoglyphTicker Criterion = "homoglyph_ticker"
	// CriterionPunctuationInsertion: stripping non-alphanumerics and
	// uppercasing yields the ticker, but the raw symbol is not the ticker.
	CriterionPunctuationInsertion Criterion = "punctuation_insertion"
	// CriterionSpaceInsertion: removing ASCII spaces and uppercasing yields
	// the ticker, but the raw symbol is not the ticker.
	CriterionSpaceInsertion Criterion = "space_insertion"
	// CriterionZeroFeeLookalike: the transfer carries no attributable fee and
	// the symbol or name loosely resembles the ticker without matching it.
	CriterionZeroFeeLookalike Criterion = "zero_fee_lookalike"
)

// Verdict is the structured result of a counterfeit check. It replaces any
// shared diagnostic state: the engine logs the matched criterion per transfer.
type Verdict struct {
	Counterfeit bool
	Ticker      string
	Criterion   Criterion
}

// Filter screens token transfers for counterfeit/homoglyph impersonations of
// configured tickers. A transfer from a trusted canonical contract is never
// flagged, regardless of any other signal.
type Filter struct {
	chain Chain
	rules []TickerRule
}

// NewFilter builds a filter for one chain from the configured ticker rules.
func NewFilter(chain Chain, rules []TickerRule) *Filter {
	return &Filter{chain: chain, rules: rules}
}

// Check evaluates a transfer against every configured ticker. feeIsZero is
// the caller's fee attribution for the parent transaction: spoofed deposits
// characteristically arrive with no fee attributable to the wallet.
func (f *Filter) Check(t Transfer, feeIsZero bool) Verdict {
	if t.TokenAddress == "" {
		return Verdict{} // native transfers carry no symbol to spoof
	}
	addr := strings.ToLower(t.TokenAddress)
	for _, r := range f.rules {
		if r.trusted(f.chain, addr) {
			return Verdict{}
		}
	}
	for _, r := range f.rules {
		ticker := strings.ToUpper(r.Ticker)
		if crit, ok := matchCounterfeit(t.TokenSymbol, t.TokenName, ticker, feeIsZero); ok {
			return Verdict{Counterfeit: true, Ticker: ticker, Criterion: crit}
		}
	}
	return Verdict{}
}

// matchCounterfeit applies the six heuristics for one ticker, in order.
func matchCounterfeit(symbol, name, ticker string, feeIsZero bool) (Criterion, bool) {
	symRunes := []rune(symbol)

	if (hasNonASCII(symbol) || hasNonASCII(name)) && len(symRunes) >= 3 && len(symRunes) <= 5 {
		return CriterionNonASCIIShortSymbol, true
	}

	if (hasConfusable(symbol) || hasConfusable(name)) &&
		strings.Contains(stripNonAlnumUpper(symbol), ticker) {
		return CriterionConfusableTickerMatch, true
	}

	if symbol != ticker && foldHomoglyphs(symbol) == ticker {
		return CriterionHomoglyphTicker, true
	}

	if symbol != ticker && stripNonAlnumUpper(symbol) == ticker {
		return CriterionPunctuationInsertion, true
	}

	if symbol != ticker && strings.ToUpper(strings.ReplaceAll(symbol, " ", "")) == ticker {
		return CriterionSpaceInsertion, true
	}

	if feeIsZero && symbol != ticker &&
		(containsFold(symbol, ticker) || containsFold(name, ticker)) {
		return CriterionZeroFeeLookalike, true
	}

	return "", false
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

// confusableRanges are Unicode blocks commonly abused to imitate Latin
// tickers: Cyrillic, Greek, Cyrillic Supplement, General Punctuation
// (including zero-width and other invisible characters), Mathematical
// Alphanumeric Symbols, and Halfwidth/Fullwidth Forms.
var confusableRanges = [][2]rune{
	{0x0370, 0x03FF},
	{0x0400, 0x04FF},
	{0x0500, 0x052F},
	{0x2000, 0x206F},
	{0x1D400, 0x1D7FF},
	{0xFF00, 0xFFEF},
}

func hasConfusable(s string) bool {
	for _, r := range s {
		for _, rng := range confusableRanges {
			if r >= rng[0] && r <= rng[1] {
				return true
			}
		}
	}
	return false
}

// stripNonAlnumUpper removes every non-alphanumeric rune and uppercases the
// rest. Unicode letters and digits survive, so a Cyrillic lookalike letter is
// not silently laundered into its Latin twin here.
func stripNonAlnumUpper(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}

// latinLookalikes maps individual Cyrillic and Greek code points to the Latin
// letters they render as in common fonts.
var latinLookalikes = map[rune]rune{
	// Cyrillic uppercase
	'А': 'A', 'В': 'B', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H', 'О': 'O',
	'Р': 'P', 'С': 'C', 'Т': 'T', 'У': 'Y', 'Х': 'X', 'Ѕ': 'S', 'І': 'I', 'Ј': 'J',
	// Cyrillic lowercase
	'а': 'a', 'е': 'e', 'о': 'o', 'р': 'p', 'с': 'c', 'у': 'y', 'х': 'x',
	'ѕ': 's', 'і': 'i', 'ј': 'j',
	// Greek uppercase
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Ζ': 'Z', 'Η': 'H', 'Ι': 'I', 'Κ': 'K',
	'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'Ρ': 'P', 'Τ': 'T', 'Υ': 'Y', 'Χ': 'X',
	// Greek lowercase
	'ο': 'o', 'ν': 'v',
}

// foldHomoglyphs rewrites confusable code points to the ASCII characters they
// display as. Characters without a known Latin twin pass through unchanged,
// so a genuinely foreign symbol does not fold into a ticker by accident.
func foldHomoglyphs(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case latinLookalikes[r] != 0:
			b.WriteRune(latinLookalikes[r])
		case r >= 0xFF21 && r <= 0xFF3A: // fullwidth A-Z
			b.WriteRune('A' + (r - 0xFF21))
		case r >= 0xFF41 && r <= 0xFF5A: // fullwidth a-z
			b.WriteRune('a' + (r - 0xFF41))
		case r >= 0xFF10 && r <= 0xFF19: // fullwidth 0-9
			b.WriteRune('0' + (r - 0xFF10))
		case r >= 0x1D400 && r <= 0x1D6A3: // mathematical alphanumeric letters
			off := (r - 0x1D400) % 52
			if off < 26 {
				b.WriteRune('A' + off)
			} else {
				b.WriteRune('a' + off - 26)
			}
		case r >= 0x1D7CE && r <= 0x1D7FF: // mathematical digits
			b.WriteRune('0' + (r-0x1D7CE)%10)
		case r >= 0x200B && r <= 0x200D, r == 0x2060, r == 0xFEFF:
			// zero-width characters render as nothing
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
