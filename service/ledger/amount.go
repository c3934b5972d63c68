package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// nativeDecimals is the scale of every EVM native asset.
const nativeDecimals = 18

// scaleAmount converts a raw integer amount string to an exact decimal by
// shifting the point left by the token's scale. No binary floating point is
// involved, so 1500000 at 6 decimals is exactly 1.5.
func scaleAmount(raw string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q: %w", raw, err)
	}
	return d.Shift(-decimals), nil
}

// weiToNative converts a wei-denominated integer string to native units.
func weiToNative(raw string) (decimal.Decimal, error) {
	return scaleAmount(raw, nativeDecimals)
}
