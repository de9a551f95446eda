package util

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"treasury/domain"
)

var (
	ErrorInvalidAmountText = fmt.Errorf("invalid amount")
	ErrorTooManyDecimals   = fmt.Errorf("amount has more decimals than the asset supports")
)

// FormatAmount renders base units as a comma grouped decimal, e.g. 1234500000 with 6
// decimals becomes "1,234.5".
func FormatAmount(amount sdkmath.Int, decimals int32) string {
	if amount.IsNil() {
		return "0"
	}
	value := decimal.NewFromBigInt(amount.BigInt(), -decimals)
	sign := ""
	if value.IsNegative() {
		sign = "-"
		value = value.Abs()
	}
	whole := value.Truncate(0)
	text := humanize.BigComma(whole.BigInt())
	if fraction := value.Sub(whole); !fraction.IsZero() {
		text += strings.TrimPrefix(fraction.String(), "0")
	}
	return sign + text
}

func AssetAmountString(amount sdkmath.Int, asset domain.Asset) string {
	return fmt.Sprintf("%v %v", FormatAmount(amount, asset.Decimals), asset)
}

// ParseAmount converts a human decimal ("12.5", "1,000") into base units of an
// asset with the given decimals.
func ParseAmount(text string, decimals int32) (sdkmath.Int, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	value, err := decimal.NewFromString(clean)
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("%w: %q", ErrorInvalidAmountText, text)
	}
	if value.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("%w: %q", domain.ErrorInvalidAmount, text)
	}

	scaled := value.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return sdkmath.Int{}, fmt.Errorf("%w: %q (%v decimals)", ErrorTooManyDecimals, text, decimals)
	}

	units := scaled.BigInt()
	if units.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, fmt.Errorf("%w: %q", domain.ErrorOverflow, text)
	}
	return sdkmath.NewIntFromBigInt(units), nil
}
