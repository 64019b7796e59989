package core

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const currency = "HKD"

// ParseAmount reads a whole-dollar amount such as "375", "1,200", "$3,375 HKD" or "HK$500".
// Fractional and non-numeric values fail with ErrInvalidAmount.
func ParseAmount(s string) (int64, error) {
	v := strings.TrimSpace(s)
	if len(v) >= len(currency) && strings.EqualFold(v[len(v)-len(currency):], currency) {
		v = strings.TrimSpace(v[:len(v)-len(currency)])
	}
	v = strings.TrimPrefix(v, "HK$")
	v = strings.TrimPrefix(v, "$")
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not a whole amount", ErrInvalidAmount, s)
	}
	if !d.Equal(decimal.NewFromInt(d.IntPart())) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return d.IntPart(), nil
}

// FormatAmount renders n with thousands separators and the currency suffix: "1,200 HKD".
func FormatAmount(n int64) string {
	return humanize.Comma(n) + " " + currency
}

// FormatTotal renders the total row value: "$3,375 HKD".
func FormatTotal(n int64) string {
	return "$" + FormatAmount(n)
}

// ParseTotal reverses FormatTotal.
func ParseTotal(s string) (int64, error) {
	return ParseAmount(s)
}
