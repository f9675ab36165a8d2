// Package amount converts between ledger base units and display values.
package amount

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Format renders base units with the token's decimals, e.g. 1500000 -> "1.5" for 6 decimals.
func Format(units int64, decimals int32) string {
	return decimal.New(units, -decimals).String()
}

// Parse converts a display value into base units, rejecting precision the
// token cannot represent.
func Parse(value string, decimals int32) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %q exceeds %d decimal places", value, decimals)
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("amount %q out of range", value)
	}
	return scaled.IntPart(), nil
}
