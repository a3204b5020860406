// Package locale converts human-entered spreadsheet values (Indian-grouped
// amounts, day-first dates, spreadsheet serial dates) into canonical forms and
// back into display strings.
//
// Every function in this package is pure: same input, same output, no I/O.
package locale

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyMarks are stripped from the front of amount text, longest first.
var currencyMarks = []string{"rs.", "inr", "rs", "₹"}

// ParseAmount converts a raw cell value into a positive amount rounded to paise.
//
// Thousands separators are removed regardless of grouping, so "1,00,000" and
// "100,000" both yield 100000. Numeric cell values are accepted as they are.
// Anything that does not resolve to a finite positive number yields zero,
// which callers treat as "absent".
func ParseAmount(raw any) decimal.Decimal {
	var d decimal.Decimal
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		d = v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat(v)
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat32(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case int32:
		d = decimal.NewFromInt32(v)
	case string:
		parsed, ok := parseAmountText(v)
		if !ok {
			return decimal.Zero
		}
		d = parsed
	default:
		parsed, ok := parseAmountText(fmt.Sprint(v))
		if !ok {
			return decimal.Zero
		}
		d = parsed
	}
	if !d.IsPositive() {
		return decimal.Zero
	}
	return d.Round(2)
}

func parseAmountText(s string) (decimal.Decimal, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\u00a0', '\t':
			return -1
		}
		return r
	}, s)
	for _, mark := range currencyMarks {
		if strings.HasPrefix(s, mark) {
			s = s[len(mark):]
			break
		}
	}
	// "500/-" is the customary way of writing a whole rupee amount.
	s = strings.TrimSuffix(s, "/-")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDenomination resolves a raw value to a whole-rupee book denomination.
// It returns 0 when the value is not a positive whole number.
func ParseDenomination(raw any) int {
	d := ParseAmount(raw)
	if d.IsZero() || !d.Equal(d.Truncate(0)) {
		return 0
	}
	if !d.LessThanOrEqual(decimal.NewFromInt(math.MaxInt32)) {
		return 0
	}
	return int(d.IntPart())
}
