package importer

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"templeledger/internal/core"
	"templeledger/internal/locale"
)

// SheetDenomination derives a fallback denomination from a sheet name such as
// "1,00,000" or "500". Names that are not a canonical denomination yield 0.
func SheetDenomination(name string) int {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	v := locale.ParseDenomination(cleaned)
	if !core.IsDenomination(v) {
		return 0
	}
	return v
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}
