package locale

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatDateDisplay renders a canonical date as DD-MM-YYYY.
// Input that is not canonical is returned unchanged.
func FormatDateDisplay(canonical string) string {
	t, err := time.Parse(canonicalLayout, canonical)
	if err != nil {
		return canonical
	}
	return t.Format("02-01-2006")
}

// indian formats with the en-IN CLDR pattern #,##,##0.
var indian = message.NewPrinter(language.MustParse("en-IN"))

// FormatCurrencyDisplay groups an amount the Indian way: the last three
// integer digits, then groups of two ("1,00,000", "12,34,567.50").
// Paise are shown only when non-zero.
func FormatCurrencyDisplay(amount decimal.Decimal) string {
	amount = amount.Round(2)
	rupees := amount.Truncate(0)
	paise := amount.Sub(rupees).Abs().Shift(2).IntPart()

	s := indian.Sprint(number.Decimal(rupees.IntPart()))
	if amount.IsNegative() && rupees.IsZero() {
		s = "-" + s
	}
	if paise != 0 {
		s += fmt.Sprintf(".%02d", paise)
	}
	return s
}
