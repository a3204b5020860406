package importer

import (
	"testing"

	"github.com/shopspring/decimal"

	"templeledger/internal/core"
	"templeledger/internal/locale"
	"templeledger/internal/workbook"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExtractSheetNameFallback(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Receipt No", "Name", "Amount"),
		workbook.Row("1", "R1", "Alice", "1,00,000"),
		workbook.Row("2", "R2", "Bob", ""),
		workbook.Row("", "R3", "Carol", "150000"),
	}
	ex := ExtractSheet("1,00,000", rows, ExtractOptions{FallbackDenomination: SheetDenomination("1,00,000")})

	if len(ex.Candidates) != 3 || len(ex.Skips) != 0 {
		t.Fatalf("got %d candidates %d skips", len(ex.Candidates), len(ex.Skips))
	}
	for _, d := range ex.Candidates {
		if d.Denomination != 100000 {
			t.Errorf("%s: denomination = %d, want 100000", d.DonorName, d.Denomination)
		}
	}
	if !ex.Candidates[1].Amount.Equal(dec("100000")) {
		t.Errorf("serial fallback amount = %s", ex.Candidates[1].Amount)
	}
	if !ex.Candidates[2].Amount.Equal(dec("150000")) {
		t.Errorf("explicit amount above face value = %s", ex.Candidates[2].Amount)
	}
}

func TestExtractSerialFallback(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Name", "Amount"),
		workbook.Row("12", "Ravi", nil),
	}
	ex := ExtractSheet("500", rows, ExtractOptions{FallbackDenomination: 500})
	if len(ex.Candidates) != 1 {
		t.Fatalf("got %d candidates", len(ex.Candidates))
	}
	d := ex.Candidates[0]
	if !d.Amount.Equal(dec("500")) || d.Denomination != 500 || d.SlNo != "12" {
		t.Errorf("unexpected candidate %+v", d)
	}
}

func TestExtractExplicitZeroAmountTreatedAsAbsent(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Name", "Amount"),
		workbook.Row("3", "Zero With Serial", 0.0),
		workbook.Row("", "Zero Without Serial", "0"),
	}
	ex := ExtractSheet("200", rows, ExtractOptions{FallbackDenomination: 200})
	if len(ex.Candidates) != 1 || !ex.Candidates[0].Amount.Equal(dec("200")) {
		t.Fatalf("candidates = %+v", ex.Candidates)
	}
	if len(ex.Skips) != 1 || ex.Skips[0].Row != 3 {
		t.Fatalf("skips = %+v", ex.Skips)
	}
}

func TestExtractSkipProperty(t *testing.T) {
	for _, denom := range []int{0, 100, 100000} {
		rows := [][]any{
			workbook.Row("Sl No", "Name", "Amount", "Denomination"),
			workbook.Row("", "Nobody", "n/a", denom),
		}
		ex := ExtractSheet("Sheet1", rows, ExtractOptions{})
		if len(ex.Candidates) != 0 {
			t.Errorf("denomination %d: emitted %+v", denom, ex.Candidates)
		}
		if len(ex.Skips) != 1 {
			t.Errorf("denomination %d: skips = %d, want 1", denom, len(ex.Skips))
		}
	}
}

func TestExtractDenominationColumnPreferred(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Name", "Denomination"),
		workbook.Row("1", "Column", "1000"),
		workbook.Row("2", "Fallback", ""),
		workbook.Row("3", "Odd Book", "750"),
	}
	ex := ExtractSheet("500", rows, ExtractOptions{FallbackDenomination: 500})
	if len(ex.Candidates) != 3 {
		t.Fatalf("got %d candidates", len(ex.Candidates))
	}
	got := []int{ex.Candidates[0].Denomination, ex.Candidates[1].Denomination, ex.Candidates[2].Denomination}
	want := []int{1000, 500, 500}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d denomination = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestExtractBookNumberDoesNotOverrideSheetDenomination(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Book No", "Receipt No", "Name", "Amount", "Date"),
		workbook.Row("1", "100", "R1", "Ravi", "", "05.03.2026"),
		workbook.Row("2", "100", "R2", "Lakshmi", "750", "05.03.2026"),
	}
	ex := ExtractSheet("500", rows, ExtractOptions{FallbackDenomination: SheetDenomination("500")})
	if len(ex.Candidates) != 2 || len(ex.Skips) != 0 {
		t.Fatalf("got %d candidates %d skips", len(ex.Candidates), len(ex.Skips))
	}
	first, second := ex.Candidates[0], ex.Candidates[1]
	if first.Denomination != 500 || !first.Amount.Equal(dec("500")) {
		t.Errorf("serial row = denomination %d amount %s, want 500 and 500", first.Denomination, first.Amount)
	}
	if second.Denomination != 500 || !second.Amount.Equal(dec("750")) {
		t.Errorf("explicit row = denomination %d amount %s, want 500 and 750", second.Denomination, second.Amount)
	}
}

func TestExtractBelowTitleRow(t *testing.T) {
	rows := [][]any{
		workbook.Row("Temple donor names"),
		workbook.Row("Sl No", "Receipt No", "Name", "Amount"),
		workbook.Row("1", "R1", "Alice", "500"),
		workbook.Row("2", "R2", "Bob", ""),
	}
	ex := ExtractSheet("500", rows, ExtractOptions{FallbackDenomination: 500})
	if ex.Header.Row != 1 {
		t.Fatalf("header row = %d, want 1", ex.Header.Row)
	}
	if len(ex.Candidates) != 2 || len(ex.Skips) != 0 {
		t.Fatalf("got %d candidates %d skips %+v", len(ex.Candidates), len(ex.Skips), ex.Skips)
	}
	if ex.Candidates[0].DonorName != "Alice" || ex.Candidates[1].ReceiptNo != "R2" {
		t.Errorf("candidates = %+v", ex.Candidates)
	}
}

func TestExtractNoDenominationSkipsRow(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Name", "Denomination"),
		workbook.Row("1", "Has Book", "100"),
		workbook.Row("2", "No Book", ""),
	}
	ex := ExtractSheet("Register", rows, ExtractOptions{})
	if len(ex.Candidates) != 1 || len(ex.Skips) != 1 {
		t.Fatalf("got %d candidates %d skips", len(ex.Candidates), len(ex.Skips))
	}
	if ex.Skips[0].Reason != "no denomination" || ex.Skips[0].Sheet != "Register" {
		t.Errorf("skip = %+v", ex.Skips[0])
	}
}

func TestExtractSoftSkip(t *testing.T) {
	rows := [][]any{
		workbook.Row("Total", 12345),
		workbook.Row("Books", 4),
	}
	ex := ExtractSheet("Summary", rows, ExtractOptions{})
	if !ex.SoftSkipped || len(ex.Candidates) != 0 || len(ex.Skips) != 0 {
		t.Errorf("unexpected extraction %+v", ex)
	}
}

func TestExtractDefaultsAndNormalisation(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Receipt No", "Name", "Amount", "Date", "Mobile"),
		workbook.Row("1", "", "", "Rs. 1,500/-", "not a date", "+91 98450-12345"),
		workbook.Row(),
		workbook.Row(2.0, "R9", "  Lakshmi   Devi ", 250.5, 46045.0, nil),
	}
	ex := ExtractSheet("100", rows, ExtractOptions{FallbackDenomination: 100})
	if len(ex.Candidates) != 2 || len(ex.Skips) != 0 {
		t.Fatalf("got %d candidates %d skips", len(ex.Candidates), len(ex.Skips))
	}
	first, second := ex.Candidates[0], ex.Candidates[1]
	if first.DonorName != core.UnknownDonor || first.ReceiptNo != core.PendingReceipt {
		t.Errorf("placeholders not applied: %+v", first)
	}
	if first.Date != locale.SentinelDate {
		t.Errorf("undated row date = %q", first.Date)
	}
	if first.Phone != "919845012345" {
		t.Errorf("phone = %q", first.Phone)
	}
	if !first.Amount.Equal(dec("1500")) || first.Type != core.Credit {
		t.Errorf("first = %+v", first)
	}
	if second.SlNo != "2" || second.DonorName != "Lakshmi Devi" || second.Date != "2026-01-23" {
		t.Errorf("second = %+v", second)
	}
	if !second.Amount.Equal(dec("250.5")) {
		t.Errorf("amount = %s", second.Amount)
	}
}

func TestExtractCustomUndatedDate(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Name", "Date"),
		workbook.Row("1", "A", ""),
	}
	ex := ExtractSheet("500", rows, ExtractOptions{FallbackDenomination: 500, UndatedDate: "2026-10-15"})
	if len(ex.Candidates) != 1 || ex.Candidates[0].Date != "2026-10-15" {
		t.Fatalf("candidates = %+v", ex.Candidates)
	}
}

func TestExtractNeverEmitsNonPositiveAmounts(t *testing.T) {
	rows := [][]any{
		workbook.Row("Sl No", "Name", "Amount"),
		workbook.Row("", "neg", "-500"),
		workbook.Row("", "zero", 0),
		workbook.Row("", "text", "abc"),
		workbook.Row("", "dust", "0.004"),
		workbook.Row("5", "neg with serial", "-1"),
		workbook.Row("6", "dust with serial", "0.004"),
		workbook.Row("", "ok", "1"),
	}
	ex := ExtractSheet("100", rows, ExtractOptions{FallbackDenomination: 100})
	for _, d := range ex.Candidates {
		if !d.Amount.IsPositive() {
			t.Errorf("non-positive amount emitted: %+v", d)
		}
	}
	if len(ex.Candidates) != 3 || len(ex.Skips) != 4 {
		t.Errorf("got %d candidates %d skips", len(ex.Candidates), len(ex.Skips))
	}
	if len(ex.Candidates) > 1 && !ex.Candidates[1].Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("sub-paisa amount with serial = %s, want denomination", ex.Candidates[1].Amount)
	}
	wantRows := []int{2, 3, 4, 5}
	for i, sk := range ex.Skips {
		if sk.Row != wantRows[i] {
			t.Errorf("skip %d at row %d, want %d", i, sk.Row, wantRows[i])
		}
	}
}

func TestSheetDenomination(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"500", 500},
		{"1,00,000", 100000},
		{" 1 000 ", 1000},
		{"Rs 200", 200},
		{"Summary", 0},
		{"2026", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := SheetDenomination(tt.name); got != tt.want {
			t.Errorf("SheetDenomination(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
