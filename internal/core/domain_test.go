package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validDonation() Donation {
	return Donation{
		Date:         "2026-01-12",
		DonorName:    "Alice",
		Amount:       decimal.NewFromInt(500),
		Type:         Credit,
		Denomination: 500,
	}
}

func TestDonationValidate(t *testing.T) {
	if err := validDonation().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Donation)
		want   error
	}{
		{"bad date", func(d *Donation) { d.Date = "12.01.2026" }, ErrInvalidDate},
		{"empty donor", func(d *Donation) { d.DonorName = "  " }, ErrEmptyDonor},
		{"zero amount", func(d *Donation) { d.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(d *Donation) { d.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{"below one paisa", func(d *Donation) { d.Amount = decimal.RequireFromString("0.004") }, ErrInvalidAmount},
		{"debit type", func(d *Donation) { d.Type = "DEBIT" }, ErrInvalidType},
		{"odd denomination", func(d *Donation) { d.Denomination = 750 }, ErrInvalidDenomination},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDonation()
			tc.mutate(&d)
			if err := d.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestIsDenomination(t *testing.T) {
	for _, d := range Denominations() {
		if !IsDenomination(d) {
			t.Fatalf("%d should be a denomination", d)
		}
	}
	for _, d := range []int{0, 1, 300, 2026, 1000000} {
		if IsDenomination(d) {
			t.Fatalf("%d should not be a denomination", d)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	cases := map[string]string{
		"+91 98765-43210": "919876543210",
		"(040) 2345 678":  "0402345678",
		"n/a":             "",
	}
	for in, want := range cases {
		if got := DigitsOnly(in); got != want {
			t.Fatalf("DigitsOnly(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImportSummaryReasons(t *testing.T) {
	s := ImportSummary{
		Imported: 2,
		Skipped:  1,
		Sheets:   []SheetSummary{{Name: "500"}},
		Skips:    []SkippedRow{{Sheet: "500", Row: 4, Reason: "no amount and no serial number"}},
	}
	r := s.Reasons()
	if len(r) != 1 || r[0] != "500 row 4: no amount and no serial number" {
		t.Fatalf("unexpected reasons: %v", r)
	}
	if got := s.Message(); got != "2 imported, 1 skipped across 1 sheets" {
		t.Fatalf("unexpected message: %q", got)
	}
}
