package locale

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{"23.1.2026", "2026-01-23", true},
		{"12.1.2026", "2026-01-12", true},
		{"5-11-25", "2025-11-05", true},
		{"05/11/2025", "2025-11-05", true},
		{"1..2.2026", "2026-02-01", true},
		{"2026-01-13", "2026-01-13", true},
		{46034.0, "2026-01-12", true},
		{46035.75, "2026-01-13", true},
		{46045, "2026-01-23", true},
		{"46034", "2026-01-12", true},
		{45351.0, "2024-02-29", true},
		{time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), "2026-03-04", true},
		{"31.2.2026", "", false},
		{"13/13/2026", "", false},
		{"January 5", "", false},
		{"", "", false},
		{nil, "", false},
		{0.0, "", false},
		{-3.0, "", false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseDate(%#v) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDateOr(t *testing.T) {
	if got := ParseDateOr("not a date", SentinelDate); got != SentinelDate {
		t.Fatalf("expected sentinel, got %q", got)
	}
	if got := ParseDateOr("2.3.2026", SentinelDate); got != "2026-03-02" {
		t.Fatalf("expected parsed date, got %q", got)
	}
}

func TestDateRoundTrip(t *testing.T) {
	d, ok := ParseDate("23.1.2026")
	if !ok {
		t.Fatalf("expected parse ok")
	}
	if got := FormatDateDisplay(d); got != "23-01-2026" {
		t.Fatalf("round trip = %q, want 23-01-2026", got)
	}
}
