package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical, sortable date representation used internally.
const DateLayout = "2006-01-02"

const (
	Credit DonationType = "CREDIT"
)

const (
	// UnknownDonor is stored when the source carries no donor name.
	UnknownDonor = "Unknown"
	// PendingReceipt is stored when the source carries no receipt number.
	PendingReceipt = "Pending"
)

type (
	DonationType string

	// Donation is the only persisted entity of the ledger.
	Donation struct {
		ID           int64
		Date         string // canonical YYYY-MM-DD
		DonorName    string
		Amount       decimal.Decimal
		Type         DonationType
		Denomination int
		SlNo         string
		ReceiptNo    string
		Phone        string // digits only
		ImportBatch  string // empty for manual entries
		CreatedAt    time.Time
	}

	// Totals are the derived views recomputed after every mutation.
	Totals struct {
		TotalFund  decimal.Decimal
		TodayTotal decimal.Decimal
		Today      string
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDenomination = errors.New("invalid denomination")
	ErrEmptyDonor          = errors.New("empty donor name")
	ErrDonorNameTooLong    = errors.New("donor name too long (max 500 characters)")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidType         = errors.New("invalid donation type")
)

// denominations is the fixed set of receipt book face values.
var denominations = []int{100, 200, 500, 1000, 2000, 5000, 10000, 25000, 50000, 100000}

// Denominations returns the canonical receipt book denominations in ascending order.
func Denominations() []int {
	return append([]int(nil), denominations...)
}

// IsDenomination reports whether v is one of the canonical book denominations.
func IsDenomination(v int) bool {
	for _, d := range denominations {
		if d == v {
			return true
		}
	}
	return false
}

func (t DonationType) Validate() error {
	if t != Credit {
		return ErrInvalidType
	}
	return nil
}

func (d Donation) Validate() error {
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(d.DonorName) == "" {
		return ErrEmptyDonor
	}
	if len(d.DonorName) > 500 {
		return ErrDonorNameTooLong
	}
	// Amounts are kept to the paisa; anything that rounds to zero is not a donation.
	if !d.Amount.Round(2).IsPositive() {
		return ErrInvalidAmount
	}
	if err := d.Type.Validate(); err != nil {
		return err
	}
	if !IsDenomination(d.Denomination) {
		return ErrInvalidDenomination
	}
	return nil
}

// DigitsOnly strips every non-digit character, as phone numbers are stored.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Today returns the canonical date of t in its own location.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}
