// Package ledger defines the storage collaborator the donation core depends on.
// Implementations live in ledger/memory and storage (SQLite); the application
// root owns their open/close lifecycle and injects them.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"templeledger/internal/core"
)

// ErrNotFound is returned by Get, Update and Delete for unknown ids.
var ErrNotFound = errors.New("donation not found")

// StorageError is the distinct error kind for failed storage operations.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Wrap returns err as a StorageError for op, leaving nil and ErrNotFound alone.
func Wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Order selects the ordering of List results.
type Order int

const (
	// NewestFirst orders by insertion, most recent first.
	NewestFirst Order = iota
	// ByDate orders by canonical date ascending, ties in insertion order.
	ByDate
)

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	From         string // inclusive canonical date
	To           string // inclusive canonical date
	Denomination int
	Batch        string
	Order        Order
	Limit        int
}

// Matches reports whether d satisfies every constraint of f except Limit.
func (f Filter) Matches(d core.Donation) bool {
	if f.From != "" && d.Date < f.From {
		return false
	}
	if f.To != "" && d.Date > f.To {
		return false
	}
	if f.Denomination != 0 && d.Denomination != f.Denomination {
		return false
	}
	if f.Batch != "" && d.ImportBatch != f.Batch {
		return false
	}
	return true
}

// Patch carries the fields of an edit; nil pointers leave fields unchanged.
type Patch struct {
	Date         *string
	DonorName    *string
	Amount       *decimal.Decimal
	Denomination *int
	SlNo         *string
	ReceiptNo    *string
	Phone        *string
}

// Apply returns d with the patch applied. Phone is reduced to digits.
func (p Patch) Apply(d core.Donation) core.Donation {
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.DonorName != nil {
		d.DonorName = *p.DonorName
	}
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	if p.Denomination != nil {
		d.Denomination = *p.Denomination
	}
	if p.SlNo != nil {
		d.SlNo = *p.SlNo
	}
	if p.ReceiptNo != nil {
		d.ReceiptNo = *p.ReceiptNo
	}
	if p.Phone != nil {
		d.Phone = core.DigitsOnly(*p.Phone)
	}
	return d
}

// Ports for the storage collaborator.
type (
	Writer interface {
		// Insert stores d and returns the id assigned to it.
		Insert(ctx context.Context, d core.Donation) (int64, error)
	}

	Reader interface {
		Get(ctx context.Context, id int64) (core.Donation, error)
		List(ctx context.Context, f Filter) ([]core.Donation, error)
	}

	Editor interface {
		// Update replaces the mutable fields of the record with d.ID.
		Update(ctx context.Context, d core.Donation) error
		Delete(ctx context.Context, id int64) error
		// DeleteBatch removes every record inserted by one import run.
		DeleteBatch(ctx context.Context, batch string) (int, error)
	}

	// Aggregator answers the derived-total queries. Both sums are computed
	// from stored rows on every call.
	Aggregator interface {
		SumCredit(ctx context.Context) (decimal.Decimal, error)
		SumOnDate(ctx context.Context, date string) (decimal.Decimal, error)
	}

	Store interface {
		Writer
		Reader
		Editor
		Aggregator
		Close() error
	}
)
