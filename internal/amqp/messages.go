package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"templeledger/internal/core"
)

// EventKind names a ledger mutation.
type EventKind string

const (
	EventDonationCreated EventKind = "donation.created"
	EventDonationUpdated EventKind = "donation.updated"
	EventDonationDeleted EventKind = "donation.deleted"
	EventImportCompleted EventKind = "import.completed"
	EventImportUndone    EventKind = "import.undone"
)

// DonationPayload is the wire form of a donation. It travels whole so the
// consumer can journal deletions without reading the ledger.
type DonationPayload struct {
	ID           int64           `json:"id"`
	Date         string          `json:"date"`
	DonorName    string          `json:"donor_name"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	Denomination int             `json:"denomination"`
	SlNo         string          `json:"sl_no,omitempty"`
	ReceiptNo    string          `json:"receipt_no,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	ImportBatch  string          `json:"import_batch,omitempty"`
}

func payloadFrom(d core.Donation) *DonationPayload {
	return &DonationPayload{
		ID:           d.ID,
		Date:         d.Date,
		DonorName:    d.DonorName,
		Amount:       d.Amount,
		Type:         string(d.Type),
		Denomination: d.Denomination,
		SlNo:         d.SlNo,
		ReceiptNo:    d.ReceiptNo,
		Phone:        d.Phone,
		ImportBatch:  d.ImportBatch,
	}
}

// Donation converts the payload back into the domain type.
func (p *DonationPayload) Donation() core.Donation {
	return core.Donation{
		ID:           p.ID,
		Date:         p.Date,
		DonorName:    p.DonorName,
		Amount:       p.Amount,
		Type:         core.DonationType(p.Type),
		Denomination: p.Denomination,
		SlNo:         p.SlNo,
		ReceiptNo:    p.ReceiptNo,
		Phone:        p.Phone,
		ImportBatch:  p.ImportBatch,
	}
}

// LedgerEvent is published after every committed ledger mutation.
type LedgerEvent struct {
	Kind      EventKind        `json:"kind"`
	Donation  *DonationPayload `json:"donation,omitempty"`
	Batch     string           `json:"batch,omitempty"`
	Count     int              `json:"count,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewDonationEvent describes a single-record mutation.
func NewDonationEvent(kind EventKind, d core.Donation) *LedgerEvent {
	return &LedgerEvent{Kind: kind, Donation: payloadFrom(d), Timestamp: time.Now()}
}

// NewBatchEvent describes an import run or its removal.
func NewBatchEvent(kind EventKind, batch string, count int) *LedgerEvent {
	return &LedgerEvent{Kind: kind, Batch: batch, Count: count, Timestamp: time.Now()}
}

var errMalformedEvent = errors.New("malformed ledger event")

// Validate checks that the event carries what its kind needs.
func (e *LedgerEvent) Validate() error {
	switch e.Kind {
	case EventDonationCreated, EventDonationUpdated, EventDonationDeleted:
		if e.Donation == nil || e.Donation.ID == 0 {
			return fmt.Errorf("%w: %s without donation", errMalformedEvent, e.Kind)
		}
	case EventImportCompleted, EventImportUndone:
		if e.Batch == "" {
			return fmt.Errorf("%w: %s without batch", errMalformedEvent, e.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", errMalformedEvent, e.Kind)
	}
	return nil
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
