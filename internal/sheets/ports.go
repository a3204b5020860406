package sheets

import (
	"context"
	"strconv"
	"time"

	"templeledger/internal/core"
	"templeledger/internal/workbook"
)

// JournalHeader is the first row of the backup journal sheet.
var JournalHeader = []any{
	"Timestamp", "Event", "ID", "Date", "Donor", "Amount",
	"Type", "Denomination", "Sl No", "Receipt No", "Phone", "Batch", "Note",
}

// JournalEntry is one line of the append-only backup journal.
type JournalEntry struct {
	Timestamp time.Time
	Event     string
	Donation  core.Donation
	Note      string
}

// Values renders the entry in JournalHeader column order.
func (e JournalEntry) Values() []any {
	d := e.Donation
	return []any{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Event,
		strconv.FormatInt(d.ID, 10),
		d.Date,
		d.DonorName,
		d.Amount.StringFixed(2),
		string(d.Type),
		strconv.Itoa(d.Denomination),
		d.SlNo,
		d.ReceiptNo,
		d.Phone,
		d.ImportBatch,
		e.Note,
	}
}

// Ports for outbound adapters.
type (
	// WorkbookOpener fetches a whole remote spreadsheet as an importable workbook.
	WorkbookOpener interface {
		OpenWorkbook(ctx context.Context, spreadsheetID string) (*workbook.Memory, error)
	}

	// JournalWriter appends ledger changes to the backup journal.
	JournalWriter interface {
		AppendJournal(ctx context.Context, entries []JournalEntry) (rangeRef string, err error)
	}
)
