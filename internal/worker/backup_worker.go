package worker

import (
	"context"
	"fmt"
	"time"

	"templeledger/internal/amqp"
	"templeledger/internal/core"
	"templeledger/internal/ledger"
	"templeledger/internal/log"
	"templeledger/internal/sheets"
)

// DefaultChunkSize bounds the rows sent in one journal append.
const DefaultChunkSize = 500

// BackupWorker mirrors ledger events into the append-only backup journal.
type BackupWorker struct {
	reader    ledger.Reader
	journal   sheets.JournalWriter
	logger    *log.Logger
	chunkSize int
	now       func() time.Time
}

func NewBackupWorker(reader ledger.Reader, journal sheets.JournalWriter, logger *log.Logger, chunkSize int) *BackupWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &BackupWorker{
		reader:    reader,
		journal:   journal,
		logger:    logger.WithComponent(log.ComponentWorker),
		chunkSize: chunkSize,
		now:       time.Now,
	}
}

// HandleEvent is an amqp.EventHandler. A returned error requeues the event.
func (w *BackupWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if err := ev.Validate(); err != nil {
		// Redelivery cannot fix a malformed event.
		w.logger.WarnContext(ctx, "Dropping invalid ledger event", "error", err)
		return nil
	}

	stamp := ev.Timestamp
	if stamp.IsZero() {
		stamp = w.now()
	}

	switch ev.Kind {
	case amqp.EventDonationCreated, amqp.EventDonationUpdated, amqp.EventDonationDeleted:
		d := ev.Donation.Donation()
		entry := sheets.JournalEntry{Timestamp: stamp, Event: string(ev.Kind), Donation: d}
		if _, err := w.journal.AppendJournal(ctx, []sheets.JournalEntry{entry}); err != nil {
			return fmt.Errorf("journal %s %d: %w", ev.Kind, d.ID, err)
		}
		w.logger.InfoContext(ctx, "Journaled donation event",
			"event", ev.Kind,
			log.FieldDonationID, d.ID)
		return nil

	case amqp.EventImportCompleted:
		return w.journalBatch(ctx, ev.Batch, stamp)

	case amqp.EventImportUndone:
		entry := sheets.JournalEntry{
			Timestamp: stamp,
			Event:     string(ev.Kind),
			Donation:  core.Donation{ImportBatch: ev.Batch},
			Note:      fmt.Sprintf("removed %d records", ev.Count),
		}
		if _, err := w.journal.AppendJournal(ctx, []sheets.JournalEntry{entry}); err != nil {
			return fmt.Errorf("journal undo of batch %s: %w", ev.Batch, err)
		}
		w.logger.InfoContext(ctx, "Journaled import undo", log.FieldBatch, ev.Batch, "count", ev.Count)
		return nil
	}

	return nil
}

// journalBatch copies every donation of an import batch into the journal.
// A batch already undone by the time the event arrives journals nothing.
func (w *BackupWorker) journalBatch(ctx context.Context, batch string, stamp time.Time) error {
	rows, err := w.reader.List(ctx, ledger.Filter{Batch: batch, Order: ledger.ByDate})
	if err != nil {
		return fmt.Errorf("list batch %s: %w", batch, err)
	}
	if len(rows) == 0 {
		w.logger.InfoContext(ctx, "Import batch has no records, nothing to journal", log.FieldBatch, batch)
		return nil
	}

	entries := make([]sheets.JournalEntry, len(rows))
	for i, d := range rows {
		entries[i] = sheets.JournalEntry{Timestamp: stamp, Event: string(amqp.EventImportCompleted), Donation: d}
	}
	for start := 0; start < len(entries); start += w.chunkSize {
		end := min(start+w.chunkSize, len(entries))
		if _, err := w.journal.AppendJournal(ctx, entries[start:end]); err != nil {
			return fmt.Errorf("journal batch %s rows %d-%d: %w", batch, start+1, end, err)
		}
	}
	w.logger.InfoContext(ctx, "Journaled import batch",
		log.FieldBatch, batch,
		log.FieldImported, len(entries))
	return nil
}
