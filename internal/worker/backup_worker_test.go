package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"templeledger/internal/amqp"
	"templeledger/internal/core"
	"templeledger/internal/ledger/memory"
	sheetsmem "templeledger/internal/sheets/memory"

	"github.com/shopspring/decimal"
)

func donation(date, name string, amount int64, batch string) core.Donation {
	return core.Donation{
		Date:         date,
		DonorName:    name,
		Amount:       decimal.NewFromInt(amount),
		Type:         core.Credit,
		Denomination: 500,
		ReceiptNo:    core.PendingReceipt,
		ImportBatch:  batch,
	}
}

func TestHandleDonationEvents(t *testing.T) {
	store := memory.NewStore()
	journal := sheetsmem.New()
	w := NewBackupWorker(store, journal, nil, 0)

	d := donation("2026-02-01", "Ravi", 500, "")
	d.ID = 42
	kinds := []amqp.EventKind{amqp.EventDonationCreated, amqp.EventDonationUpdated, amqp.EventDonationDeleted}
	for _, k := range kinds {
		if err := w.HandleEvent(context.Background(), amqp.NewDonationEvent(k, d)); err != nil {
			t.Fatalf("%s: %v", k, err)
		}
	}

	got := journal.Journal()
	if len(got) != 3 {
		t.Fatalf("journal len = %d, want 3", len(got))
	}
	for i, k := range kinds {
		if got[i].Event != string(k) || got[i].Donation.ID != 42 {
			t.Errorf("entry %d = %s/%d", i, got[i].Event, got[i].Donation.ID)
		}
	}
}

func TestHandleImportCompletedChunks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	journal := sheetsmem.New()
	w := NewBackupWorker(store, journal, nil, 2)

	for i, date := range []string{"2026-01-03", "2026-01-01", "2026-01-02"} {
		if _, err := store.Insert(ctx, donation(date, "Donor", int64(100*(i+1)), "batch-1")); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := store.Insert(ctx, donation("2026-01-01", "Walk-in", 100, "")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ev := amqp.NewBatchEvent(amqp.EventImportCompleted, "batch-1", 3)
	if err := w.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got := journal.Journal()
	if len(got) != 3 {
		t.Fatalf("journal len = %d, want 3", len(got))
	}
	if got[0].Donation.Date != "2026-01-01" || got[2].Donation.Date != "2026-01-03" {
		t.Errorf("entries not in date order: %s, %s", got[0].Donation.Date, got[2].Donation.Date)
	}
	for _, e := range got {
		if e.Donation.ImportBatch != "batch-1" {
			t.Errorf("entry from batch %q leaked into journal", e.Donation.ImportBatch)
		}
	}
}

func TestHandleImportCompletedAfterUndo(t *testing.T) {
	journal := sheetsmem.New()
	w := NewBackupWorker(memory.NewStore(), journal, nil, 0)

	ev := amqp.NewBatchEvent(amqp.EventImportCompleted, "gone", 5)
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if n := len(journal.Journal()); n != 0 {
		t.Errorf("journal len = %d, want 0", n)
	}
}

func TestHandleImportUndone(t *testing.T) {
	journal := sheetsmem.New()
	w := NewBackupWorker(memory.NewStore(), journal, nil, 0)

	ev := amqp.NewBatchEvent(amqp.EventImportUndone, "batch-9", 12)
	ev.Timestamp = time.Time{}
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got := journal.Journal()
	if len(got) != 1 {
		t.Fatalf("journal len = %d, want 1", len(got))
	}
	if got[0].Note != "removed 12 records" || got[0].Donation.ImportBatch != "batch-9" {
		t.Errorf("unexpected entry: %+v", got[0])
	}
	if got[0].Timestamp.IsZero() {
		t.Error("zero timestamp should be replaced")
	}
}

func TestHandleEventErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("sheets unavailable")

	t.Run("journal failure requeues", func(t *testing.T) {
		journal := sheetsmem.New()
		journal.FailAppends(boom)
		w := NewBackupWorker(memory.NewStore(), journal, nil, 0)
		d := donation("2026-02-01", "Ravi", 500, "")
		d.ID = 1
		err := w.HandleEvent(ctx, amqp.NewDonationEvent(amqp.EventDonationCreated, d))
		if !errors.Is(err, boom) {
			t.Errorf("err = %v, want %v", err, boom)
		}
	})

	t.Run("storage failure requeues", func(t *testing.T) {
		store := memory.NewStore()
		store.FailOn("list", boom)
		w := NewBackupWorker(store, sheetsmem.New(), nil, 0)
		err := w.HandleEvent(ctx, amqp.NewBatchEvent(amqp.EventImportCompleted, "b", 1))
		if !errors.Is(err, boom) {
			t.Errorf("err = %v, want %v", err, boom)
		}
	})

	t.Run("malformed event is dropped", func(t *testing.T) {
		journal := sheetsmem.New()
		w := NewBackupWorker(memory.NewStore(), journal, nil, 0)
		if err := w.HandleEvent(ctx, &amqp.LedgerEvent{Kind: amqp.EventDonationCreated}); err != nil {
			t.Errorf("err = %v, want nil", err)
		}
		if n := len(journal.Journal()); n != 0 {
			t.Errorf("journal len = %d, want 0", n)
		}
	})
}
