package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"templeledger/internal/amqp"
	"templeledger/internal/core"
	"templeledger/internal/importer"
	"templeledger/internal/ledger"
	"templeledger/internal/locale"
	"templeledger/internal/log"
	"templeledger/internal/report"
)

// Undated policies for imported rows whose date cannot be read.
const (
	UndatedSentinel = "sentinel"
	UndatedToday    = "today"
)

// DefaultDenomination is preselected for manual entries.
const DefaultDenomination = 100

// EventPublisher receives ledger events after each committed mutation.
// *amqp.Client implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

type Options struct {
	TempleName    string
	UndatedPolicy string
	Now           func() time.Time
}

// DonationService is the single entry point for ledger mutations. Every
// mutation is followed by a full recomputation of the totals from storage.
type DonationService struct {
	store     ledger.Store
	publisher EventPublisher
	logger    *log.Logger
	opts      Options
}

func NewDonationService(store ledger.Store, publisher EventPublisher, logger *log.Logger, opts Options) *DonationService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.UndatedPolicy == "" {
		opts.UndatedPolicy = UndatedSentinel
	}
	return &DonationService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		opts:      opts,
	}
}

// DonationInput is a manually entered donation.
type DonationInput struct {
	Date         string // canonical or day-first; empty means today
	DonorName    string
	Amount       decimal.Decimal
	Denomination int
	SlNo         string
	ReceiptNo    string
	Phone        string
}

func (s *DonationService) today() string {
	return core.Today(s.opts.Now())
}

// normalizeDate accepts canonical and day-first dates.
func normalizeDate(raw string) (string, error) {
	d, ok := locale.ParseDate(strings.TrimSpace(raw))
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidDate, raw)
	}
	return d, nil
}

// Add records a manual donation.
func (s *DonationService) Add(ctx context.Context, in DonationInput) (core.Donation, core.Totals, error) {
	d := core.Donation{
		Date:         s.today(),
		DonorName:    strings.Join(strings.Fields(in.DonorName), " "),
		Amount:       in.Amount,
		Type:         core.Credit,
		Denomination: in.Denomination,
		SlNo:         strings.TrimSpace(in.SlNo),
		ReceiptNo:    strings.TrimSpace(in.ReceiptNo),
		Phone:        core.DigitsOnly(in.Phone),
	}
	if strings.TrimSpace(in.Date) != "" {
		date, err := normalizeDate(in.Date)
		if err != nil {
			return core.Donation{}, core.Totals{}, err
		}
		d.Date = date
	}
	if d.DonorName == "" {
		d.DonorName = core.UnknownDonor
	}
	if d.Denomination == 0 {
		d.Denomination = DefaultDenomination
	}
	if d.ReceiptNo == "" {
		d.ReceiptNo = core.PendingReceipt
	}
	if err := d.Validate(); err != nil {
		return core.Donation{}, core.Totals{}, err
	}

	id, err := s.store.Insert(ctx, d)
	if err != nil {
		return core.Donation{}, core.Totals{}, fmt.Errorf("add donation: %w", err)
	}
	d.ID = id

	s.logger.InfoContext(ctx, "Donation added",
		log.NewFields().WithDonation(id, d.DonorName, d.Amount.String(), d.Denomination, d.Date).ToSlice()...)
	s.publish(ctx, amqp.NewDonationEvent(amqp.EventDonationCreated, d))

	totals, err := s.Totals(ctx)
	return d, totals, err
}

// Edit applies patch to the donation with id.
func (s *DonationService) Edit(ctx context.Context, id int64, patch ledger.Patch) (core.Donation, core.Totals, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Donation{}, core.Totals{}, fmt.Errorf("load donation %d: %w", id, err)
	}
	if patch.Date != nil {
		date, err := normalizeDate(*patch.Date)
		if err != nil {
			return core.Donation{}, core.Totals{}, err
		}
		patch.Date = &date
	}
	if patch.DonorName != nil {
		name := strings.Join(strings.Fields(*patch.DonorName), " ")
		patch.DonorName = &name
	}
	if patch.ReceiptNo != nil && strings.TrimSpace(*patch.ReceiptNo) == "" {
		pending := core.PendingReceipt
		patch.ReceiptNo = &pending
	}

	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return core.Donation{}, core.Totals{}, err
	}
	if err := s.store.Update(ctx, updated); err != nil {
		return core.Donation{}, core.Totals{}, fmt.Errorf("update donation %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Donation updated",
		log.NewFields().WithDonation(id, updated.DonorName, updated.Amount.String(), updated.Denomination, updated.Date).ToSlice()...)
	s.publish(ctx, amqp.NewDonationEvent(amqp.EventDonationUpdated, updated))

	totals, err := s.Totals(ctx)
	return updated, totals, err
}

// Delete removes one donation. Callers are expected to have confirmed it.
func (s *DonationService) Delete(ctx context.Context, id int64) (core.Totals, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Totals{}, fmt.Errorf("load donation %d: %w", id, err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return core.Totals{}, fmt.Errorf("delete donation %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Donation deleted", log.FieldDonationID, id)
	s.publish(ctx, amqp.NewDonationEvent(amqp.EventDonationDeleted, current))

	return s.Totals(ctx)
}

func (s *DonationService) undatedDate() string {
	if s.opts.UndatedPolicy == UndatedToday {
		return s.today()
	}
	return locale.SentinelDate
}

// Import runs the workbook importer and refreshes totals whether or not it
// failed part way: rows stored before a failure stay stored.
func (s *DonationService) Import(ctx context.Context, wb importer.WorkbookSource) (core.ImportSummary, core.Totals, error) {
	im := importer.New(s.store, s.logger, importer.Options{UndatedDate: s.undatedDate()})
	summary, importErr := im.Import(ctx, wb)

	if summary.Imported > 0 {
		s.publish(ctx, amqp.NewBatchEvent(amqp.EventImportCompleted, summary.Batch, summary.Imported))
	}

	totals, err := s.Totals(ctx)
	if importErr != nil {
		return summary, totals, importErr
	}
	return summary, totals, err
}

// UndoImport deletes every donation inserted by the import run batch.
func (s *DonationService) UndoImport(ctx context.Context, batch string) (int, core.Totals, error) {
	batch = strings.TrimSpace(batch)
	if batch == "" {
		return 0, core.Totals{}, errors.New("import batch is required")
	}
	n, err := s.store.DeleteBatch(ctx, batch)
	if err != nil {
		return 0, core.Totals{}, fmt.Errorf("undo import %s: %w", batch, err)
	}
	if n == 0 {
		return 0, core.Totals{}, fmt.Errorf("import batch %s: %w", batch, ledger.ErrNotFound)
	}

	s.logger.InfoContext(ctx, "Import undone", log.FieldBatch, batch, "removed", n)
	s.publish(ctx, amqp.NewBatchEvent(amqp.EventImportUndone, batch, n))

	totals, err := s.Totals(ctx)
	return n, totals, err
}

// Recent lists donations newest first; limit <= 0 lists all.
func (s *DonationService) Recent(ctx context.Context, limit int) ([]core.Donation, error) {
	ds, err := s.store.List(ctx, ledger.Filter{Order: ledger.NewestFirst, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return ds, nil
}

// Get returns one donation.
func (s *DonationService) Get(ctx context.Context, id int64) (core.Donation, error) {
	return s.store.Get(ctx, id)
}

// Totals recomputes the total fund and today's collection from storage.
func (s *DonationService) Totals(ctx context.Context) (core.Totals, error) {
	today := s.today()
	fund, err := s.store.SumCredit(ctx)
	if err != nil {
		return core.Totals{}, fmt.Errorf("total fund: %w", err)
	}
	todayTotal, err := s.store.SumOnDate(ctx, today)
	if err != nil {
		return core.Totals{}, fmt.Errorf("today total: %w", err)
	}
	return core.Totals{TotalFund: fund, TodayTotal: todayTotal, Today: today}, nil
}

// Register builds the receipt register for q.
func (s *DonationService) Register(ctx context.Context, q report.Query) (report.Register, error) {
	for _, p := range []*string{&q.From, &q.To} {
		if *p == "" {
			continue
		}
		d, err := normalizeDate(*p)
		if err != nil {
			return report.Register{}, err
		}
		*p = d
	}
	if q.Denomination != 0 && !core.IsDenomination(q.Denomination) {
		return report.Register{}, fmt.Errorf("%w: %d", core.ErrInvalidDenomination, q.Denomination)
	}

	ds, err := s.store.List(ctx, ledger.Filter{From: q.From, To: q.To, Denomination: q.Denomination, Order: ledger.ByDate})
	if err != nil {
		return report.Register{}, fmt.Errorf("list register rows: %w", err)
	}
	title := s.opts.TempleName
	if title == "" {
		title = "Temple"
	}
	s.logger.InfoContext(ctx, "Register built", "rows", len(ds), "filter", q.Describe())
	return report.NewRegister(title, ds, q, s.opts.Now()), nil
}

// publish never fails the caller: the ledger is the source of truth and the
// backup journal can be rebuilt from it.
func (s *DonationService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Event publisher not configured, skipping ledger event", "kind", ev.Kind)
		return
	}
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event", "kind", ev.Kind, log.FieldError, err)
	}
}
