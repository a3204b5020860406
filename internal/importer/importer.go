// Package importer converts human-produced donation workbooks into ledger
// records: it finds each sheet's header row, maps loosely named columns to
// canonical fields, normalises every row and persists the survivors.
//
// Import is strictly additive. Importing the same workbook twice stores every
// row twice; each run is tagged with its own batch identifier so a mistaken
// run can be removed explicitly.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"templeledger/internal/core"
	"templeledger/internal/ledger"
	"templeledger/internal/locale"
	"templeledger/internal/log"
)

// ErrWorkbookRead marks a workbook that could not be read. Records persisted
// from earlier sheets of the same run stay persisted.
var ErrWorkbookRead = errors.New("workbook read failed")

// Options configure an Importer.
type Options struct {
	UndatedDate     string
	PlaceholderName string
}

type Importer struct {
	store    ledger.Writer
	logger   *log.Logger
	opts     Options
	newBatch func() string
}

func New(store ledger.Writer, logger *log.Logger, opts Options) *Importer {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.UndatedDate == "" {
		opts.UndatedDate = locale.SentinelDate
	}
	if opts.PlaceholderName == "" {
		opts.PlaceholderName = core.UnknownDonor
	}
	return &Importer{
		store:    store,
		logger:   logger.WithComponent(log.ComponentImport),
		opts:     opts,
		newBatch: uuid.NewString,
	}
}

// WorkbookSource is what Import reads from; workbook.Workbook satisfies it.
type WorkbookSource interface {
	SheetNames() []string
	Rows(sheet string) ([][]any, error)
}

// Import walks every sheet in workbook order and inserts each extracted
// donation individually. Sheets are persisted as they are extracted, so a
// failure part way through returns the summary of what was stored so far
// together with the error.
func (im *Importer) Import(ctx context.Context, wb WorkbookSource) (core.ImportSummary, error) {
	summary := core.ImportSummary{Batch: im.newBatch()}

	for _, name := range wb.SheetNames() {
		rows, err := wb.Rows(name)
		if err != nil {
			im.logger.ErrorContext(ctx, "Workbook sheet unreadable, aborting import",
				log.FieldSheet, name, log.FieldBatch, summary.Batch,
				log.FieldImported, summary.Imported, log.FieldError, err)
			return summary, fmt.Errorf("read sheet %q: %w: %w", name, ErrWorkbookRead, err)
		}

		fallback := SheetDenomination(name)
		ex := ExtractSheet(name, rows, ExtractOptions{
			FallbackDenomination: fallback,
			UndatedDate:          im.opts.UndatedDate,
			PlaceholderName:      im.opts.PlaceholderName,
		})

		sheet := core.SheetSummary{
			Name:                 name,
			HeaderFound:          ex.Header.State == HeaderFound,
			HeaderRow:            ex.Header.Row + 1,
			FallbackDenomination: fallback,
			SoftSkipped:          ex.SoftSkipped,
			Skipped:              len(ex.Skips),
		}

		for _, d := range ex.Candidates {
			d.ImportBatch = summary.Batch
			if _, err := im.store.Insert(ctx, d); err != nil {
				summary.Sheets = append(summary.Sheets, sheet)
				summary.Skips = append(summary.Skips, ex.Skips...)
				summary.Skipped += len(ex.Skips)
				im.logger.ErrorContext(ctx, "Insert failed, aborting import",
					log.FieldSheet, name, log.FieldBatch, summary.Batch,
					log.FieldImported, summary.Imported, log.FieldError, err)
				return summary, fmt.Errorf("insert donation from sheet %q: %w", name, err)
			}
			sheet.Imported++
			summary.Imported++
		}

		for _, sk := range ex.Skips {
			im.logger.DebugContext(ctx, "Row skipped",
				log.FieldSheet, sk.Sheet, log.FieldRow, sk.Row, "reason", sk.Reason)
		}
		summary.Sheets = append(summary.Sheets, sheet)
		summary.Skips = append(summary.Skips, ex.Skips...)
		summary.Skipped += len(ex.Skips)

		im.logger.InfoContext(ctx, "Sheet processed",
			log.FieldSheet, name,
			"header", ex.Header.State.String(),
			"fallback_denomination", fallback,
			"soft_skipped", ex.SoftSkipped,
			log.FieldImported, sheet.Imported,
			log.FieldSkipped, sheet.Skipped)
	}

	im.logger.InfoContext(ctx, "Import completed",
		log.FieldBatch, summary.Batch,
		"sheets", len(summary.Sheets),
		log.FieldImported, summary.Imported,
		log.FieldSkipped, summary.Skipped)
	return summary, nil
}
