// Command ledger-import imports a donation workbook into the ledger from the
// command line, or undoes a previous import batch.
//
//	ledger-import -file receipts.xlsx
//	ledger-import -spreadsheet 1AbC...xyz
//	ledger-import -undo 6f1c2a4e-...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"templeledger/internal/cli"
	"templeledger/internal/core"
	"templeledger/internal/importer"
	"templeledger/internal/locale"
	"templeledger/internal/log"
	"templeledger/internal/services"
	gsheet "templeledger/internal/sheets/google"
	"templeledger/internal/workbook"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup always runs.
func run(args []string) int {
	fs := flag.NewFlagSet("ledger-import", flag.ContinueOnError)
	file := fs.String("file", "", "path of an .xlsx workbook to import")
	spreadsheet := fs.String("spreadsheet", "", "Google spreadsheet ID to import")
	undo := fs.String("undo", "", "import batch to remove")
	timeout := fs.Duration("timeout", 5*time.Minute, "overall deadline")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if countSet(*file, *spreadsheet, *undo) != 1 {
		fmt.Fprintln(os.Stderr, "exactly one of -file, -spreadsheet or -undo is required")
		fs.Usage()
		return 2
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	svc := services.NewDonationService(res.Store, res.Publisher, logger, services.Options{
		TempleName:    cfg.TempleName,
		UndatedPolicy: cfg.UndatedPolicy,
	})

	if *undo != "" {
		n, totals, err := svc.UndoImport(ctx, *undo)
		if err != nil {
			return fail(ctx, logger, log.OpUndo, err)
		}
		fmt.Printf("Removed %d records from batch %s\n", n, *undo)
		printTotals(totals)
		return 0
	}

	wb, closeWB, err := openWorkbook(ctx, logger, *file, *spreadsheet)
	if err != nil {
		return fail(ctx, logger, log.OpImport, err)
	}
	defer closeWB()

	summary, totals, err := svc.Import(ctx, wb)
	printSummary(summary)
	if err != nil {
		return fail(ctx, logger, log.OpImport, err)
	}
	printTotals(totals)
	return 0
}

// openWorkbook reads a local .xlsx or fetches a Google spreadsheet with the
// service account named in the environment.
func openWorkbook(ctx context.Context, logger *log.Logger, file, spreadsheet string) (importer.WorkbookSource, func(), error) {
	if file != "" {
		wb, err := workbook.OpenExcel(file)
		if err != nil {
			return nil, nil, err
		}
		return wb, func() { _ = wb.Close() }, nil
	}
	client, err := gsheet.NewFromEnv(ctx, logger)
	if err != nil {
		return nil, nil, err
	}
	wb, err := client.OpenWorkbook(ctx, spreadsheet)
	if err != nil {
		return nil, nil, err
	}
	return wb, func() {}, nil
}

func countSet(vals ...string) int {
	n := 0
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func printSummary(s core.ImportSummary) {
	fmt.Println(s.Message())
	if s.Batch != "" {
		fmt.Printf("Batch: %s\n", s.Batch)
	}
	for _, sh := range s.Sheets {
		switch {
		case sh.SoftSkipped:
			fmt.Printf("  %-20s ignored (no denomination)\n", sh.Name)
		default:
			fmt.Printf("  %-20s imported %d, skipped %d\n", sh.Name, sh.Imported, sh.Skipped)
		}
	}
	for _, r := range s.Reasons() {
		fmt.Printf("  - %s\n", r)
	}
}

func printTotals(t core.Totals) {
	fmt.Printf("Total fund: %s\n", locale.FormatCurrencyDisplay(t.TotalFund))
	fmt.Printf("Today (%s): %s\n", locale.FormatDateDisplay(t.Today), locale.FormatCurrencyDisplay(t.TodayTotal))
}

func fail(ctx context.Context, logger *log.Logger, op string, err error) int {
	log.LogError(ctx, logger, "ledger-import failed", err, op, nil)
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}
