package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"templeledger/internal/ledger"
	"templeledger/internal/storage"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	env := map[string]string{
		"DATA_BACKEND":          "sqlite",
		"SQLITE_DB_PATH":        dbPath,
		"LOG_LEVEL":             "error",
		"PORT":                  "8081",
		"MAX_UPLOAD_MB":         "20",
		"TEMPLE_NAME":           "Test Temple",
		"UNDATED_POLICY":        "sentinel",
		"AMQP_URL":              "",
		"GOOGLE_SPREADSHEET_ID": "",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
	return dbPath
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "500"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	rows := [][]any{
		{"Sl No", "Receipt No", "Name", "Amount", "Date"},
		{1, "R1", "Alice", 500, "12.1.2026"},
		{2, "R2", "Bob", "", "13.1.2026"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("500", cell, &row); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
	}
	path := filepath.Join(t.TempDir(), "receipts.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func openRepo(t *testing.T, dbPath string) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	return repo
}

func TestRunRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"none", nil},
		{"two sources", []string{"-file", "a.xlsx", "-spreadsheet", "abc"}},
		{"unknown flag", []string{"-sheet", "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := run(tt.args); code != 2 {
				t.Errorf("run(%v) = %d, want 2", tt.args, code)
			}
		})
	}
}

func TestRunImportThenUndo(t *testing.T) {
	dbPath := setupEnv(t)
	path := writeWorkbook(t)

	if code := run([]string{"-file", path}); code != 0 {
		t.Fatalf("import exit code = %d", code)
	}

	// run has returned, so its store is closed and the file can be reopened.
	repo := openRepo(t, dbPath)
	ds, err := repo.List(context.Background(), ledger.Filter{Order: ledger.ByDate})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ds) != 2 || ds[0].ImportBatch == "" {
		t.Fatalf("stored = %+v", ds)
	}
	fund, err := repo.SumCredit(context.Background())
	if err != nil || fund.StringFixed(2) != "1000.00" {
		t.Fatalf("SumCredit = %s, %v", fund, err)
	}
	repo.Close()

	if code := run([]string{"-undo", ds[0].ImportBatch}); code != 0 {
		t.Fatalf("undo exit code = %d", code)
	}
	repo = openRepo(t, dbPath)
	defer repo.Close()
	if fund, err := repo.SumCredit(context.Background()); err != nil || !fund.IsZero() {
		t.Errorf("SumCredit after undo = %s, %v", fund, err)
	}
}

func TestRunFailuresReturnExitCode(t *testing.T) {
	setupEnv(t)

	if code := run([]string{"-undo", "no-such-batch"}); code != 1 {
		t.Errorf("unknown batch exit code = %d, want 1", code)
	}
	missing := filepath.Join(t.TempDir(), "missing.xlsx")
	if code := run([]string{"-file", missing}); code != 1 {
		t.Errorf("missing file exit code = %d, want 1", code)
	}
}
