package core

import "fmt"

// SkippedRow records why a sheet row produced no donation.
type SkippedRow struct {
	Sheet  string
	Row    int // 1-based, as spreadsheet programs number rows
	Reason string
}

// SheetSummary is the per-sheet outcome of an import run.
type SheetSummary struct {
	Name                 string
	HeaderFound          bool
	HeaderRow            int // 1-based
	FallbackDenomination int // 0 when the sheet name is not a denomination
	SoftSkipped          bool
	Imported             int
	Skipped              int
}

// ImportSummary is returned to the caller after a workbook import. It is never persisted.
type ImportSummary struct {
	Batch    string
	Imported int
	Skipped  int
	Sheets   []SheetSummary
	Skips    []SkippedRow
}

// Reasons returns the human readable skip reasons, one per skipped row.
func (s ImportSummary) Reasons() []string {
	out := make([]string, 0, len(s.Skips))
	for _, sk := range s.Skips {
		out = append(out, fmt.Sprintf("%s row %d: %s", sk.Sheet, sk.Row, sk.Reason))
	}
	return out
}

// Message is the user-visible outcome line of a completed import.
func (s ImportSummary) Message() string {
	return fmt.Sprintf("%d imported, %d skipped across %d sheets", s.Imported, s.Skipped, len(s.Sheets))
}
