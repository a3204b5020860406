package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Excel is a Workbook backed by an .xlsx file.
type Excel struct {
	f *excelize.File
}

var _ Workbook = (*Excel)(nil)

// OpenExcel opens an .xlsx file from disk.
func OpenExcel(path string) (*Excel, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Excel{f: f}, nil
}

// ReadExcel reads an .xlsx workbook from r, typically an uploaded file.
func ReadExcel(r io.Reader) (*Excel, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return &Excel{f: f}, nil
}

func (e *Excel) SheetNames() []string {
	return e.f.GetSheetList()
}

// Rows returns raw cell values as text. Number formats are not applied, so
// date cells come back as their serial number ("46034") and amounts without
// grouping; the locale parsers handle both.
func (e *Excel) Rows(sheet string) ([][]any, error) {
	rows, err := e.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out, nil
}

func (e *Excel) Close() error {
	return e.f.Close()
}
