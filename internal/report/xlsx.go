package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Register"

// WriteXLSX writes r as a single-sheet workbook. Amounts are numeric cells so
// the sheet can be re-imported or summed by hand.
func WriteXLSX(w io.Writer, r Register) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	boldMoney, err := f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	set := func(cell string, values ...any) error {
		vals := values
		return f.SetSheetRow(xlsxSheet, cell, &vals)
	}

	if err := set("A1", r.Title); err != nil {
		return err
	}
	if err := set("A2", r.Subtitle); err != nil {
		return err
	}
	if err := set("A3", r.GeneratedLine()); err != nil {
		return err
	}
	if err := set("A4", "Filter: "+r.Filter); err != nil {
		return err
	}

	const headerRow = 6
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := set(fmt.Sprintf("A%d", headerRow), header...); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("E%d", headerRow), bold); err != nil {
		return err
	}

	row := headerRow + 1
	for _, rr := range r.Rows {
		if err := set(fmt.Sprintf("A%d", row), rr.Date, rr.SlNo, rr.ReceiptNo, rr.DonorName, rr.Amount.InexactFloat64()); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}
	if row > headerRow+1 {
		if err := f.SetCellStyle(xlsxSheet, fmt.Sprintf("E%d", headerRow+1), fmt.Sprintf("E%d", row-1), money); err != nil {
			return err
		}
	}

	if err := set(fmt.Sprintf("D%d", row), "GRAND TOTAL", r.Total.InexactFloat64()); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), boldMoney); err != nil {
		return err
	}

	for col, width := range map[string]float64{"A": 12, "B": 8, "C": 12, "D": 45, "E": 14} {
		if err := f.SetColWidth(xlsxSheet, col, col, width); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write register workbook: %w", err)
	}
	return nil
}
