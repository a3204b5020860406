package google

import (
	"fmt"
	"strings"

	ports "templeledger/internal/sheets"
	"templeledger/internal/workbook"
)

// quoteSheet renders a sheet title as an A1 range prefix. Titles are always
// quoted so names like "Rs 500" or "1,000" are not read as cell references.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func journalRange(sheet string) string {
	return fmt.Sprintf("%s!A:%c", quoteSheet(sheet), 'A'+len(ports.JournalHeader)-1)
}

// toWorkbook pairs titles with their value ranges. A missing range yields an
// empty sheet so tab order is preserved.
func toWorkbook(titles []string, values [][][]any) *workbook.Memory {
	wb := workbook.NewMemory()
	for i, title := range titles {
		var rows [][]any
		if i < len(values) {
			rows = make([][]any, len(values[i]))
			for r, row := range values[i] {
				cells := make([]any, len(row))
				for c, v := range row {
					cells[c] = normalizeCell(v)
				}
				rows[r] = cells
			}
		}
		wb.AddSheet(title, rows...)
	}
	return wb
}

// normalizeCell maps the JSON values the API returns onto workbook cell kinds.
func normalizeCell(v any) any {
	switch c := v.(type) {
	case string:
		if strings.TrimSpace(c) == "" {
			return nil
		}
		return c
	case float64, bool, nil:
		return c
	case int:
		return float64(c)
	case int64:
		return float64(c)
	}
	return fmt.Sprint(v)
}

func journalRows(entries []ports.JournalEntry) [][]any {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = e.Values()
	}
	return rows
}
