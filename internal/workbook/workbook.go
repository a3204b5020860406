// Package workbook defines the input contract of the importer: an ordered
// collection of named sheets, each an ordered list of rows of raw cell values.
//
// Cell values are string, float64 (or another numeric kind), bool, or nil.
// Header detection is not this package's concern.
package workbook

import (
	"fmt"
	"strconv"
	"strings"
)

// Workbook is an ordered collection of named sheets.
type Workbook interface {
	// SheetNames returns sheet names in workbook order.
	SheetNames() []string
	// Rows returns the raw rows of the named sheet in sheet order.
	Rows(sheet string) ([][]any, error)
}

// Memory is a Workbook held entirely in memory. It backs test fixtures and
// sources that fetch every sheet up front (Google Sheets).
type Memory struct {
	names  []string
	sheets map[string][][]any
}

func NewMemory() *Memory {
	return &Memory{sheets: map[string][][]any{}}
}

// AddSheet appends a sheet. Adding an existing name replaces its rows in place.
func (m *Memory) AddSheet(name string, rows ...[]any) *Memory {
	if _, ok := m.sheets[name]; !ok {
		m.names = append(m.names, name)
	}
	m.sheets[name] = rows
	return m
}

func (m *Memory) SheetNames() []string {
	return append([]string(nil), m.names...)
}

func (m *Memory) Rows(sheet string) ([][]any, error) {
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	return rows, nil
}

// Row is a convenience for building fixture rows.
func Row(cells ...any) []any {
	return cells
}

// CellText renders a raw cell as trimmed text. Whole numbers lose their
// trailing ".0" so a numeric serial number 12 reads as "12".
func CellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case bool:
		return strconv.FormatBool(c)
	case fmt.Stringer:
		return strings.TrimSpace(c.String())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Cell returns row[idx], or nil when idx is out of range or negative.
func Cell(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// IsBlank reports whether every cell of the row renders as empty text.
func IsBlank(row []any) bool {
	for _, c := range row {
		if CellText(c) != "" {
			return false
		}
	}
	return true
}
