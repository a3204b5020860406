package importer

import (
	"strings"
	"unicode"

	"templeledger/internal/workbook"
)

// headerScanRows bounds how far down a sheet the header row is searched for.
const headerScanRows = 10

// minHeaderCells is the fewest non-empty cells a header row can have.
const minHeaderCells = 2

// HeaderState tells whether a header row was positively identified.
type HeaderState int

const (
	HeaderNotFound HeaderState = iota
	HeaderFound
)

func (s HeaderState) String() string {
	if s == HeaderFound {
		return "found"
	}
	return "not_found"
}

// Header is the resolved header of one sheet.
//
// When State is HeaderNotFound the first row stands in as the header and
// most lookups are expected to miss; callers must treat every column as
// optional either way.
type Header struct {
	State   HeaderState
	Row     int // 0-based index of the header row; data starts at Row+1
	Columns []string
}

// NormalizeHeader lower-cases s and drops everything that is not a letter or
// digit, so "Sl. No", "Sl No" and "SL-NO" all become "slno".
func NormalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveHeader picks the first of the leading rows that carries a header
// token and maps its normalised cells to column indices.
func ResolveHeader(rows [][]any) Header {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i := 0; i < limit; i++ {
		cols := normalizeRow(rows[i])
		if hasHeaderToken(cols) {
			return Header{State: HeaderFound, Row: i, Columns: cols}
		}
	}
	h := Header{State: HeaderNotFound, Row: 0}
	if len(rows) > 0 {
		h.Columns = normalizeRow(rows[0])
	}
	return h
}

func normalizeRow(row []any) []string {
	cols := make([]string, len(row))
	for i, c := range row {
		cols[i] = NormalizeHeader(workbook.CellText(c))
	}
	return cols
}

// hasHeaderToken reports whether cols look like a header row: at least two
// labelled cells, one of them carrying a header token. Single-cell rows are
// titles such as "Temple donor names" even when they mention a token.
func hasHeaderToken(cols []string) bool {
	labelled, tokened := 0, false
	for _, c := range cols {
		if c == "" {
			continue
		}
		labelled++
		for _, tok := range headerTokens {
			if strings.Contains(c, tok) {
				tokened = true
			}
		}
	}
	return tokened && labelled >= minHeaderCells
}

// ColumnIndex returns the first column whose normalised name contains fragment.
func (h Header) ColumnIndex(fragment string) (int, bool) {
	fragment = NormalizeHeader(fragment)
	if fragment == "" {
		return 0, false
	}
	for i, c := range h.Columns {
		if c != "" && strings.Contains(c, fragment) {
			return i, true
		}
	}
	return 0, false
}

func (h Header) exactIndex(name string) (int, bool) {
	name = NormalizeHeader(name)
	for i, c := range h.Columns {
		if c != "" && c == name {
			return i, true
		}
	}
	return 0, false
}

// Lookup resolves a canonical field by trying its synonyms in order.
func (h Header) Lookup(f Field) (int, bool) {
	for _, syn := range Synonyms[f] {
		var (
			idx int
			ok  bool
		)
		if syn.Exact {
			idx, ok = h.exactIndex(syn.Text)
		} else {
			idx, ok = h.ColumnIndex(syn.Text)
		}
		if ok {
			return idx, true
		}
	}
	return 0, false
}

// Mapping resolves every canonical field present in the header.
func (h Header) Mapping() map[Field]int {
	m := make(map[Field]int, len(Synonyms))
	for f := range Synonyms {
		if idx, ok := h.Lookup(f); ok {
			m[f] = idx
		}
	}
	return m
}
