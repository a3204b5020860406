// Package report builds the receipt register: the ordered donation rows, the
// description of the filter that selected them and the grand total. The
// register can be written as PDF or as an Excel workbook.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"templeledger/internal/core"
	"templeledger/internal/locale"
)

const (
	Subtitle = "Receipt Register Report"
	// placeholder for empty serial and receipt numbers
	emptyCell = "-"
)

// Query selects the donations of a register. Zero fields do not constrain.
type Query struct {
	From         string
	To           string
	Denomination int
}

// Describe renders the query as the "Filter:" line of the report.
func (q Query) Describe() string {
	var parts []string
	if q.Denomination != 0 {
		parts = append(parts, fmt.Sprintf("Rs %s book", locale.FormatCurrencyDisplay(decimal.NewFromInt(int64(q.Denomination)))))
	}
	switch {
	case q.From != "" && q.To != "":
		if q.From == q.To {
			parts = append(parts, "on "+locale.FormatDateDisplay(q.From))
		} else {
			parts = append(parts, locale.FormatDateDisplay(q.From)+" to "+locale.FormatDateDisplay(q.To))
		}
	case q.From != "":
		parts = append(parts, "from "+locale.FormatDateDisplay(q.From))
	case q.To != "":
		parts = append(parts, "up to "+locale.FormatDateDisplay(q.To))
	}
	if len(parts) == 0 {
		return "All records"
	}
	return strings.Join(parts, ", ")
}

// Row is one line of the register, already in display form.
type Row struct {
	Date      string
	SlNo      string
	ReceiptNo string
	DonorName string
	Amount    decimal.Decimal
}

type Register struct {
	Title       string
	Subtitle    string
	GeneratedOn time.Time
	Filter      string
	Rows        []Row
	Total       decimal.Decimal
}

// NewRegister orders donations by date, oldest first, and totals them.
func NewRegister(title string, donations []core.Donation, q Query, now time.Time) Register {
	sorted := append([]core.Donation(nil), donations...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	r := Register{
		Title:       title,
		Subtitle:    Subtitle,
		GeneratedOn: now,
		Filter:      q.Describe(),
		Rows:        make([]Row, 0, len(sorted)),
		Total:       decimal.Zero,
	}
	for _, d := range sorted {
		r.Rows = append(r.Rows, Row{
			Date:      locale.FormatDateDisplay(d.Date),
			SlNo:      orDash(d.SlNo),
			ReceiptNo: orDash(d.ReceiptNo),
			DonorName: d.DonorName,
			Amount:    d.Amount,
		})
		r.Total = r.Total.Add(d.Amount)
	}
	return r
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyCell
	}
	return s
}

// GeneratedLine is the "Generated on:" line, day first.
func (r Register) GeneratedLine() string {
	return "Generated on: " + r.GeneratedOn.Format("02/01/2006")
}

// FileName returns the download name for the given extension ("pdf", "xlsx").
func (r Register) FileName(ext string) string {
	return fmt.Sprintf("Temple_Report_%s.%s", r.GeneratedOn.Format("02-01-2006"), ext)
}

var columns = []string{"Date", "Sl No", "Rcpt No", "Name & Address", "Amount (Rs)"}
