package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"templeledger/internal/locale"
)

// widths of the register columns on portrait A4 (190mm usable)
var pdfColWidths = []float64{25, 15, 25, 100, 25}

// WritePDF renders r as a grid table with a grand total footer.
func WritePDF(w io.Writer, r Register) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(220, 80, 0)
	pdf.CellFormat(0, 9, tr(r.Title), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, r.Subtitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, r.GeneratedLine(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Filter: "+r.Filter), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(220, 80, 0)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(200, 200, 200)
		for i, h := range columns {
			pdf.CellFormat(pdfColWidths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	for _, row := range r.Rows {
		if pdf.GetY() > pageHeight-25 {
			pdf.AddPage()
			header()
		}
		name := fitText(pdf, tr(row.DonorName), pdfColWidths[3]-2)
		pdf.CellFormat(pdfColWidths[0], 7, row.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfColWidths[1], 7, tr(row.SlNo), "1", 0, "C", false, 0, "")
		pdf.CellFormat(pdfColWidths[2], 7, tr(row.ReceiptNo), "1", 0, "C", false, 0, "")
		pdf.CellFormat(pdfColWidths[3], 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfColWidths[4], 7, locale.FormatCurrencyDisplay(row.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	lead := pdfColWidths[0] + pdfColWidths[1] + pdfColWidths[2]
	pdf.CellFormat(lead, 8, "", "1", 0, "", true, 0, "")
	pdf.CellFormat(pdfColWidths[3], 8, "GRAND TOTAL", "1", 0, "R", true, 0, "")
	pdf.CellFormat(pdfColWidths[4], 8, "Rs "+locale.FormatCurrencyDisplay(r.Total), "1", 1, "R", true, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render register pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write register pdf: %w", err)
	}
	return nil
}

// fitText shortens s with an ellipsis until it fits width.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
