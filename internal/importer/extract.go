package importer

import (
	"fmt"
	"strings"

	"templeledger/internal/core"
	"templeledger/internal/locale"
	"templeledger/internal/workbook"
)

// ExtractOptions carry the per-sheet context the rows themselves may lack.
type ExtractOptions struct {
	// FallbackDenomination applies to rows without a usable denomination cell.
	FallbackDenomination int
	// UndatedDate replaces dates that cannot be parsed.
	UndatedDate string
	// PlaceholderName replaces missing donor names.
	PlaceholderName string
}

// Extraction is the storage-free result of walking one sheet.
type Extraction struct {
	Sheet      string
	Header     Header
	Candidates []core.Donation
	Skips      []core.SkippedRow
	// SoftSkipped is set when the sheet can never yield a denomination: no
	// denomination column and no usable sheet name. Such sheets are ignored
	// without counting their rows as skipped.
	SoftSkipped bool
}

// ExtractSheet turns the rows of one sheet into donation candidates, in row order.
func ExtractSheet(sheet string, rows [][]any, opts ExtractOptions) Extraction {
	if opts.UndatedDate == "" {
		opts.UndatedDate = locale.SentinelDate
	}
	if opts.PlaceholderName == "" {
		opts.PlaceholderName = core.UnknownDonor
	}

	header := ResolveHeader(rows)
	cols := header.Mapping()
	out := Extraction{Sheet: sheet, Header: header}

	if _, ok := cols[FieldDenomination]; !ok && opts.FallbackDenomination == 0 {
		out.SoftSkipped = true
		return out
	}

	for i := header.Row + 1; i < len(rows); i++ {
		row := rows[i]
		if workbook.IsBlank(row) {
			continue
		}
		d, reason := extractRow(row, cols, opts)
		if reason != "" {
			out.Skips = append(out.Skips, core.SkippedRow{Sheet: sheet, Row: i + 1, Reason: reason})
			continue
		}
		out.Candidates = append(out.Candidates, d)
	}
	return out
}

// extractRow returns a candidate, or a non-empty skip reason.
func extractRow(row []any, cols map[Field]int, opts ExtractOptions) (core.Donation, string) {
	get := func(f Field) any {
		idx, ok := cols[f]
		if !ok {
			return nil
		}
		return workbook.Cell(row, idx)
	}
	text := func(f Field) string {
		return workbook.CellText(get(f))
	}

	denomination := 0
	if v := locale.ParseDenomination(get(FieldDenomination)); core.IsDenomination(v) {
		denomination = v
	} else if core.IsDenomination(opts.FallbackDenomination) {
		denomination = opts.FallbackDenomination
	}
	if denomination == 0 {
		if raw := text(FieldDenomination); raw != "" {
			return core.Donation{}, fmt.Sprintf("denomination %q is not a receipt book", raw)
		}
		return core.Donation{}, "no denomination"
	}

	slNo := text(FieldSlNo)
	amount := locale.ParseAmount(get(FieldAmount))
	if !amount.Round(2).IsPositive() {
		// A zero or unreadable amount counts as not provided.
		if slNo == "" {
			if raw := text(FieldAmount); raw != "" {
				return core.Donation{}, fmt.Sprintf("amount %q is not positive and no serial number", raw)
			}
			return core.Donation{}, "no amount and no serial number"
		}
		amount = decimalFromInt(denomination)
	}
	if !amount.IsPositive() {
		return core.Donation{}, "non-positive amount"
	}

	name := text(FieldName)
	if name == "" {
		name = opts.PlaceholderName
	}
	receipt := text(FieldReceiptNo)
	if receipt == "" {
		receipt = core.PendingReceipt
	}

	return core.Donation{
		Date:         locale.ParseDateOr(get(FieldDate), opts.UndatedDate),
		DonorName:    strings.Join(strings.Fields(name), " "),
		Amount:       amount,
		Type:         core.Credit,
		Denomination: denomination,
		SlNo:         slNo,
		ReceiptNo:    receipt,
		Phone:        core.DigitsOnly(text(FieldPhone)),
	}, ""
}
