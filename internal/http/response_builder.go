// Package http serves the ledger's JSON API.
//
// This file holds the response builder and the mapping from domain errors to
// status codes, so every handler answers in the same shape.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"templeledger/internal/core"
	"templeledger/internal/importer"
	"templeledger/internal/ledger"
	"templeledger/internal/locale"
	"templeledger/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       map[string]any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		body:       map[string]any{},
		headers:    map[string]string{},
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Set adds a top-level field to the body.
func (b *JSONResponseBuilder) Set(key string, value any) *JSONResponseBuilder {
	b.body[key] = value
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Error sets the user-visible error message.
func (b *JSONResponseBuilder) Error(msg string) *JSONResponseBuilder {
	return b.Set("error", msg)
}

// Totals attaches the freshly recomputed totals.
func (b *JSONResponseBuilder) Totals(t core.Totals) *JSONResponseBuilder {
	return b.Set("totals", totalsView(t))
}

// Write sends the response. Encoding errors are not recoverable once the
// header is out, so they are ignored.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// errorStatus maps domain errors to a status code and a message safe to show.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, "Record not found."
	case errors.Is(err, errUnknownReport):
		return http.StatusNotFound, "Unknown report."
	case isValidation(err):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, importer.ErrWorkbookRead):
		return http.StatusBadRequest, "The workbook could not be read. Records imported before the error were kept."
	case ledger.IsStorageError(err):
		return http.StatusInternalServerError, "The ledger could not be saved or read. Please try again."
	}
	return http.StatusInternalServerError, "Internal error."
}

func isValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidDenomination,
		core.ErrEmptyDonor,
		core.ErrDonorNameTooLong,
		core.ErrInvalidDate,
		core.ErrInvalidType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError logs the failure and answers with the mapped status.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) *JSONResponseBuilder {
	status, msg := errorStatus(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.LogError(r.Context(), logger, "Request failed", err, op, nil)
	} else {
		logger.WarnContext(r.Context(), "Request rejected", log.FieldError, err.Error(), log.FieldOperation, op)
	}
	return NewJSONResponse().Status(status).Error(msg)
}

type donationJSON struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	DateDisplay   string `json:"dateDisplay"`
	DonorName     string `json:"donorName"`
	Amount        string `json:"amount"`
	AmountDisplay string `json:"amountDisplay"`
	Type          string `json:"type"`
	Denomination  int    `json:"denomination"`
	SlNo          string `json:"slNo"`
	ReceiptNo     string `json:"receiptNo"`
	Phone         string `json:"phone,omitempty"`
	ImportBatch   string `json:"importBatch,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

func donationView(d core.Donation) donationJSON {
	v := donationJSON{
		ID:            d.ID,
		Date:          d.Date,
		DateDisplay:   locale.FormatDateDisplay(d.Date),
		DonorName:     d.DonorName,
		Amount:        d.Amount.StringFixed(2),
		AmountDisplay: locale.FormatCurrencyDisplay(d.Amount),
		Type:          string(d.Type),
		Denomination:  d.Denomination,
		SlNo:          d.SlNo,
		ReceiptNo:     d.ReceiptNo,
		Phone:         d.Phone,
		ImportBatch:   d.ImportBatch,
	}
	if !d.CreatedAt.IsZero() {
		v.CreatedAt = d.CreatedAt.UTC().Format(time.RFC3339)
	}
	return v
}

type totalsJSON struct {
	TotalFund         string `json:"totalFund"`
	TodayTotal        string `json:"todayTotal"`
	TotalFundDisplay  string `json:"totalFundDisplay"`
	TodayTotalDisplay string `json:"todayTotalDisplay"`
	Today             string `json:"today"`
}

func totalsView(t core.Totals) totalsJSON {
	return totalsJSON{
		TotalFund:         t.TotalFund.StringFixed(2),
		TodayTotal:        t.TodayTotal.StringFixed(2),
		TotalFundDisplay:  locale.FormatCurrencyDisplay(t.TotalFund),
		TodayTotalDisplay: locale.FormatCurrencyDisplay(t.TodayTotal),
		Today:             t.Today,
	}
}

type sheetJSON struct {
	Name                 string `json:"name"`
	HeaderFound          bool   `json:"headerFound"`
	HeaderRow            int    `json:"headerRow,omitempty"`
	FallbackDenomination int    `json:"fallbackDenomination,omitempty"`
	SoftSkipped          bool   `json:"softSkipped"`
	Imported             int    `json:"imported"`
	Skipped              int    `json:"skipped"`
}

type importJSON struct {
	Batch    string      `json:"batch"`
	Imported int         `json:"imported"`
	Skipped  int         `json:"skipped"`
	Message  string      `json:"message"`
	Reasons  []string    `json:"reasons"`
	Sheets   []sheetJSON `json:"sheets"`
}

func importView(s core.ImportSummary) importJSON {
	v := importJSON{
		Batch:    s.Batch,
		Imported: s.Imported,
		Skipped:  s.Skipped,
		Message:  s.Message(),
		Reasons:  s.Reasons(),
		Sheets:   make([]sheetJSON, len(s.Sheets)),
	}
	for i, sh := range s.Sheets {
		v.Sheets[i] = sheetJSON{
			Name:                 sh.Name,
			HeaderFound:          sh.HeaderFound,
			HeaderRow:            sh.HeaderRow,
			FallbackDenomination: sh.FallbackDenomination,
			SoftSkipped:          sh.SoftSkipped,
			Imported:             sh.Imported,
			Skipped:              sh.Skipped,
		}
	}
	return v
}
