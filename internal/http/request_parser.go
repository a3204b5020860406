package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"templeledger/internal/core"
	"templeledger/internal/ledger"
	"templeledger/internal/locale"
	"templeledger/internal/report"
	"templeledger/internal/services"
)

// errBadRequest marks malformed requests (400) as opposed to well-formed
// requests carrying invalid values (422).
var errBadRequest = errors.New("bad request")

// donationRequest is the body of POST /donations. Amount and denomination
// may be JSON numbers or text such as "1,000".
type donationRequest struct {
	Date         string `json:"date"`
	DonorName    string `json:"donorName"`
	Amount       any    `json:"amount"`
	Denomination any    `json:"denomination"`
	SlNo         string `json:"slNo"`
	ReceiptNo    string `json:"receiptNo"`
	Phone        string `json:"phone"`
}

// patchRequest is the body of PATCH /donations/{id}; absent fields are kept.
type patchRequest struct {
	Date         *string `json:"date"`
	DonorName    *string `json:"donorName"`
	Amount       any     `json:"amount"`
	Denomination any     `json:"denomination"`
	SlNo         *string `json:"slNo"`
	ReceiptNo    *string `json:"receiptNo"`
	Phone        *string `json:"phone"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: body must hold a single JSON object", errBadRequest)
	}
	return nil
}

// rawValue turns decoded JSON scalars into the kinds the locale parsers read.
func rawValue(v any) any {
	if n, ok := v.(json.Number); ok {
		return string(n)
	}
	return v
}

func parseAmount(v any) (decimal.Decimal, error) {
	amt := locale.ParseAmount(rawValue(v))
	if !amt.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %v", core.ErrInvalidAmount, v)
	}
	return amt, nil
}

func parseDenomination(v any) (int, error) {
	d := locale.ParseDenomination(rawValue(v))
	if !core.IsDenomination(d) {
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidDenomination, v)
	}
	return d, nil
}

func (req donationRequest) toInput() (services.DonationInput, error) {
	in := services.DonationInput{
		Date:      strings.TrimSpace(req.Date),
		DonorName: sanitizeInput(req.DonorName),
		SlNo:      sanitizeInput(req.SlNo),
		ReceiptNo: sanitizeInput(req.ReceiptNo),
		Phone:     req.Phone,
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return in, err
	}
	in.Amount = amt
	if req.Denomination != nil {
		if in.Denomination, err = parseDenomination(req.Denomination); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (req patchRequest) toPatch() (ledger.Patch, error) {
	p := ledger.Patch{
		Date:      req.Date,
		DonorName: sanitizePtr(req.DonorName),
		SlNo:      sanitizePtr(req.SlNo),
		ReceiptNo: sanitizePtr(req.ReceiptNo),
		Phone:     req.Phone,
	}
	if req.Amount != nil {
		amt, err := parseAmount(req.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = &amt
	}
	if req.Denomination != nil {
		d, err := parseDenomination(req.Denomination)
		if err != nil {
			return p, err
		}
		p.Denomination = &d
	}
	return p, nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid donation id %q", errBadRequest, r.PathValue("id"))
	}
	return id, nil
}

// parseLimit reads ?limit=N; absent means all records.
func parseLimit(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", errBadRequest, v)
	}
	return n, nil
}

// parseReportQuery reads from, to and denomination. Dates are normalized by
// the service so day-first input is accepted.
func parseReportQuery(q url.Values) (report.Query, error) {
	rq := report.Query{
		From: strings.TrimSpace(q.Get("from")),
		To:   strings.TrimSpace(q.Get("to")),
	}
	if v := strings.TrimSpace(q.Get("denomination")); v != "" {
		d, err := parseDenomination(v)
		if err != nil {
			return rq, err
		}
		rq.Denomination = d
	}
	return rq, nil
}

// confirmed reports whether a destructive request carries confirm=true.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}
