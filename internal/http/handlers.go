package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"templeledger/internal/log"
	"templeledger/internal/report"
	"templeledger/internal/workbook"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Set("status", "ok").
		Set("uptime", time.Since(s.started).Round(time.Second).String()).
		Write(w)
}

// handleReady reports ready once the store answers an aggregate query.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	checks := map[string]string{"ledger": "ok"}
	resp := NewJSONResponse().Set("status", "ready")
	if _, err := s.svc.Totals(ctx); err != nil {
		checks["ledger"] = "failed: " + err.Error()
		resp.Status(http.StatusServiceUnavailable).Set("status", "not_ready")
	}
	resp.Set("checks", checks).
		Set("rate_limiter", map[string]int64{
			"active_clients": int64(s.limiter.ActiveClients()),
			"rejected":       s.limiter.Rejected(),
		}).
		Write(w)
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err).Write(w)
		return
	}
	ds, err := s.svc.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, log.OpList, err).Write(w)
		return
	}
	out := make([]donationJSON, len(ds))
	for i, d := range ds {
		out[i] = donationView(d)
	}
	NewJSONResponse().Set("donations", out).Set("count", len(out)).Write(w)
}

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err).Write(w)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, log.OpCreate, err).Write(w)
		return
	}
	d, totals, err := s.svc.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/donations/%d", d.ID)).
		Set("donation", donationView(d)).
		Totals(totals).
		Write(w)
}

func (s *Server) handleEditDonation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err).Write(w)
		return
	}
	var req patchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err).Write(w)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, log.OpUpdate, err).Write(w)
		return
	}
	d, totals, err := s.svc.Edit(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, log.OpUpdate, err).Write(w)
		return
	}
	NewJSONResponse().Set("donation", donationView(d)).Totals(totals).Write(w)
}

func (s *Server) handleDeleteDonation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err).Write(w)
		return
	}
	if !confirmed(r) {
		writeError(w, r, log.OpDelete, fmt.Errorf("%w: deleting a record requires confirm=true", errBadRequest)).Write(w)
		return
	}
	totals, err := s.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpDelete, err).Write(w)
		return
	}
	NewJSONResponse().Set("deleted", id).Totals(totals).Write(w)
}

// handleImport reads the uploaded .xlsx from the multipart field "workbook".
// Records stored before a failure stay stored, so the summary is returned
// with error responses too.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		writeError(w, r, log.OpImport, fmt.Errorf("%w: upload too large or not multipart: %v", errBadRequest, err)).Write(w)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("workbook")
	if err != nil {
		writeError(w, r, log.OpImport, fmt.Errorf("%w: missing file field \"workbook\"", errBadRequest)).Write(w)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		writeError(w, r, log.OpImport, fmt.Errorf("%w: only .xlsx workbooks are supported", errBadRequest)).Write(w)
		return
	}

	wb, err := workbook.ReadExcel(file)
	if err != nil {
		writeError(w, r, log.OpImport, fmt.Errorf("%w: %s is not a readable workbook", errBadRequest, header.Filename)).Write(w)
		return
	}
	defer wb.Close()

	log.FromContext(r.Context()).InfoContext(r.Context(), "Workbook received",
		log.FieldFile, header.Filename, "size", header.Size)

	summary, totals, err := s.svc.Import(r.Context(), wb)
	if err != nil {
		writeError(w, r, log.OpImport, err).
			Set("summary", importView(summary)).
			Totals(totals).
			Write(w)
		return
	}
	NewJSONResponse().Set("summary", importView(summary)).Totals(totals).Write(w)
}

func (s *Server) handleUndoImport(w http.ResponseWriter, r *http.Request) {
	batch := strings.TrimSpace(r.PathValue("batch"))
	if !confirmed(r) {
		writeError(w, r, log.OpUndo, fmt.Errorf("%w: undoing an import requires confirm=true", errBadRequest)).Write(w)
		return
	}
	n, totals, err := s.svc.UndoImport(r.Context(), batch)
	if err != nil {
		writeError(w, r, log.OpUndo, err).Write(w)
		return
	}
	NewJSONResponse().Set("batch", batch).Set("removed", n).Totals(totals).Write(w)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.Totals(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err).Write(w)
		return
	}
	NewJSONResponse().Totals(totals).Write(w)
}

// reportWriters maps the download name under /reports/ to its writer.
var reportWriters = map[string]struct {
	ext         string
	contentType string
	write       func(*bytes.Buffer, report.Register) error
}{
	"register.pdf": {"pdf", "application/pdf", func(b *bytes.Buffer, reg report.Register) error {
		return report.WritePDF(b, reg)
	}},
	"register.xlsx": {"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(b *bytes.Buffer, reg report.Register) error {
		return report.WriteXLSX(b, reg)
	}},
}

// handleReport renders the receipt register. The document is built in memory
// so a rendering failure can still be answered with a JSON error.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rw, ok := reportWriters[r.PathValue("file")]
	if !ok {
		writeError(w, r, log.OpReport, fmt.Errorf("report %q: %w", r.PathValue("file"), errUnknownReport)).Write(w)
		return
	}
	q, err := parseReportQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpReport, err).Write(w)
		return
	}
	reg, err := s.svc.Register(r.Context(), q)
	if err != nil {
		writeError(w, r, log.OpReport, err).Write(w)
		return
	}

	var buf bytes.Buffer
	if err := rw.write(&buf, reg); err != nil {
		writeError(w, r, log.OpReport, err).Write(w)
		return
	}
	w.Header().Set("Content-Type", rw.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reg.FileName(rw.ext)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

var errUnknownReport = errors.New("unknown report")
