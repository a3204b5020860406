package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"templeledger/internal/core"
	"templeledger/internal/importer"
	"templeledger/internal/ledger"
	"templeledger/internal/log"
	"templeledger/internal/middleware/ratelimit"
	"templeledger/internal/middleware/security"
	"templeledger/internal/report"
	"templeledger/internal/services"
)

// LedgerService is what the API needs from the donation service.
type LedgerService interface {
	Add(ctx context.Context, in services.DonationInput) (core.Donation, core.Totals, error)
	Edit(ctx context.Context, id int64, patch ledger.Patch) (core.Donation, core.Totals, error)
	Delete(ctx context.Context, id int64) (core.Totals, error)
	Import(ctx context.Context, wb importer.WorkbookSource) (core.ImportSummary, core.Totals, error)
	UndoImport(ctx context.Context, batch string) (int, core.Totals, error)
	Recent(ctx context.Context, limit int) ([]core.Donation, error)
	Totals(ctx context.Context) (core.Totals, error)
	Register(ctx context.Context, q report.Query) (report.Register, error)
}

var _ LedgerService = (*services.DonationService)(nil)

// Options tunes request limits.
type Options struct {
	MaxUploadBytes    int64
	RequestsPerMinute int
}

const (
	defaultMaxUpload = 20 << 20
	maxJSONBody      = 64 << 10
	readyTimeout     = 5 * time.Second
)

type Server struct {
	http.Server
	svc      LedgerService
	logger   *log.Logger
	reqLog   *log.RequestLogger
	limiter  *ratelimit.Limiter
	clientIP *security.ClientIPResolver
	opts     Options
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc LedgerService, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}

	s := &Server{
		svc:      svc,
		logger:   logger.WithComponent(log.ComponentHTTP),
		reqLog:   log.NewRequestLogger(logger),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		clientIP: security.NewClientIPResolver(),
		opts:     opts,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /donations", s.handleListDonations)
	mux.HandleFunc("POST /donations", s.handleCreateDonation)
	mux.HandleFunc("PATCH /donations/{id}", s.handleEditDonation)
	mux.HandleFunc("DELETE /donations/{id}", s.handleDeleteDonation)

	mux.HandleFunc("POST /imports", s.handleImport)
	mux.HandleFunc("DELETE /imports/{batch}", s.handleUndoImport)

	mux.HandleFunc("GET /totals", s.handleTotals)
	mux.HandleFunc("GET /reports/{file}", s.handleReport)

	limited := s.limiter.Middleware(s.clientIP.ClientIP, s.writeRateLimited,
		http.MethodPost, http.MethodPatch, http.MethodDelete)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.trace(headers.Middleware(limited(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
