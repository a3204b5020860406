package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"templeledger/internal/log"
	ports "templeledger/internal/sheets"
	"templeledger/internal/workbook"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultJournalSheet receives backup journal rows when no name is configured.
const DefaultJournalSheet = "Journal"

// Client reads spreadsheets for import and writes the backup journal.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string // journal spreadsheet
	journalSheet  string
	logger        *log.Logger
}

var (
	_ ports.WorkbookOpener = (*Client)(nil)
	_ ports.JournalWriter  = (*Client)(nil)
)

// Config selects the journal target and service-account credentials.
// SpreadsheetID may be empty for a read-only client used only for import.
type Config struct {
	SpreadsheetID   string
	JournalSheet    string
	CredentialsJSON string
	CredentialsFile string
}

// ConfigFromEnv reads GOOGLE_SPREADSHEET_ID, GOOGLE_BACKUP_SHEET_NAME and the
// service-account variables.
func ConfigFromEnv() Config {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return Config{
		SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		JournalSheet:    strings.TrimSpace(os.Getenv("GOOGLE_BACKUP_SHEET_NAME")),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile: file,
	}
}

// New builds a client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	sheet := cfg.JournalSheet
	if sheet == "" {
		sheet = DefaultJournalSheet
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, journalSheet: sheet, logger: logger}, nil
}

// NewFromEnv is New with ConfigFromEnv.
func NewFromEnv(ctx context.Context, logger *log.Logger) (*Client, error) {
	return New(ctx, ConfigFromEnv(), logger)
}

func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "Creating Google Sheets service with service account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case cfg.CredentialsJSON != "":
		return []byte(cfg.CredentialsJSON), nil
	case cfg.CredentialsFile != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// OpenWorkbook fetches every sheet of the spreadsheet in tab order. Values
// are requested unformatted with dates as serial numbers so they reach the
// importer exactly as an .xlsx file would deliver them.
func (c *Client) OpenWorkbook(ctx context.Context, spreadsheetID string) (*workbook.Memory, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	meta, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	titles := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	if len(titles) == 0 {
		return workbook.NewMemory(), nil
	}

	ranges := make([]string, len(titles))
	for i, t := range titles {
		ranges[i] = quoteSheet(t)
	}
	resp, err := c.svc.Spreadsheets.Values.BatchGet(spreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("batch get values: %w", err)
	}

	values := make([][][]any, len(titles))
	for i, vr := range resp.ValueRanges {
		if i < len(values) && vr != nil {
			values[i] = vr.Values
		}
	}
	wb := toWorkbook(titles, values)
	c.logger.InfoContext(ctx, "Fetched spreadsheet", "spreadsheet_id", spreadsheetID, "sheets", len(titles))
	return wb, nil
}

// AppendJournal appends entries below the last journal row, writing the
// header first when the journal sheet is empty.
func (c *Client) AppendJournal(ctx context.Context, entries []ports.JournalEntry) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if c.spreadsheetID == "" {
		return "", errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if len(entries) == 0 {
		return "", errors.New("no journal entries")
	}
	if err := c.ensureHeader(ctx); err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: journalRows(entries)}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, journalRange(c.journalSheet), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append journal: %w", err)
	}
	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Appended journal rows", "rows", len(entries), "range", ref)
	return ref, nil
}

func (c *Client) ensureHeader(ctx context.Context) error {
	first := quoteSheet(c.journalSheet) + "!A1:A1"
	got, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, first).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read journal header: %w", err)
	}
	if len(got.Values) > 0 && len(got.Values[0]) > 0 {
		return nil
	}
	hdr := &gsheet.ValueRange{Values: [][]any{ports.JournalHeader}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteSheet(c.journalSheet)+"!A1", hdr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write journal header: %w", err)
	}
	return nil
}
