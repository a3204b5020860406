package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"templeledger/internal/core"
	"templeledger/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistent ledger store. Amounts are stored as
// integer paise so that sums are exact.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The store is owned by one process and used through one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	slog.Info("SQLite ledger opened", "path", dbPath)
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection; used by readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return ledger.Wrap("ping", r.db.PingContext(ctx))
}

func toPaise(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromPaise(p int64) decimal.Decimal {
	return decimal.New(p, -2)
}

const donationColumns = `id, date, donor_name, amount_paise, type, denomination, sl_no, receipt_no, phone, import_batch, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(s rowScanner) (core.Donation, error) {
	var (
		d         core.Donation
		paise     int64
		typ       string
		createdAt string
	)
	if err := s.Scan(&d.ID, &d.Date, &d.DonorName, &paise, &typ, &d.Denomination,
		&d.SlNo, &d.ReceiptNo, &d.Phone, &d.ImportBatch, &createdAt); err != nil {
		return core.Donation{}, err
	}
	d.Amount = fromPaise(paise)
	d.Type = core.DonationType(typ)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		d.CreatedAt = t
	}
	return d, nil
}

// Insert implements ledger.Writer.
func (r *SQLiteRepository) Insert(ctx context.Context, d core.Donation) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, ledger.Wrap("insert", err)
	}
	created := d.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO donations (date, donor_name, amount_paise, type, denomination, sl_no, receipt_no, phone, import_batch, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Date, d.DonorName, toPaise(d.Amount), string(d.Type), d.Denomination,
		d.SlNo, d.ReceiptNo, d.Phone, d.ImportBatch, created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, ledger.Wrap("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, ledger.Wrap("insert", err)
	}
	slog.DebugContext(ctx, "Donation saved to SQLite",
		"id", id,
		"date", d.Date,
		"amount_paise", toPaise(d.Amount),
		"denomination", d.Denomination)
	return id, nil
}

// Get implements ledger.Reader.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Donation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = ?`, id)
	d, err := scanDonation(row)
	if err == sql.ErrNoRows {
		return core.Donation{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Donation{}, ledger.Wrap("get", err)
	}
	return d, nil
}

// buildListQuery renders f as SQL. Exposed to tests through List only.
func buildListQuery(f ledger.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.From != "" {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}
	if f.Denomination != 0 {
		where = append(where, "denomination = ?")
		args = append(args, f.Denomination)
	}
	if f.Batch != "" {
		where = append(where, "import_batch = ?")
		args = append(args, f.Batch)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + donationColumns + ` FROM donations`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if f.Order == ledger.ByDate {
		b.WriteString(" ORDER BY date ASC, id ASC")
	} else {
		b.WriteString(" ORDER BY id DESC")
	}
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return b.String(), args
}

// List implements ledger.Reader.
func (r *SQLiteRepository) List(ctx context.Context, f ledger.Filter) ([]core.Donation, error) {
	query, args := buildListQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ledger.Wrap("list", err)
	}
	defer rows.Close()

	var out []core.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, ledger.Wrap("list", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Wrap("list", err)
	}
	return out, nil
}

// Update implements ledger.Editor. The import batch and creation time are kept.
func (r *SQLiteRepository) Update(ctx context.Context, d core.Donation) error {
	if err := d.Validate(); err != nil {
		return ledger.Wrap("update", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE donations
		 SET date = ?, donor_name = ?, amount_paise = ?, type = ?, denomination = ?, sl_no = ?, receipt_no = ?, phone = ?
		 WHERE id = ?`,
		d.Date, d.DonorName, toPaise(d.Amount), string(d.Type), d.Denomination,
		d.SlNo, d.ReceiptNo, d.Phone, d.ID)
	if err != nil {
		return ledger.Wrap("update", err)
	}
	return affectedOne("update", res)
}

// Delete implements ledger.Editor.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE id = ?`, id)
	if err != nil {
		return ledger.Wrap("delete", err)
	}
	return affectedOne("delete", res)
}

// DeleteBatch implements ledger.Editor.
func (r *SQLiteRepository) DeleteBatch(ctx context.Context, batch string) (int, error) {
	if batch == "" {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE import_batch = ?`, batch)
	if err != nil {
		return 0, ledger.Wrap("delete_batch", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ledger.Wrap("delete_batch", err)
	}
	slog.InfoContext(ctx, "Import batch removed from SQLite", "batch", batch, "rows", n)
	return int(n), nil
}

func affectedOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return ledger.Wrap(op, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) sum(ctx context.Context, op, query string, args ...any) (decimal.Decimal, error) {
	var paise int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&paise); err != nil {
		return decimal.Zero, ledger.Wrap(op, err)
	}
	return fromPaise(paise), nil
}

// SumCredit implements ledger.Aggregator.
func (r *SQLiteRepository) SumCredit(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, "sum_credit",
		`SELECT COALESCE(SUM(amount_paise), 0) FROM donations WHERE type = ?`, string(core.Credit))
}

// SumOnDate implements ledger.Aggregator.
func (r *SQLiteRepository) SumOnDate(ctx context.Context, date string) (decimal.Decimal, error) {
	return r.sum(ctx, "sum_on_date",
		`SELECT COALESCE(SUM(amount_paise), 0) FROM donations WHERE date = ?`, date)
}

var _ ledger.Store = (*SQLiteRepository)(nil)
