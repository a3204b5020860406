// Package memory is an in-process ledger store. It backs DATA_BACKEND=memory
// and the tests of everything above the storage layer.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"templeledger/internal/core"
	"templeledger/internal/ledger"
)

// Store keeps donations in insertion order.
type Store struct {
	mu      sync.RWMutex
	rows    []core.Donation
	nextID  int64
	now     func() time.Time
	closed  bool
	failOps map[string]error
}

func NewStore() *Store {
	return &Store{nextID: 1, now: time.Now}
}

// FailOn makes op ("insert", "update", ...) fail with err until cleared with a
// nil err. Tests use it to exercise storage failures.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOps == nil {
		s.failOps = map[string]error{}
	}
	if err == nil {
		delete(s.failOps, op)
		return
	}
	s.failOps[op] = err
}

func (s *Store) check(op string) error {
	if s.closed {
		return &ledger.StorageError{Op: op, Err: errClosed}
	}
	if err, ok := s.failOps[op]; ok {
		return &ledger.StorageError{Op: op, Err: err}
	}
	return nil
}

var errClosed = errors.New("store closed")

func (s *Store) Insert(ctx context.Context, d core.Donation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("insert"); err != nil {
		return 0, err
	}
	if err := d.Validate(); err != nil {
		return 0, &ledger.StorageError{Op: "insert", Err: err}
	}
	d.ID = s.nextID
	s.nextID++
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	s.rows = append(s.rows, d)
	return d.ID, nil
}

func (s *Store) index(id int64) int {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Get(ctx context.Context, id int64) (core.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("get"); err != nil {
		return core.Donation{}, err
	}
	i := s.index(id)
	if i < 0 {
		return core.Donation{}, ledger.ErrNotFound
	}
	return s.rows[i], nil
}

func (s *Store) List(ctx context.Context, f ledger.Filter) ([]core.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("list"); err != nil {
		return nil, err
	}
	out := make([]core.Donation, 0, len(s.rows))
	for _, d := range s.rows {
		if f.Matches(d) {
			out = append(out, d)
		}
	}
	switch f.Order {
	case ledger.ByDate:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, d core.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update"); err != nil {
		return err
	}
	i := s.index(d.ID)
	if i < 0 {
		return ledger.ErrNotFound
	}
	if err := d.Validate(); err != nil {
		return &ledger.StorageError{Op: "update", Err: err}
	}
	d.CreatedAt = s.rows[i].CreatedAt
	d.ImportBatch = s.rows[i].ImportBatch
	s.rows[i] = d
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete"); err != nil {
		return err
	}
	i := s.index(id)
	if i < 0 {
		return ledger.ErrNotFound
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	return nil
}

func (s *Store) DeleteBatch(ctx context.Context, batch string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete_batch"); err != nil {
		return 0, err
	}
	if batch == "" {
		return 0, nil
	}
	kept := s.rows[:0]
	removed := 0
	for _, d := range s.rows {
		if d.ImportBatch == batch {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	s.rows = kept
	return removed, nil
}

func (s *Store) sum(op string, keep func(core.Donation) bool) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(op); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range s.rows {
		if keep(d) {
			total = total.Add(d.Amount)
		}
	}
	return total, nil
}

func (s *Store) SumCredit(ctx context.Context) (decimal.Decimal, error) {
	return s.sum("sum_credit", func(d core.Donation) bool { return d.Type == core.Credit })
}

func (s *Store) SumOnDate(ctx context.Context, date string) (decimal.Decimal, error) {
	return s.sum("sum_on_date", func(d core.Donation) bool { return d.Date == date })
}

// Len returns the number of stored donations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ ledger.Store = (*Store)(nil)
