package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "templeledger/internal/sheets"
	"templeledger/internal/workbook"
)

// Store is an in-process stand-in for a Google spreadsheet: it serves
// registered workbooks and keeps journal rows in memory.
type Store struct {
	mu        sync.Mutex
	workbooks map[string]*workbook.Memory
	journal   []ports.JournalEntry
	failWith  error
}

var (
	_ ports.WorkbookOpener = (*Store)(nil)
	_ ports.JournalWriter  = (*Store)(nil)
)

func New() *Store {
	return &Store{workbooks: map[string]*workbook.Memory{}}
}

// Register makes wb available under the given spreadsheet ID.
func (s *Store) Register(spreadsheetID string, wb *workbook.Memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workbooks[spreadsheetID] = wb
}

// FailAppends makes every later AppendJournal return err. Nil clears it.
func (s *Store) FailAppends(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) OpenWorkbook(_ context.Context, spreadsheetID string) (*workbook.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, ok := s.workbooks[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("spreadsheet %q not found", spreadsheetID)
	}
	return wb, nil
}

// AppendJournal stores the entries and returns a synthetic range reference.
func (s *Store) AppendJournal(_ context.Context, entries []ports.JournalEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return "", s.failWith
	}
	if len(entries) == 0 {
		return "", errors.New("no journal entries")
	}
	first := len(s.journal) + 2 // row 1 is the header
	s.journal = append(s.journal, entries...)
	return fmt.Sprintf("mem:%d-%d", first, len(s.journal)+1), nil
}

// Journal returns a copy of every appended entry in append order.
func (s *Store) Journal() []ports.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.JournalEntry(nil), s.journal...)
}
