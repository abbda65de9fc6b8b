// Package memory is an in-memory LedgerStore used by tests and by the server
// when no database is configured. Atomically gets real rollback semantics by
// running each unit of work against a deep copy of the state and swapping the
// copy in only on success.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
)

type state struct {
	nextAccountID   int64
	nextEntryID     int64
	nextStudentID   int64
	nextCourseID    int64
	nextSelectionID int64
	nextPaymentID   int64

	accounts   []models.Account
	entries    []models.LedgerEntry
	students   map[int64]models.Student
	courses    map[int64]models.Course
	selections map[int64]models.CourseSelection
	payments   map[int64]models.Payment
}

func newState() *state {
	return &state{
		nextAccountID:   1,
		nextEntryID:     1,
		nextStudentID:   1,
		nextCourseID:    1,
		nextSelectionID: 1,
		nextPaymentID:   1,
		students:        make(map[int64]models.Student),
		courses:         make(map[int64]models.Course),
		selections:      make(map[int64]models.CourseSelection),
		payments:        make(map[int64]models.Payment),
	}
}

func (st *state) clone() *state {
	c := *st
	c.accounts = append([]models.Account(nil), st.accounts...)
	c.entries = append([]models.LedgerEntry(nil), st.entries...)
	c.students = make(map[int64]models.Student, len(st.students))
	for k, v := range st.students {
		c.students[k] = v
	}
	c.courses = make(map[int64]models.Course, len(st.courses))
	for k, v := range st.courses {
		c.courses[k] = v
	}
	c.selections = make(map[int64]models.CourseSelection, len(st.selections))
	for k, v := range st.selections {
		c.selections[k] = v
	}
	c.payments = make(map[int64]models.Payment, len(st.payments))
	for k, v := range st.payments {
		c.payments[k] = v
	}
	return &c
}

// Store is the in-memory implementation of interfaces.LedgerStore.
type Store struct {
	mu       sync.Mutex
	state    *state
	failures map[string]error
}

// NewStore creates an empty store. Call EnsureSchema to provision the three
// required accounts.
func NewStore() *Store {
	return &Store{
		state:    newState(),
		failures: make(map[string]error),
	}
}

// EnsureSchema provisions the fixed account rows when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := []models.Account{
		{Code: models.CodeAccountsReceivable, Name: "Accounts Receivable"},
		{Code: models.CodeCash, Name: "Cash"},
		{Code: models.CodeRevenue, Name: "Tuition Revenue"},
	}
	for _, acc := range seed {
		if s.state.accountID(acc.Code) != 0 {
			continue
		}
		acc.ID = s.state.nextAccountID
		s.state.nextAccountID++
		s.state.accounts = append(s.state.accounts, acc)
	}
	return nil
}

// FailOn makes the next call to the named unit-of-work operation return err.
// The failure is consumed once. Test hook only.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) takeFailure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

// Atomically runs fn against a copy of the state and commits the copy only
// when fn succeeds. The store lock is held for the duration, so concurrent
// readers never observe a half-applied unit of work.
func (s *Store) Atomically(ctx context.Context, fn func(uow interfaces.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&unitOfWork{store: s, state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) AccountIDByCode(ctx context.Context, code string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id := s.state.accountID(code); id != 0 {
		return id, nil
	}
	return 0, interfaces.ErrNotFound
}

func (st *state) accountID(code string) int64 {
	for _, acc := range st.accounts {
		if acc.Code == code {
			return acc.ID
		}
	}
	return 0
}

// EntriesByStudentAndAccount returns matching entries in insertion order.
func (s *Store) EntriesByStudentAndAccount(ctx context.Context, studentID, accountID int64) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.LedgerEntry
	for _, e := range s.state.entries {
		if e.StudentID == studentID && e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

// EntriesByStudent returns the student's entries most-recent-first.
func (s *Store) EntriesByStudent(ctx context.Context, studentID int64) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.LedgerEntry
	for _, e := range s.state.entries {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	sortRecentFirst(out)
	return out, nil
}

// EntriesBySelection returns the selection's entries most-recent-first.
func (s *Store) EntriesBySelection(ctx context.Context, selectionID int64) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.LedgerEntry
	for _, e := range s.state.entries {
		if e.SelectionID == selectionID {
			out = append(out, e)
		}
	}
	sortRecentFirst(out)
	return out, nil
}

// PaymentsByStudent returns the student's payments most-recent-first.
func (s *Store) PaymentsByStudent(ctx context.Context, studentID int64) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Payment
	for _, p := range s.state.payments {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaidAt.Equal(out[j].PaidAt) {
			return out[i].PaidAt.After(out[j].PaidAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func sortRecentFirst(entries []models.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].TxnDate.Equal(entries[j].TxnDate) {
			return entries[i].TxnDate.After(entries[j].TxnDate)
		}
		return entries[i].ID > entries[j].ID
	})
}

// Compile-time check: Store implements LedgerStore.
var _ interfaces.LedgerStore = (*Store)(nil)
