// Package postgres is the PostgreSQL implementation of interfaces.LedgerStore.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
)

// Store implements interfaces.LedgerStore on a *sql.DB.
type Store struct {
	db *sql.DB
}

// NewStore wraps an existing database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to postgres with the given DSN and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Atomically runs fn inside a database transaction. Any error from fn (or a
// panic escaping it) rolls back every write made through the unit of work.
func (s *Store) Atomically(ctx context.Context, fn func(uow interfaces.UnitOfWork) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(&unitOfWork{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) AccountIDByCode(ctx context.Context, code string) (int64, error) {
	const query = `SELECT id FROM accounts WHERE code = $1`

	var id int64
	err := s.db.QueryRowContext(ctx, query, code).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, interfaces.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) EntriesByStudentAndAccount(ctx context.Context, studentID, accountID int64) ([]models.LedgerEntry, error) {
	const query = `SELECT id, txn_date, account_id, debit, credit, student_id, course_id, selection_id, description
	FROM ledger_entries
	WHERE student_id = $1 AND account_id = $2
	ORDER BY id`

	return s.queryEntries(ctx, query, studentID, accountID)
}

func (s *Store) EntriesByStudent(ctx context.Context, studentID int64) ([]models.LedgerEntry, error) {
	const query = `SELECT id, txn_date, account_id, debit, credit, student_id, course_id, selection_id, description
	FROM ledger_entries
	WHERE student_id = $1
	ORDER BY txn_date DESC, id DESC`

	return s.queryEntries(ctx, query, studentID)
}

func (s *Store) EntriesBySelection(ctx context.Context, selectionID int64) ([]models.LedgerEntry, error) {
	const query = `SELECT id, txn_date, account_id, debit, credit, student_id, course_id, selection_id, description
	FROM ledger_entries
	WHERE selection_id = $1
	ORDER BY txn_date DESC, id DESC`

	return s.queryEntries(ctx, query, selectionID)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) PaymentsByStudent(ctx context.Context, studentID int64) ([]models.Payment, error) {
	const query = `SELECT id, student_id, amount, paid_at, reference, selection_id
	FROM payments
	WHERE student_id = $1
	ORDER BY paid_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var (
			p         models.Payment
			reference sql.NullString
			selection sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Amount, &p.PaidAt, &reference, &selection); err != nil {
			return nil, err
		}
		p.Reference = reference.String
		p.SelectionID = selection.Int64
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.LedgerEntry, error) {
	var (
		e         models.LedgerEntry
		student   sql.NullInt64
		course    sql.NullInt64
		selection sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.TxnDate, &e.AccountID, &e.Debit, &e.Credit,
		&student, &course, &selection, &e.Description)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	e.StudentID = student.Int64
	e.CourseID = course.Int64
	e.SelectionID = selection.Int64
	return e, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// Compile-time check: Store implements LedgerStore.
var _ interfaces.LedgerStore = (*Store)(nil)
