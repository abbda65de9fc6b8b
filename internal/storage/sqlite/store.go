// Package sqlite is the SQLite implementation of interfaces.LedgerStore,
// for single-file deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS course_selections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL REFERENCES students(id),
		course_id INTEGER NOT NULL REFERENCES courses(id)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL REFERENCES students(id),
		amount TEXT NOT NULL,
		paid_at TIMESTAMP NOT NULL,
		reference TEXT,
		selection_id INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		txn_date TIMESTAMP NOT NULL,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		debit TEXT NOT NULL DEFAULT '0',
		credit TEXT NOT NULL DEFAULT '0',
		student_id INTEGER,
		course_id INTEGER,
		selection_id INTEGER,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_student ON ledger_entries (student_id, account_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_selection ON ledger_entries (selection_id)`,
	`INSERT OR IGNORE INTO accounts (code, name) VALUES
		('AR', 'Accounts Receivable'),
		('CASH', 'Cash'),
		('REV', 'Tuition Revenue')`,
}

// Store implements interfaces.LedgerStore on a sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}
	// sqlite handles one writer at a time.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the tables and provisions the three fixed account
// rows when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Atomically runs fn inside a database transaction.
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
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM accounts WHERE code = ?`, code).Scan(&id)
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
	WHERE student_id = ? AND account_id = ?
	ORDER BY id`

	return s.queryEntries(ctx, query, studentID, accountID)
}

func (s *Store) EntriesByStudent(ctx context.Context, studentID int64) ([]models.LedgerEntry, error) {
	const query = `SELECT id, txn_date, account_id, debit, credit, student_id, course_id, selection_id, description
	FROM ledger_entries
	WHERE student_id = ?
	ORDER BY txn_date DESC, id DESC`

	return s.queryEntries(ctx, query, studentID)
}

func (s *Store) EntriesBySelection(ctx context.Context, selectionID int64) ([]models.LedgerEntry, error) {
	const query = `SELECT id, txn_date, account_id, debit, credit, student_id, course_id, selection_id, description
	FROM ledger_entries
	WHERE selection_id = ?
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
	WHERE student_id = ?
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
