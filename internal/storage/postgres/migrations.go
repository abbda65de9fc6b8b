package postgres

import "context"

// Schema DDL plus the fixed account rows. Idempotent: safe to run on every
// startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(10,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS course_selections (
		id BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES students(id),
		course_id BIGINT NOT NULL REFERENCES courses(id)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES students(id),
		amount NUMERIC(10,2) NOT NULL,
		paid_at TIMESTAMPTZ NOT NULL,
		reference TEXT,
		selection_id BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id BIGSERIAL PRIMARY KEY,
		txn_date TIMESTAMPTZ NOT NULL,
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		debit NUMERIC(10,2) NOT NULL DEFAULT 0,
		credit NUMERIC(10,2) NOT NULL DEFAULT 0,
		student_id BIGINT,
		course_id BIGINT,
		selection_id BIGINT,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_student ON ledger_entries (student_id, account_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_selection ON ledger_entries (selection_id)`,
	`INSERT INTO accounts (code, name) VALUES
		('AR', 'Accounts Receivable'),
		('CASH', 'Cash'),
		('REV', 'Tuition Revenue')
	ON CONFLICT (code) DO NOTHING`,
}

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
