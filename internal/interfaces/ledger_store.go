package interfaces

import (
	"context"

	"github.com/campusbooks/student-ledger/internal/models"
)

// UnitOfWork is the atomic transaction scope. Every write made through it is
// committed together or rolled back together; it is only valid inside the
// function passed to LedgerStore.Atomically.
type UnitOfWork interface {
	// AppendEntries durably writes a batch of ledger entries and returns the
	// assigned ids, in batch order. All-or-nothing: a failure writes none.
	AppendEntries(ctx context.Context, entries []models.LedgerEntry) ([]int64, error)

	// Cascade-only deletes. There is no single-entry delete: entries are only
	// ever removed as a whole correlated set.
	DeleteEntriesBySelection(ctx context.Context, selectionID int64) (int64, error)
	DeleteEntriesByStudent(ctx context.Context, studentID int64) (int64, error)

	// Business rows coupled to postings and cascades.
	InsertStudent(ctx context.Context, s models.Student) (int64, error)
	InsertCourse(ctx context.Context, c models.Course) (int64, error)
	InsertSelection(ctx context.Context, sel models.CourseSelection) (int64, error)
	InsertPayment(ctx context.Context, p models.Payment) (int64, error)
	SelectionIDsByStudent(ctx context.Context, studentID int64) ([]int64, error)
	DeletePaymentsByStudent(ctx context.Context, studentID int64) (int64, error)
	DeleteSelectionsByStudent(ctx context.Context, studentID int64) (int64, error)
	DeleteSelection(ctx context.Context, selectionID int64) error
	DeleteStudent(ctx context.Context, studentID int64) error

	// Lookups used by posting preconditions.
	StudentExists(ctx context.Context, studentID int64) (bool, error)
	SelectionExists(ctx context.Context, selectionID int64) (bool, error)
	CourseByID(ctx context.Context, courseID int64) (models.Course, error)
	SelectionByStudentCourse(ctx context.Context, studentID, courseID int64) (bool, error)
}

// LedgerStore is the persistence boundary of the accounting core. Reads are
// plain committed reads; writes happen only inside Atomically.
type LedgerStore interface {
	// Atomically runs fn inside a transaction. If fn returns an error the
	// transaction is rolled back and the error is returned unchanged.
	Atomically(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountIDByCode(ctx context.Context, code string) (int64, error)

	// EntriesByStudentAndAccount returns entries in insertion order; the
	// display queries below return most-recent-first.
	EntriesByStudentAndAccount(ctx context.Context, studentID, accountID int64) ([]models.LedgerEntry, error)
	EntriesByStudent(ctx context.Context, studentID int64) ([]models.LedgerEntry, error)
	EntriesBySelection(ctx context.Context, selectionID int64) ([]models.LedgerEntry, error)

	// PaymentsByStudent returns the student's payments most-recent-first,
	// for dashboards and statements.
	PaymentsByStudent(ctx context.Context, studentID int64) ([]models.Payment, error)
}
