package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a single ledger row: a debit or a credit booked to one
// account. Exactly one of Debit/Credit is non-zero.
type LedgerEntry struct {
	ID        int64           `json:"id"`
	TxnDate   time.Time       `json:"txn_date"`
	AccountID int64           `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`

	// Correlation references used for reporting and cascade cleanup.
	// Zero means not populated (stored as NULL).
	StudentID   int64 `json:"student_id,omitempty"`
	CourseID    int64 `json:"course_id,omitempty"`
	SelectionID int64 `json:"selection_id,omitempty"`

	Description string `json:"description"`
}
