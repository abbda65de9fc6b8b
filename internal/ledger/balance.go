package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/campusbooks/student-ledger/internal/models"
)

// StudentBalance computes the student's outstanding balance: the sum of AR
// debits minus the sum of AR credits. A student with no AR activity has a
// zero balance. This is a plain committed read; concurrent postings for the
// same student may or may not be reflected.
func (s *Service) StudentBalance(ctx context.Context, studentID int64) (decimal.Decimal, error) {
	entries, err := s.store.EntriesByStudentAndAccount(ctx, studentID, s.registry.AR())
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Debit).Sub(e.Credit)
	}
	return balance, nil
}

// RecentEntries returns the student's latest ledger entries, most recent
// first, for dashboards and statements. limit <= 0 means no limit.
func (s *Service) RecentEntries(ctx context.Context, studentID int64, limit int) ([]models.LedgerEntry, error) {
	entries, err := s.store.EntriesByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
