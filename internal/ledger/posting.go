package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
	"github.com/campusbooks/student-ledger/internal/models/events"
)

// Entry descriptions, kept verbatim from the billing system this replaces.
const (
	descEnrollmentCharge = "Enrollment charge"
	descTuitionRevenue   = "Tuition revenue"
	descStudentPayment   = "Student payment"
	descPaymentApplied   = "Payment applied to account"
)

// PostEnrollment appends the enrollment charge pair: debit AR (the student
// owes money), credit REV (the school earns revenue), both for amount, dated
// now and correlated to the student, course and selection. It must run inside
// the same unit of work as the selection insert; on error the caller's unit
// of work must be abandoned. Returns the assigned entry ids.
//
// Calling this twice for the same selection double-books the charge;
// idempotency is the caller's responsibility.
func (s *Service) PostEnrollment(ctx context.Context, uow interfaces.UnitOfWork, studentID, courseID, selectionID int64, amount decimal.Decimal) ([]int64, error) {
	if amount.IsNegative() {
		return nil, &ValidationError{Msg: "enrollment amount must not be negative"}
	}
	if amount.IsZero() {
		// A free course charges nothing; there is no zero-amount entry shape.
		return nil, nil
	}

	if err := s.requireStudent(ctx, uow, studentID); err != nil {
		return nil, err
	}
	if err := s.requireSelection(ctx, uow, selectionID); err != nil {
		return nil, err
	}

	now := s.now()
	pair := []models.LedgerEntry{
		{
			TxnDate:     now,
			AccountID:   s.registry.AR(),
			Debit:       amount,
			StudentID:   studentID,
			CourseID:    courseID,
			SelectionID: selectionID,
			Description: descEnrollmentCharge,
		},
		{
			TxnDate:     now,
			AccountID:   s.registry.Revenue(),
			Credit:      amount,
			StudentID:   studentID,
			CourseID:    courseID,
			SelectionID: selectionID,
			Description: descTuitionRevenue,
		},
	}

	ids, err := s.appendPair(ctx, uow, events.KindEnrollment, pair)
	if err != nil {
		return nil, err
	}

	s.log.Info("enrollment posted",
		zap.Int64("student_id", studentID),
		zap.Int64("course_id", courseID),
		zap.Int64("selection_id", selectionID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Int64s("entry_ids", ids),
	)
	return ids, nil
}

// PostPayment appends the payment pair: debit CASH (money received), credit
// AR (the student owes less), both for amount. The CASH side carries the
// selection correlation when one is given; the AR side correlates to the
// student only. Must run inside the same unit of work as the payment insert.
func (s *Service) PostPayment(ctx context.Context, uow interfaces.UnitOfWork, studentID int64, amount decimal.Decimal, selectionID int64) ([]int64, error) {
	if amount.Sign() <= 0 {
		return nil, &ValidationError{Msg: "payment amount must be greater than zero"}
	}

	if err := s.requireStudent(ctx, uow, studentID); err != nil {
		return nil, err
	}
	if selectionID != 0 {
		if err := s.requireSelection(ctx, uow, selectionID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	pair := []models.LedgerEntry{
		{
			TxnDate:     now,
			AccountID:   s.registry.Cash(),
			Debit:       amount,
			StudentID:   studentID,
			SelectionID: selectionID,
			Description: descStudentPayment,
		},
		{
			TxnDate:     now,
			AccountID:   s.registry.AR(),
			Credit:      amount,
			StudentID:   studentID,
			Description: descPaymentApplied,
		},
	}

	ids, err := s.appendPair(ctx, uow, events.KindPayment, pair)
	if err != nil {
		return nil, err
	}

	s.log.Info("payment posted",
		zap.Int64("student_id", studentID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Int64s("entry_ids", ids),
	)
	return ids, nil
}

func (s *Service) appendPair(ctx context.Context, uow interfaces.UnitOfWork, kind string, pair []models.LedgerEntry) ([]int64, error) {
	if err := validateEntries(pair); err != nil {
		return nil, &PostingFailedError{Kind: kind, Err: err}
	}
	ids, err := uow.AppendEntries(ctx, pair)
	if err != nil {
		return nil, &PostingFailedError{Kind: kind, Err: err}
	}
	return ids, nil
}

func (s *Service) requireStudent(ctx context.Context, uow interfaces.UnitOfWork, studentID int64) error {
	ok, err := uow.StudentExists(ctx, studentID)
	if err != nil {
		return fmt.Errorf("checking student %d: %w", studentID, err)
	}
	if !ok {
		return fmt.Errorf("student %d: %w", studentID, interfaces.ErrNotFound)
	}
	return nil
}

func (s *Service) requireSelection(ctx context.Context, uow interfaces.UnitOfWork, selectionID int64) error {
	ok, err := uow.SelectionExists(ctx, selectionID)
	if err != nil {
		return fmt.Errorf("checking selection %d: %w", selectionID, err)
	}
	if !ok {
		return fmt.Errorf("selection %d: %w", selectionID, interfaces.ErrNotFound)
	}
	return nil
}
