package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
	"github.com/campusbooks/student-ledger/internal/models/events"
)

// RecordEnrollment enrolls a student in a course and posts the charge in one
// unit of work: a failed posting leaves no selection row and a failed insert
// leaves no entries. The charge amount is the course price at enrollment
// time. Enrolling the same student in the same course twice is rejected.
func (s *Service) RecordEnrollment(ctx context.Context, studentID, courseID int64) (int64, error) {
	var (
		selectionID int64
		entryIDs    []int64
		amount      decimal.Decimal
	)

	err := s.store.Atomically(ctx, func(uow interfaces.UnitOfWork) error {
		dup, err := uow.SelectionByStudentCourse(ctx, studentID, courseID)
		if err != nil {
			return fmt.Errorf("checking existing enrollment: %w", err)
		}
		if dup {
			return &ValidationError{Msg: "student is already enrolled in this course"}
		}

		course, err := uow.CourseByID(ctx, courseID)
		if err != nil {
			return fmt.Errorf("course %d: %w", courseID, err)
		}
		amount = course.Price

		selectionID, err = uow.InsertSelection(ctx, models.CourseSelection{
			StudentID: studentID,
			CourseID:  courseID,
		})
		if err != nil {
			return fmt.Errorf("inserting selection: %w", err)
		}

		entryIDs, err = s.PostEnrollment(ctx, uow, studentID, courseID, selectionID, amount)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.publish(TopicPostings, events.PostingRecorded{
		EventID:     uuid.New().String(),
		Kind:        events.KindEnrollment,
		StudentID:   studentID,
		SelectionID: selectionID,
		Amount:      amount,
		EntryIDs:    entryIDs,
		OccurredAt:  s.now(),
	})
	return selectionID, nil
}

// PaymentResult reports a recorded payment. Overpaid is a warning only: the
// payment succeeded even when it exceeds the balance owed.
type PaymentResult struct {
	PaymentID int64
	Overpaid  bool
}

// RecordPayment inserts the payment row and posts the CASH/AR pair in one
// unit of work. selectionID may be zero when the payment is not tied to a
// specific enrollment.
func (s *Service) RecordPayment(ctx context.Context, studentID int64, amount decimal.Decimal, selectionID int64, reference string) (PaymentResult, error) {
	if amount.Sign() <= 0 {
		return PaymentResult{}, &ValidationError{Msg: "payment amount must be greater than zero"}
	}

	// Balance before the payment, for the overpayment warning. Read outside
	// the unit of work; a concurrent posting can shift it, which only affects
	// the warning, never the posting itself.
	before, err := s.StudentBalance(ctx, studentID)
	if err != nil {
		return PaymentResult{}, err
	}
	overpaid := amount.GreaterThan(before)

	var (
		paymentID int64
		entryIDs  []int64
	)
	err = s.store.Atomically(ctx, func(uow interfaces.UnitOfWork) error {
		paymentID, err = uow.InsertPayment(ctx, models.Payment{
			StudentID:   studentID,
			Amount:      amount,
			PaidAt:      s.now(),
			Reference:   reference,
			SelectionID: selectionID,
		})
		if err != nil {
			return fmt.Errorf("inserting payment: %w", err)
		}

		entryIDs, err = s.PostPayment(ctx, uow, studentID, amount, selectionID)
		return err
	})
	if err != nil {
		return PaymentResult{}, err
	}

	if overpaid {
		s.log.Warn("payment exceeds outstanding balance",
			zap.Int64("student_id", studentID),
			zap.String("amount", amount.StringFixed(2)),
			zap.String("balance_before", before.StringFixed(2)),
		)
	}

	s.publish(TopicPostings, events.PostingRecorded{
		EventID:     uuid.New().String(),
		Kind:        events.KindPayment,
		StudentID:   studentID,
		SelectionID: selectionID,
		Amount:      amount,
		EntryIDs:    entryIDs,
		OccurredAt:  s.now(),
	})
	return PaymentResult{PaymentID: paymentID, Overpaid: overpaid}, nil
}
