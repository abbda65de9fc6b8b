package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models/events"
)

// RemoveLedgerForSelection deletes every ledger entry correlated to the
// selection. Runs inside the caller's unit of work so the selection-row
// delete and the ledger cleanup commit together.
func (s *Service) RemoveLedgerForSelection(ctx context.Context, uow interfaces.UnitOfWork, selectionID int64) (int64, error) {
	n, err := uow.DeleteEntriesBySelection(ctx, selectionID)
	if err != nil {
		return 0, &CascadeFailedError{Step: "delete entries by selection", Err: err}
	}
	return n, nil
}

// RemoveLedgerForStudent deletes every ledger entry correlated to the student
// directly. Entries correlated only through a selection are removed by the
// selection-scoped cleanup first.
func (s *Service) RemoveLedgerForStudent(ctx context.Context, uow interfaces.UnitOfWork, studentID int64) (int64, error) {
	n, err := uow.DeleteEntriesByStudent(ctx, studentID)
	if err != nil {
		return 0, &CascadeFailedError{Step: "delete entries by student", Err: err}
	}
	return n, nil
}

// DeleteSelection removes an enrollment and its correlated ledger entries in
// one unit of work.
func (s *Service) DeleteSelection(ctx context.Context, selectionID int64) error {
	var removed int64
	err := s.store.Atomically(ctx, func(uow interfaces.UnitOfWork) error {
		ok, err := uow.SelectionExists(ctx, selectionID)
		if err != nil {
			return &CascadeFailedError{Step: "lookup selection", Err: err}
		}
		if !ok {
			return fmt.Errorf("selection %d: %w", selectionID, interfaces.ErrNotFound)
		}

		if removed, err = s.RemoveLedgerForSelection(ctx, uow, selectionID); err != nil {
			return err
		}
		if err := uow.DeleteSelection(ctx, selectionID); err != nil {
			return &CascadeFailedError{Step: "delete selection", Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("enrollment deleted",
		zap.Int64("selection_id", selectionID),
		zap.Int64("entries_removed", removed),
	)
	s.publish(TopicCascades, events.CascadeCompleted{
		EventID:        uuid.New().String(),
		SelectionID:    selectionID,
		EntriesRemoved: removed,
		OccurredAt:     s.now(),
	})
	return nil
}

// DeleteStudent removes a student and everything that financially correlates
// to them, children before parents, in one unit of work: ledger entries for
// the student's selections, ledger entries referencing the student directly,
// payments, selections, then the student row. Any failure rolls the whole
// cascade back.
func (s *Service) DeleteStudent(ctx context.Context, studentID int64) error {
	var removed int64
	err := s.store.Atomically(ctx, func(uow interfaces.UnitOfWork) error {
		ok, err := uow.StudentExists(ctx, studentID)
		if err != nil {
			return &CascadeFailedError{Step: "lookup student", Err: err}
		}
		if !ok {
			return fmt.Errorf("student %d: %w", studentID, interfaces.ErrNotFound)
		}

		// Collect affected selections first, then delete in dependency order.
		selectionIDs, err := uow.SelectionIDsByStudent(ctx, studentID)
		if err != nil {
			return &CascadeFailedError{Step: "collect selections", Err: err}
		}

		for _, selID := range selectionIDs {
			n, err := s.RemoveLedgerForSelection(ctx, uow, selID)
			if err != nil {
				return err
			}
			removed += n
		}

		n, err := s.RemoveLedgerForStudent(ctx, uow, studentID)
		if err != nil {
			return err
		}
		removed += n

		if _, err := uow.DeletePaymentsByStudent(ctx, studentID); err != nil {
			return &CascadeFailedError{Step: "delete payments", Err: err}
		}
		if _, err := uow.DeleteSelectionsByStudent(ctx, studentID); err != nil {
			return &CascadeFailedError{Step: "delete selections", Err: err}
		}
		if err := uow.DeleteStudent(ctx, studentID); err != nil {
			return &CascadeFailedError{Step: "delete student", Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("student deleted",
		zap.Int64("student_id", studentID),
		zap.Int64("entries_removed", removed),
	)
	s.publish(TopicCascades, events.CascadeCompleted{
		EventID:        uuid.New().String(),
		StudentID:      studentID,
		EntriesRemoved: removed,
		OccurredAt:     s.now(),
	})
	return nil
}
