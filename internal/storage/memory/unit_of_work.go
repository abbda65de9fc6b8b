package memory

import (
	"context"

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
)

// Operation names accepted by Store.FailOn.
const (
	OpAppendEntries             = "AppendEntries"
	OpDeleteEntriesBySelection  = "DeleteEntriesBySelection"
	OpDeleteEntriesByStudent    = "DeleteEntriesByStudent"
	OpInsertSelection           = "InsertSelection"
	OpInsertPayment             = "InsertPayment"
	OpDeletePaymentsByStudent   = "DeletePaymentsByStudent"
	OpDeleteSelectionsByStudent = "DeleteSelectionsByStudent"
	OpDeleteSelection           = "DeleteSelection"
	OpDeleteStudent             = "DeleteStudent"
)

// unitOfWork mutates the working copy of the state. The enclosing Atomically
// call holds the store lock and swaps the copy in on success.
type unitOfWork struct {
	store *Store
	state *state
}

func (u *unitOfWork) AppendEntries(ctx context.Context, entries []models.LedgerEntry) ([]int64, error) {
	if err := u.store.takeFailure(OpAppendEntries); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		e.ID = u.state.nextEntryID
		u.state.nextEntryID++
		u.state.entries = append(u.state.entries, e)
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (u *unitOfWork) DeleteEntriesBySelection(ctx context.Context, selectionID int64) (int64, error) {
	if err := u.store.takeFailure(OpDeleteEntriesBySelection); err != nil {
		return 0, err
	}
	return u.deleteEntries(func(e models.LedgerEntry) bool {
		return e.SelectionID == selectionID
	}), nil
}

func (u *unitOfWork) DeleteEntriesByStudent(ctx context.Context, studentID int64) (int64, error) {
	if err := u.store.takeFailure(OpDeleteEntriesByStudent); err != nil {
		return 0, err
	}
	return u.deleteEntries(func(e models.LedgerEntry) bool {
		return e.StudentID == studentID
	}), nil
}

func (u *unitOfWork) deleteEntries(match func(models.LedgerEntry) bool) int64 {
	var removed int64
	kept := u.state.entries[:0]
	for _, e := range u.state.entries {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	u.state.entries = kept
	return removed
}

func (u *unitOfWork) InsertStudent(ctx context.Context, st models.Student) (int64, error) {
	st.ID = u.state.nextStudentID
	u.state.nextStudentID++
	u.state.students[st.ID] = st
	return st.ID, nil
}

func (u *unitOfWork) InsertCourse(ctx context.Context, c models.Course) (int64, error) {
	c.ID = u.state.nextCourseID
	u.state.nextCourseID++
	u.state.courses[c.ID] = c
	return c.ID, nil
}

func (u *unitOfWork) InsertSelection(ctx context.Context, sel models.CourseSelection) (int64, error) {
	if err := u.store.takeFailure(OpInsertSelection); err != nil {
		return 0, err
	}
	sel.ID = u.state.nextSelectionID
	u.state.nextSelectionID++
	u.state.selections[sel.ID] = sel
	return sel.ID, nil
}

func (u *unitOfWork) InsertPayment(ctx context.Context, p models.Payment) (int64, error) {
	if err := u.store.takeFailure(OpInsertPayment); err != nil {
		return 0, err
	}
	p.ID = u.state.nextPaymentID
	u.state.nextPaymentID++
	u.state.payments[p.ID] = p
	return p.ID, nil
}

func (u *unitOfWork) SelectionIDsByStudent(ctx context.Context, studentID int64) ([]int64, error) {
	var ids []int64
	for id, sel := range u.state.selections {
		if sel.StudentID == studentID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (u *unitOfWork) DeletePaymentsByStudent(ctx context.Context, studentID int64) (int64, error) {
	if err := u.store.takeFailure(OpDeletePaymentsByStudent); err != nil {
		return 0, err
	}
	var removed int64
	for id, p := range u.state.payments {
		if p.StudentID == studentID {
			delete(u.state.payments, id)
			removed++
		}
	}
	return removed, nil
}

func (u *unitOfWork) DeleteSelectionsByStudent(ctx context.Context, studentID int64) (int64, error) {
	if err := u.store.takeFailure(OpDeleteSelectionsByStudent); err != nil {
		return 0, err
	}
	var removed int64
	for id, sel := range u.state.selections {
		if sel.StudentID == studentID {
			delete(u.state.selections, id)
			removed++
		}
	}
	return removed, nil
}

func (u *unitOfWork) DeleteSelection(ctx context.Context, selectionID int64) error {
	if err := u.store.takeFailure(OpDeleteSelection); err != nil {
		return err
	}
	if _, ok := u.state.selections[selectionID]; !ok {
		return interfaces.ErrNotFound
	}
	delete(u.state.selections, selectionID)
	return nil
}

func (u *unitOfWork) DeleteStudent(ctx context.Context, studentID int64) error {
	if err := u.store.takeFailure(OpDeleteStudent); err != nil {
		return err
	}
	if _, ok := u.state.students[studentID]; !ok {
		return interfaces.ErrNotFound
	}
	delete(u.state.students, studentID)
	return nil
}

func (u *unitOfWork) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	_, ok := u.state.students[studentID]
	return ok, nil
}

func (u *unitOfWork) SelectionExists(ctx context.Context, selectionID int64) (bool, error) {
	_, ok := u.state.selections[selectionID]
	return ok, nil
}

func (u *unitOfWork) CourseByID(ctx context.Context, courseID int64) (models.Course, error) {
	c, ok := u.state.courses[courseID]
	if !ok {
		return models.Course{}, interfaces.ErrNotFound
	}
	return c, nil
}

func (u *unitOfWork) SelectionByStudentCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	for _, sel := range u.state.selections {
		if sel.StudentID == studentID && sel.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

var _ interfaces.UnitOfWork = (*unitOfWork)(nil)
