package sqlite

import (
	"context"
	"database/sql"

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
)

type unitOfWork struct {
	tx *sql.Tx
}

func (u *unitOfWork) AppendEntries(ctx context.Context, entries []models.LedgerEntry) ([]int64, error) {
	const query = `INSERT INTO ledger_entries (txn_date, account_id, debit, credit, student_id, course_id, selection_id, description)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		res, err := u.tx.ExecContext(ctx, query,
			e.TxnDate, e.AccountID, e.Debit, e.Credit,
			nullableID(e.StudentID), nullableID(e.CourseID), nullableID(e.SelectionID),
			e.Description,
		)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (u *unitOfWork) DeleteEntriesBySelection(ctx context.Context, selectionID int64) (int64, error) {
	return u.execCount(ctx, `DELETE FROM ledger_entries WHERE selection_id = ?`, selectionID)
}

func (u *unitOfWork) DeleteEntriesByStudent(ctx context.Context, studentID int64) (int64, error) {
	return u.execCount(ctx, `DELETE FROM ledger_entries WHERE student_id = ?`, studentID)
}

func (u *unitOfWork) InsertStudent(ctx context.Context, st models.Student) (int64, error) {
	return u.execID(ctx, `INSERT INTO students (name, age) VALUES (?, ?)`, st.Name, st.Age)
}

func (u *unitOfWork) InsertCourse(ctx context.Context, c models.Course) (int64, error) {
	return u.execID(ctx, `INSERT INTO courses (name, price) VALUES (?, ?)`, c.Name, c.Price)
}

func (u *unitOfWork) InsertSelection(ctx context.Context, sel models.CourseSelection) (int64, error) {
	return u.execID(ctx, `INSERT INTO course_selections (student_id, course_id) VALUES (?, ?)`,
		sel.StudentID, sel.CourseID)
}

func (u *unitOfWork) InsertPayment(ctx context.Context, p models.Payment) (int64, error) {
	return u.execID(ctx, `INSERT INTO payments (student_id, amount, paid_at, reference, selection_id) VALUES (?, ?, ?, ?, ?)`,
		p.StudentID, p.Amount, p.PaidAt, p.Reference, nullableID(p.SelectionID))
}

func (u *unitOfWork) SelectionIDsByStudent(ctx context.Context, studentID int64) ([]int64, error) {
	rows, err := u.tx.QueryContext(ctx, `SELECT id FROM course_selections WHERE student_id = ? ORDER BY id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (u *unitOfWork) DeletePaymentsByStudent(ctx context.Context, studentID int64) (int64, error) {
	return u.execCount(ctx, `DELETE FROM payments WHERE student_id = ?`, studentID)
}

func (u *unitOfWork) DeleteSelectionsByStudent(ctx context.Context, studentID int64) (int64, error) {
	return u.execCount(ctx, `DELETE FROM course_selections WHERE student_id = ?`, studentID)
}

func (u *unitOfWork) DeleteSelection(ctx context.Context, selectionID int64) error {
	n, err := u.execCount(ctx, `DELETE FROM course_selections WHERE id = ?`, selectionID)
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (u *unitOfWork) DeleteStudent(ctx context.Context, studentID int64) error {
	n, err := u.execCount(ctx, `DELETE FROM students WHERE id = ?`, studentID)
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (u *unitOfWork) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	return u.exists(ctx, `SELECT 1 FROM students WHERE id = ?`, studentID)
}

func (u *unitOfWork) SelectionExists(ctx context.Context, selectionID int64) (bool, error) {
	return u.exists(ctx, `SELECT 1 FROM course_selections WHERE id = ?`, selectionID)
}

func (u *unitOfWork) CourseByID(ctx context.Context, courseID int64) (models.Course, error) {
	var c models.Course
	err := u.tx.QueryRowContext(ctx, `SELECT id, name, price FROM courses WHERE id = ?`, courseID).
		Scan(&c.ID, &c.Name, &c.Price)
	if err == sql.ErrNoRows {
		return models.Course{}, interfaces.ErrNotFound
	}
	if err != nil {
		return models.Course{}, err
	}
	return c, nil
}

func (u *unitOfWork) SelectionByStudentCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	return u.exists(ctx, `SELECT 1 FROM course_selections WHERE student_id = ? AND course_id = ?`, studentID, courseID)
}

func (u *unitOfWork) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := u.tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (u *unitOfWork) execID(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := u.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (u *unitOfWork) execCount(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := u.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ interfaces.UnitOfWork = (*unitOfWork)(nil)
