package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models/events"
	"github.com/campusbooks/student-ledger/internal/storage/memory"
)

func TestRecordEnrollmentPostsBalancedPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	courseID := f.addCourse(t, "Algorithms", "1000.00")

	selectionID, err := f.svc.RecordEnrollment(ctx, studentID, courseID)
	require.NoError(t, err)
	require.NotZero(t, selectionID)

	entries, err := f.store.EntriesBySelection(ctx, selectionID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	totalDebit := money("0")
	totalCredit := money("0")
	for _, e := range entries {
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
		assert.Equal(t, studentID, e.StudentID)
		assert.Equal(t, courseID, e.CourseID)
		assert.Equal(t, selectionID, e.SelectionID)
	}
	assert.True(t, totalDebit.Equal(money("1000.00")), "debits must equal the course price")
	assert.True(t, totalCredit.Equal(money("1000.00")), "credits must equal the course price")

	byAccount := map[int64]string{}
	for _, e := range entries {
		byAccount[e.AccountID] = e.Description
	}
	assert.Equal(t, "Enrollment charge", byAccount[f.registry.AR()])
	assert.Equal(t, "Tuition revenue", byAccount[f.registry.Revenue()])
}

func TestRecordPaymentPostsBalancedPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	courseID := f.addCourse(t, "Algorithms", "1000.00")
	selectionID, err := f.svc.RecordEnrollment(ctx, studentID, courseID)
	require.NoError(t, err)

	result, err := f.svc.RecordPayment(ctx, studentID, money("400.00"), selectionID, "rcpt-1")
	require.NoError(t, err)
	assert.NotZero(t, result.PaymentID)
	assert.False(t, result.Overpaid)

	entries, err := f.store.EntriesByStudent(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, entries, 4) // enrollment pair + payment pair

	var cashDebit, arCredit int
	for _, e := range entries {
		switch {
		case e.AccountID == f.registry.Cash() && e.Debit.Equal(money("400.00")):
			cashDebit++
			assert.Equal(t, selectionID, e.SelectionID)
			assert.Equal(t, "Student payment", e.Description)
		case e.AccountID == f.registry.AR() && e.Credit.Equal(money("400.00")):
			arCredit++
			// The AR credit correlates to the student only.
			assert.Zero(t, e.SelectionID)
			assert.Equal(t, "Payment applied to account", e.Description)
		}
	}
	assert.Equal(t, 1, cashDebit)
	assert.Equal(t, 1, arCredit)
}

func TestPostPaymentRejectsNonPositiveAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	studentID := f.addStudent(t, "Ada")

	for _, amount := range []string{"0", "-1.00"} {
		_, err := f.svc.RecordPayment(ctx, studentID, money(amount), 0, "")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "amount %s must be rejected", amount)
	}

	entries, err := f.store.EntriesByStudent(ctx, studentID)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected payments must not write entries")
}

func TestPostEnrollmentRejectsNegativeAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	courseID := f.addCourse(t, "Algorithms", "100.00")
	selectionID, err := f.svc.RecordEnrollment(ctx, studentID, courseID)
	require.NoError(t, err)

	err = f.store.Atomically(ctx, func(uow interfaces.UnitOfWork) error {
		_, err := f.svc.PostEnrollment(ctx, uow, studentID, courseID, selectionID, money("-5.00"))
		return err
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestZeroPriceEnrollmentPostsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	courseID := f.addCourse(t, "Open Seminar", "0")

	selectionID, err := f.svc.RecordEnrollment(ctx, studentID, courseID)
	require.NoError(t, err)

	entries, err := f.store.EntriesBySelection(ctx, selectionID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostingUnknownStudentFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPayment(ctx, 999, money("10.00"), 0, "")
	require.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestDuplicateEnrollmentRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	courseID := f.addCourse(t, "Algorithms", "100.00")

	_, err := f.svc.RecordEnrollment(ctx, studentID, courseID)
	require.NoError(t, err)

	_, err = f.svc.RecordEnrollment(ctx, studentID, courseID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestFailedAppendRollsBackPaymentRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	courseID := f.addCourse(t, "Algorithms", "1000.00")
	_, err := f.svc.RecordEnrollment(ctx, studentID, courseID)
	require.NoError(t, err)

	boom := errors.New("disk full")
	f.store.FailOn(memory.OpAppendEntries, boom)

	_, err = f.svc.RecordPayment(ctx, studentID, money("400.00"), 0, "")
	var perr *PostingFailedError
	require.ErrorAs(t, err, &perr)
	require.ErrorIs(t, err, boom)

	// The payment row vanished with the rollback and no entries were added.
	payments, err := f.store.PaymentsByStudent(ctx, studentID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	balance, err := f.svc.StudentBalance(ctx, studentID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(money("1000.00")), "balance unchanged, got %s", balance)
}

func TestFailedSelectionInsertLeavesNoEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	courseID := f.addCourse(t, "Algorithms", "1000.00")

	f.store.FailOn(memory.OpInsertSelection, errors.New("constraint violation"))

	_, err := f.svc.RecordEnrollment(ctx, studentID, courseID)
	require.Error(t, err)

	entries, err := f.store.EntriesByStudent(ctx, studentID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostingEventsPublishedAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	courseID := f.addCourse(t, "Algorithms", "1000.00")

	selectionID, err := f.svc.RecordEnrollment(ctx, studentID, courseID)
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, studentID, money("400.00"), 0, "")
	require.NoError(t, err)

	require.Len(t, f.events.events, 2)
	assert.Equal(t, []string{TopicPostings, TopicPostings}, f.events.topics)

	enrollment, ok := f.events.events[0].(events.PostingRecorded)
	require.True(t, ok)
	assert.Equal(t, events.KindEnrollment, enrollment.Kind)
	assert.Equal(t, studentID, enrollment.StudentID)
	assert.Equal(t, selectionID, enrollment.SelectionID)
	assert.Len(t, enrollment.EntryIDs, 2)
	assert.NotEmpty(t, enrollment.EventID)

	payment, ok := f.events.events[1].(events.PostingRecorded)
	require.True(t, ok)
	assert.Equal(t, events.KindPayment, payment.Kind)
	assert.True(t, payment.Amount.Equal(money("400.00")))
}

func TestNoEventPublishedOnFailedPosting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	studentID := f.addStudent(t, "Ada")
	f.store.FailOn(memory.OpAppendEntries, errors.New("broken"))

	_, err := f.svc.RecordPayment(ctx, studentID, money("10.00"), 0, "")
	require.Error(t, err)
	assert.Empty(t, f.events.events)
}
