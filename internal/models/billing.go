package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is a billing party. Ledger entries correlate to it by id.
type Student struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age,omitempty"`
}

// Course is a billable offering with a fixed price.
type Course struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CourseSelection is one student's enrollment in one course. Creating one
// triggers the enrollment charge posting.
type CourseSelection struct {
	ID        int64 `json:"id"`
	StudentID int64 `json:"student_id"`
	CourseID  int64 `json:"course_id"`
}

// Payment records money received from a student. Creating one triggers the
// payment posting.
type Payment struct {
	ID          int64           `json:"id"`
	StudentID   int64           `json:"student_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAt      time.Time       `json:"paid_at"`
	Reference   string          `json:"reference,omitempty"`
	SelectionID int64           `json:"selection_id,omitempty"`
}
