package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting kinds carried by PostingRecorded events.
const (
	KindEnrollment = "enrollment"
	KindPayment    = "payment"
)

// PostingRecorded is published after a balanced pair has been committed.
type PostingRecorded struct {
	EventID     string          `json:"event_id"`
	Kind        string          `json:"kind"`
	StudentID   int64           `json:"student_id"`
	SelectionID int64           `json:"selection_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	EntryIDs    []int64         `json:"entry_ids"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// CascadeCompleted is published after a deletion cascade has been committed.
type CascadeCompleted struct {
	EventID        string    `json:"event_id"`
	StudentID      int64     `json:"student_id,omitempty"`
	SelectionID    int64     `json:"selection_id,omitempty"`
	EntriesRemoved int64     `json:"entries_removed"`
	OccurredAt     time.Time `json:"occurred_at"`
}
