package ledger

import "fmt"

// ValidationError rejects a request before any write is attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PostingFailedError means the atomic append of a balanced pair did not
// complete. The enclosing unit of work must roll back entirely.
type PostingFailedError struct {
	Kind string // "enrollment" or "payment"
	Err  error
}

func (e *PostingFailedError) Error() string {
	return fmt.Sprintf("%s posting failed: %v", e.Kind, e.Err)
}

func (e *PostingFailedError) Unwrap() error { return e.Err }

// CascadeFailedError means a step of a deletion cascade failed. The whole
// cascade is rolled back; the original rows remain intact.
type CascadeFailedError struct {
	Step string
	Err  error
}

func (e *CascadeFailedError) Error() string {
	return fmt.Sprintf("cascade failed at %s: %v", e.Step, e.Err)
}

func (e *CascadeFailedError) Unwrap() error { return e.Err }
