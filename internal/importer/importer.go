package importer

import (
	"errors"
	"time"
)

const (
	// MaxISBNs caps a single import request.
	MaxISBNs = 50
	// BatchSize is how many bibkeys go into one api/books call.
	BatchSize = 20

	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

var (
	ErrNotFound     = errors.New("import run not found")
	ErrNoISBNs      = errors.New("at least one isbn is required")
	ErrTooManyISBNs = errors.New("too many isbns in one import")
	ErrInvalidISBN  = errors.New("invalid isbn")
)

// Run records one catalog import and what it did.
type Run struct {
	ID          string     `json:"id"`
	RequestedBy string     `json:"requested_by"`
	Status      string     `json:"status"`
	Copies      int        `json:"copies"`
	Requested   int        `json:"requested"`
	Found       int        `json:"found"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Missing     []string   `json:"missing"`
	Failed      []string   `json:"failed"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}
