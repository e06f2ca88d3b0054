package loan

import (
	"errors"
	"time"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrNoCopiesAvailable = errors.New("no copies available")
	ErrAlreadyIssued     = errors.New("book already issued to this user")
	ErrLoanLimitReached  = errors.New("active loan limit reached")
	ErrNoActiveLoan      = errors.New("no active loan for this book")
	ErrRenewalLimit      = errors.New("renewal limit reached")
	ErrOverdue           = errors.New("overdue loans cannot be renewed")
)

type TxType string

const (
	TxIssue  TxType = "ISSUE"
	TxRenew  TxType = "RENEW"
	TxReturn TxType = "RETURN"
)

// Policy holds the circulation rules.
type Policy struct {
	LoanPeriod      time.Duration
	MaxRenewals     int
	MaxActiveLoans  int
	FinePerDayCents int64
}

type Loan struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	BookID       string     `json:"book_id"`
	BookTitle    string     `json:"book_title,omitempty"`
	BookISBN     string     `json:"book_isbn,omitempty"`
	IssuedAt     time.Time  `json:"issued_at"`
	DueAt        time.Time  `json:"due_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	Renewals     int        `json:"renewals"`
	LateFeeCents int64      `json:"late_fee_cents"`
}

func (l Loan) Open() bool {
	return l.ReturnedAt == nil
}

func (l Loan) OverdueAt(now time.Time) bool {
	return l.Open() && now.After(l.DueAt)
}

// Transaction is one row of the append-only circulation ledger. DueAt is the
// due date in force after the event.
type Transaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	LoanID     string    `json:"loan_id"`
	Type       TxType    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	DueAt      time.Time `json:"due_at"`
}

type Availability struct {
	BookID          string `json:"book_id"`
	Available       bool   `json:"available"`
	AvailableCopies int    `json:"available_copies"`
	TotalCopies     int    `json:"total_copies"`
}

// IssueState is the locked snapshot the repository hands to the issue rule.
type IssueState struct {
	TotalCopies     int
	ActiveLoans     int
	UserHasOpenLoan bool
	UserActiveLoans int
}
