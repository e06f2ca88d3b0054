package analytics

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("value out of range")

const (
	MaxTrendDays   = 90
	MaxTopBooks    = 50
	OverviewTTL    = 60 * time.Second
	overviewKey    = "overview"
	trendDayLayout = "2006-01-02"
)

type Overview struct {
	TotalBooks      int       `json:"total_books"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	TotalUsers      int       `json:"total_users"`
	ActiveLoans     int       `json:"active_loans"`
	OverdueLoans    int       `json:"overdue_loans"`
	TotalDocuments  int       `json:"total_documents"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// DailyCount is one UTC day of circulation activity.
type DailyCount struct {
	Day      string `json:"day"`
	Issues   int    `json:"issues"`
	Returns  int    `json:"returns"`
	Renewals int    `json:"renewals"`
}

type TopBook struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Issues int    `json:"issues"`
}

type GenreCount struct {
	Genre  string `json:"genre"`
	Books  int    `json:"books"`
	Issues int    `json:"issues"`
}
