package book

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicateISBN is returned when another book already uses the ISBN.
	ErrDuplicateISBN = errors.New("isbn already exists")
	ErrInvalidCopies = errors.New("total copies must be at least 1")
	// ErrCopiesOnLoan blocks deletes and copy reductions that would orphan open loans.
	ErrCopiesOnLoan = errors.New("copies are currently on loan")
)

// Book represents a catalog title and its circulating copies.
type Book struct {
	ID              string    `json:"id"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle,omitempty"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	Description     string    `json:"description,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	PageCount       *int      `json:"page_count,omitempty"`
	Language        string    `json:"language,omitempty"`
	CoverURL        *string   `json:"cover_url,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Query defines filters and pagination for listing books.
type Query struct {
	Genre         string
	Genres        []string
	Author        string
	Publisher     string
	Q             string
	Search        string
	MinRating     *float64
	YearFrom      *int
	YearTo        *int
	Language      string
	AvailableOnly bool
	Sort          string
	Desc          bool
	Limit         int
	Offset        int
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Title           *string
	Subtitle        *string
	Author          *string
	Genre           *string
	Publisher       *string
	Description     *string
	PublicationYear *int
	PageCount       *int
	Language        *string
	CoverURL        *string
	TotalCopies     *int
}

func (p Patch) Empty() bool {
	return p == Patch{}
}
