package rating

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("rating not found")
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidStar  = errors.New("rating must be between 1 and 5")
)

const MaxReviewLength = 2000

type Rating struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	BookID    string    `json:"book_id"`
	Star      int       `json:"star"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Summary struct {
	BookID        string  `json:"book_id"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}

type UserStats struct {
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}
