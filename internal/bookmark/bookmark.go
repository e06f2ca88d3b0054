package bookmark

import (
	"errors"
	"time"

	"libralink/internal/book"
)

var (
	ErrNotFound     = errors.New("bookmark not found")
	ErrBookNotFound = errors.New("book not found")
)

// Item is a bookmarked book together with when it was saved.
type Item struct {
	book.Book
	BookmarkedAt time.Time `json:"bookmarked_at"`
}
