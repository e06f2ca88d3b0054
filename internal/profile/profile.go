package profile

import (
	"errors"

	"libralink/internal/user"
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrInvalidWebsite   = errors.New("invalid website URL")
)

type Stats struct {
	BooksBorrowed        int     `json:"books_borrowed"`
	CurrentlyIssued      int     `json:"currently_issued"`
	Bookmarks            int     `json:"bookmarks"`
	RatingsCount         int     `json:"ratings_count"`
	AverageRating        float64 `json:"average_rating"`
	OutstandingFeesCents int64   `json:"outstanding_fees_cents,omitempty"`
}

type Profile struct {
	User  user.User `json:"user"`
	Stats Stats     `json:"stats"`
}

type UpdateCommand struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Website  *string `json:"website"`
	IsPublic *bool   `json:"is_public"`
}

func (c *UpdateCommand) ToMap() map[string]any {
	updates := make(map[string]any)
	if c.Username != nil {
		updates["username"] = *c.Username
	}
	if c.Bio != nil {
		updates["bio"] = *c.Bio
	}
	if c.Location != nil {
		updates["location"] = *c.Location
	}
	if c.Website != nil {
		updates["website"] = *c.Website
	}
	if c.IsPublic != nil {
		updates["is_public"] = *c.IsPublic
	}
	return updates
}
