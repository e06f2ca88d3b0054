package profile

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"
)

type Service struct {
	users     UserService
	loans     LoanService
	ratings   RatingService
	bookmarks BookmarkService
}

func NewService(users UserService, loans LoanService, ratings RatingService, bookmarks BookmarkService) *Service {
	return &Service{
		users:     users,
		loans:     loans,
		ratings:   ratings,
		bookmarks: bookmarks,
	}
}

func (s *Service) GetOwnProfile(ctx context.Context, userID string) (Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	stats, err := s.computeStats(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	fees, err := s.loans.FeeSummary(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	stats.OutstandingFeesCents = fees.TotalCents

	return Profile{
		User:  u,
		Stats: stats,
	}, nil
}

// GetPublicProfile returns user.ErrNotFound for private profiles. Contact
// details and fees are left out.
func (s *Service) GetPublicProfile(ctx context.Context, userID string) (Profile, error) {
	u, err := s.users.GetPublicProfile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	u.Email = ""
	u.LastLoginAt = nil

	stats, err := s.computeStats(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	return Profile{
		User:  u,
		Stats: stats,
	}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, cmd UpdateCommand) (Profile, error) {
	updates := cmd.ToMap()

	if username, ok := updates["username"].(string); ok {
		username = strings.TrimSpace(username)
		if utf8.RuneCountInString(username) < 3 {
			return Profile{}, ErrUsernameTooShort
		}
		updates["username"] = username
	}

	if website, ok := updates["website"].(string); ok && website != "" {
		u, err := url.ParseRequestURI(website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Profile{}, ErrInvalidWebsite
		}
	}

	if len(updates) > 0 {
		if err := s.users.UpdateProfile(ctx, userID, updates); err != nil {
			return Profile{}, err
		}
	}

	return s.GetOwnProfile(ctx, userID)
}

func (s *Service) computeStats(ctx context.Context, userID string) (Stats, error) {
	loans, err := s.loans.ListUserLoans(ctx, userID, false)
	if err != nil {
		return Stats{}, err
	}
	borrowed := map[string]struct{}{}
	current := 0
	for _, l := range loans {
		borrowed[l.BookID] = struct{}{}
		if l.Open() {
			current++
		}
	}

	bookmarks, err := s.bookmarks.Count(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	ratings, err := s.ratings.GetUserRatingStats(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		BooksBorrowed:   len(borrowed),
		CurrentlyIssued: current,
		Bookmarks:       bookmarks,
		RatingsCount:    ratings.RatingsCount,
		AverageRating:   ratings.AverageRating,
	}, nil
}
