package loan

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Service struct {
	repo   Repository
	policy Policy
	now    func() time.Time
}

func NewService(repo Repository, policy Policy) *Service {
	return &Service{repo: repo, policy: policy, now: time.Now}
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) IsBookAvailable(ctx context.Context, bookID string) (Availability, error) {
	total, active, err := s.repo.Availability(ctx, bookID)
	if err != nil {
		return Availability{}, err
	}
	free := total - active
	if free < 0 {
		free = 0
	}
	return Availability{
		BookID:          bookID,
		Available:       free > 0,
		AvailableCopies: free,
		TotalCopies:     total,
	}, nil
}

func (s *Service) Issue(ctx context.Context, userID, bookID string) (Loan, error) {
	now := s.now().UTC()
	return s.repo.Issue(ctx, userID, bookID, func(st IssueState) (Loan, error) {
		switch {
		case st.UserHasOpenLoan:
			return Loan{}, ErrAlreadyIssued
		case st.TotalCopies-st.ActiveLoans <= 0:
			return Loan{}, ErrNoCopiesAvailable
		case s.policy.MaxActiveLoans > 0 && st.UserActiveLoans >= s.policy.MaxActiveLoans:
			return Loan{}, ErrLoanLimitReached
		}
		return Loan{
			UserID:   userID,
			BookID:   bookID,
			IssuedAt: now,
			DueAt:    now.Add(s.policy.LoanPeriod),
		}, nil
	})
}

// Return closes the caller's open loan and settles its late fee.
func (s *Service) Return(ctx context.Context, userID, bookID string) (Loan, error) {
	now := s.now().UTC()
	return s.repo.Return(ctx, userID, bookID, func(l Loan) (Loan, error) {
		l.ReturnedAt = &now
		l.LateFeeCents = int64(OverdueDays(now, l.DueAt)) * s.policy.FinePerDayCents
		return l, nil
	})
}

// Renew pushes the due date out by one loan period from the current due date.
func (s *Service) Renew(ctx context.Context, userID, bookID string) (Loan, error) {
	now := s.now().UTC()
	return s.repo.Renew(ctx, userID, bookID, now, func(l Loan) (Loan, error) {
		if l.Renewals >= s.policy.MaxRenewals {
			return Loan{}, ErrRenewalLimit
		}
		if l.OverdueAt(now) {
			return Loan{}, ErrOverdue
		}
		l.DueAt = l.DueAt.Add(s.policy.LoanPeriod)
		l.Renewals++
		return l, nil
	})
}

func (s *Service) ListUserLoans(ctx context.Context, userID string, activeOnly bool) ([]Loan, error) {
	return s.repo.ListByUser(ctx, userID, activeOnly)
}

func (s *Service) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, int, error) {
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}

func (s *Service) ListOverdue(ctx context.Context, limit, offset int) ([]Loan, int, error) {
	return s.repo.ListOverdue(ctx, s.now().UTC(), limit, offset)
}

// FeeSummary replays the user's whole ledger through ComputeFees.
func (s *Service) FeeSummary(ctx context.Context, userID string) (FeeReport, error) {
	txns, err := s.repo.AllTransactions(ctx, userID)
	if err != nil {
		return FeeReport{}, fmt.Errorf("load ledger: %w", err)
	}
	return ComputeFees(txns, s.now().UTC(), s.policy), nil
}

// IsConflict reports whether err is a circulation rule violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNoCopiesAvailable) ||
		errors.Is(err, ErrAlreadyIssued) ||
		errors.Is(err, ErrLoanLimitReached) ||
		errors.Is(err, ErrRenewalLimit) ||
		errors.Is(err, ErrOverdue)
}
