package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"libralink/internal/analytics"
	"libralink/internal/book"
	"libralink/internal/loan"
)

const (
	searchLimit   = 5
	topBooksLimit = 5
	blurbRunes    = 300
)

type Catalog interface {
	List(ctx context.Context, q book.Query) ([]book.Book, int, error)
	GetByISBN(ctx context.Context, isbn string) (book.Book, error)
}

type Circulation interface {
	IsBookAvailable(ctx context.Context, bookID string) (loan.Availability, error)
	ListUserLoans(ctx context.Context, userID string, activeOnly bool) ([]loan.Loan, error)
	FeeSummary(ctx context.Context, userID string) (loan.FeeReport, error)
}

type Rankings interface {
	TopBooks(ctx context.Context, limit int) ([]analytics.TopBook, error)
}

// Tools runs assistant commands against the library services on behalf of
// one member.
type Tools struct {
	catalog     Catalog
	circulation Circulation
	rankings    Rankings
	now         func() time.Time
}

func NewTools(catalog Catalog, circulation Circulation, rankings Rankings) *Tools {
	return &Tools{catalog: catalog, circulation: circulation, rankings: rankings, now: time.Now}
}

// Run executes cmd and returns its text output.
func (t *Tools) Run(ctx context.Context, userID string, cmd Command) (string, error) {
	switch cmd.Name {
	case CmdSearch:
		if cmd.Argument == "" {
			return "", errors.New("SEARCH needs search text")
		}
		return t.search(ctx, cmd.Argument)
	case CmdBook:
		if cmd.Argument == "" {
			return "", errors.New("BOOK needs an ISBN")
		}
		return t.book(ctx, cmd.Argument)
	case CmdAvailable:
		if cmd.Argument == "" {
			return "", errors.New("AVAILABLE needs an ISBN")
		}
		return t.available(ctx, cmd.Argument)
	case CmdMyLoans:
		return t.myLoans(ctx, userID)
	case CmdMyFees:
		return t.myFees(ctx, userID)
	case CmdTopBooks:
		return t.topBooks(ctx)
	}
	return "", fmt.Errorf("unknown command %s", cmd.Name)
}

func (t *Tools) lookup(ctx context.Context, isbn string) (book.Book, error) {
	b, err := t.catalog.GetByISBN(ctx, isbn)
	if errors.Is(err, book.ErrNotFound) {
		return book.Book{}, fmt.Errorf("no book with ISBN %s", isbn)
	}
	return b, err
}

func (t *Tools) search(ctx context.Context, q string) (string, error) {
	books, total, err := t.catalog.List(ctx, book.Query{Q: q, Limit: searchLimit})
	if err != nil {
		return "", err
	}
	if len(books) == 0 {
		return fmt.Sprintf("no books matched %q", q), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d match(es), showing %d:", total, len(books))
	for _, b := range books {
		fmt.Fprintf(&sb, "\n- %s by %s (ISBN %s), %d of %d copies available",
			b.Title, b.Author, b.ISBN, b.AvailableCopies, b.TotalCopies)
	}
	return sb.String(), nil
}

func (t *Tools) book(ctx context.Context, isbn string) (string, error) {
	b, err := t.lookup(ctx, isbn)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s by %s (ISBN %s)", b.Title, b.Author, b.ISBN)
	if b.Genre != "" {
		fmt.Fprintf(&sb, "\ngenre: %s", b.Genre)
	}
	if b.PublicationYear != nil {
		fmt.Fprintf(&sb, "\npublished: %d", *b.PublicationYear)
	}
	fmt.Fprintf(&sb, "\ncopies: %d of %d available", b.AvailableCopies, b.TotalCopies)
	if b.Description != "" {
		fmt.Fprintf(&sb, "\nabout: %s", truncateRunes(b.Description, blurbRunes))
	}
	return sb.String(), nil
}

func (t *Tools) available(ctx context.Context, isbn string) (string, error) {
	b, err := t.lookup(ctx, isbn)
	if err != nil {
		return "", err
	}
	a, err := t.circulation.IsBookAvailable(ctx, b.ID)
	if err != nil {
		return "", err
	}
	if !a.Available {
		return fmt.Sprintf("%s: all %d copies are on loan", b.Title, a.TotalCopies), nil
	}
	return fmt.Sprintf("%s: %d of %d copies available", b.Title, a.AvailableCopies, a.TotalCopies), nil
}

func (t *Tools) myLoans(ctx context.Context, userID string) (string, error) {
	loans, err := t.circulation.ListUserLoans(ctx, userID, true)
	if err != nil {
		return "", err
	}
	if len(loans) == 0 {
		return "no active loans", nil
	}
	now := t.now().UTC()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d active loan(s):", len(loans))
	for _, l := range loans {
		title := l.BookTitle
		if title == "" {
			title = l.BookID
		}
		fmt.Fprintf(&sb, "\n- %s, due %s, renewed %d time(s)", title, l.DueAt.Format("2006-01-02"), l.Renewals)
		if l.OverdueAt(now) {
			sb.WriteString(" (overdue)")
		}
	}
	return sb.String(), nil
}

func (t *Tools) myFees(ctx context.Context, userID string) (string, error) {
	report, err := t.circulation.FeeSummary(ctx, userID)
	if err != nil {
		return "", err
	}
	if report.TotalCents == 0 {
		return "no late fees", nil
	}
	return fmt.Sprintf("total %s: %s from returned books, %s still accruing on overdue loans",
		dollars(report.TotalCents), dollars(report.SettledCents), dollars(report.AccruingCents)), nil
}

func (t *Tools) topBooks(ctx context.Context) (string, error) {
	books, err := t.rankings.TopBooks(ctx, topBooksLimit)
	if err != nil {
		return "", err
	}
	if len(books) == 0 {
		return "no loans recorded yet", nil
	}
	var sb strings.Builder
	for i, b := range books {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s by %s, issued %d time(s)", i+1, b.Title, b.Author, b.Issues)
	}
	return sb.String(), nil
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
