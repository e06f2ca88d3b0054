package importer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"libralink/internal/book"
	"libralink/internal/httpx"
	"libralink/internal/platform/openlibrary"
)

const maxGenreRunes = 64

var yearPattern = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)

type Service struct {
	olClient OpenLibraryClient
	books    Books
	repo     Repository
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(olClient OpenLibraryClient, books Books, repo Repository, logger *zap.Logger) *Service {
	return &Service{
		olClient: olClient,
		books:    books,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

// Import hydrates isbns from Open Library and upserts them into the catalog.
// New books get copies circulating copies; existing books keep theirs. The
// returned run is non-nil whenever a run row was recorded, even on failure.
func (s *Service) Import(ctx context.Context, actorID string, isbns []string, copies int) (run *Run, err error) {
	normalized, err := normalizeISBNs(isbns)
	if err != nil {
		return nil, err
	}
	if copies < 1 {
		copies = 1
	}

	run = &Run{
		RequestedBy: actorID,
		Status:      StatusRunning,
		Copies:      copies,
		Requested:   len(normalized),
		Missing:     []string{},
		Failed:      []string{},
		StartedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create import run: %w", err)
	}

	defer func() {
		finished := s.now().UTC()
		run.FinishedAt = &finished
		if err != nil && run.Error == "" {
			run.Error = err.Error()
		}
		if run.Error != "" {
			run.Status = StatusFailed
		} else {
			run.Status = StatusCompleted
		}
		// The request context may already be gone; the run row still needs closing.
		if updateErr := s.repo.FinishRun(context.WithoutCancel(ctx), run); updateErr != nil {
			s.logger.Error("failed to update import run", zap.String("run_id", run.ID), zap.Error(updateErr))
		}
	}()

	for start := 0; start < len(normalized); start += BatchSize {
		end := min(start+BatchSize, len(normalized))
		if err := s.importBatch(ctx, run, normalized[start:end]); err != nil {
			run.Error = fmt.Sprintf("open library lookup failed: %v", err)
			return run, err
		}
	}

	s.logger.Info("catalog import finished",
		zap.String("run_id", run.ID),
		zap.Int("requested", run.Requested),
		zap.Int("created", run.Created),
		zap.Int("updated", run.Updated),
		zap.Int("missing", len(run.Missing)),
	)
	return run, nil
}

func (s *Service) importBatch(ctx context.Context, run *Run, isbns []string) error {
	details, err := s.olClient.GetBooksByISBN(ctx, isbns)
	if err != nil {
		return err
	}

	for _, isbn := range isbns {
		d, ok := details[isbn]
		if !ok || strings.TrimSpace(d.Title) == "" {
			run.Missing = append(run.Missing, isbn)
			continue
		}
		run.Found++

		b := toBook(isbn, d, run.Copies)
		inserted, err := s.books.UpsertByISBN(ctx, b)
		if err != nil {
			s.logger.Warn("failed to upsert imported book", zap.String("isbn", isbn), zap.Error(err))
			run.Failed = append(run.Failed, isbn)
			continue
		}
		if inserted {
			run.Created++
		} else {
			run.Updated++
		}
	}
	return nil
}

func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	return s.repo.GetRun(ctx, id)
}

// normalizeISBNs validates and de-duplicates the request, keeping first-seen order.
func normalizeISBNs(isbns []string) ([]string, error) {
	seen := make(map[string]bool, len(isbns))
	out := make([]string, 0, len(isbns))
	for _, raw := range isbns {
		isbn := httpx.NormalizeISBN(raw)
		if !httpx.IsValidISBN(isbn) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidISBN, raw)
		}
		if seen[isbn] {
			continue
		}
		seen[isbn] = true
		out = append(out, isbn)
	}
	if len(out) == 0 {
		return nil, ErrNoISBNs
	}
	if len(out) > MaxISBNs {
		return nil, ErrTooManyISBNs
	}
	return out, nil
}

func toBook(isbn string, d openlibrary.BookDetails, copies int) *book.Book {
	b := &book.Book{
		ISBN:        isbn,
		Title:       strings.TrimSpace(d.Title),
		Subtitle:    strings.TrimSpace(d.Subtitle),
		Author:      joinNames(d.Authors),
		Publisher:   joinNames(d.Publishers),
		Description: d.NotesText(),
		TotalCopies: copies,
	}
	if b.Author == "" {
		b.Author = "Unknown"
	}
	if len(d.Subjects) > 0 {
		b.Genre = truncate(d.Subjects[0].Name, maxGenreRunes)
	}
	if d.NumberOfPages > 0 {
		pages := d.NumberOfPages
		b.PageCount = &pages
	}
	if year, ok := publicationYear(d.PublishDate); ok {
		b.PublicationYear = &year
	}
	if cover := d.Cover.Large; cover != "" {
		b.CoverURL = &cover
	} else if cover := d.Cover.Medium; cover != "" {
		b.CoverURL = &cover
	}
	return b
}

// publicationYear pulls the first plausible year out of free-form dates such
// as "March 3, 1998" or "1975-06".
func publicationYear(date string) (int, bool) {
	m := yearPattern.FindString(date)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	return year, err == nil
}

func joinNames(named []openlibrary.Named) string {
	names := make([]string, 0, len(named))
	for _, n := range named {
		if name := strings.TrimSpace(n.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
