// Package bookai fills in catalog descriptions and cover art with the
// generative models.
package bookai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"libralink/internal/book"
	"libralink/internal/platform/genai"
	"libralink/internal/platform/storage"
)

const (
	MaxDescriptionRunes = 1200
	coverPrefix         = "covers/"
	CoverURLPrefix      = "/media/covers/"
)

var ErrNotImage = errors.New("model did not return an image")

var coverName = regexp.MustCompile(`^[A-Za-z0-9-]+\.png$`)

type TextModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

type Books interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
	Update(ctx context.Context, id string, p book.Patch) (book.Book, error)
}

// Blobs is satisfied by storage.FS.
type Blobs interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type Service struct {
	books  Books
	text   TextModel
	images ImageModel
	blobs  Blobs
}

// NewService accepts nil models; the matching operation then returns
// genai.ErrUnavailable.
func NewService(books Books, text TextModel, images ImageModel, blobs Blobs) *Service {
	return &Service{books: books, text: text, images: images, blobs: blobs}
}

func describe(b book.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nAuthor: %s\n", b.Title, b.Author)
	if b.Subtitle != "" {
		fmt.Fprintf(&sb, "Subtitle: %s\n", b.Subtitle)
	}
	if b.Genre != "" {
		fmt.Fprintf(&sb, "Genre: %s\n", b.Genre)
	}
	if b.PublicationYear != nil {
		sb.WriteString("Year: " + strconv.Itoa(*b.PublicationYear) + "\n")
	}
	return sb.String()
}

// GenerateDescription writes a short catalog blurb for the book and saves it.
func (s *Service) GenerateDescription(ctx context.Context, bookID string) (book.Book, error) {
	if s.text == nil {
		return book.Book{}, genai.ErrUnavailable
	}
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return book.Book{}, err
	}

	prompt := "Write a library catalog description for the book below in two short paragraphs. " +
		"Do not reveal the ending. Plain text only, no headings or markdown.\n\n" + describe(b)
	text, err := s.text.Complete(ctx, prompt)
	if err != nil {
		return book.Book{}, err
	}
	desc := truncateRunes(strings.TrimSpace(text), MaxDescriptionRunes)
	if desc == "" {
		return book.Book{}, genai.ErrEmptyResponse
	}
	return s.books.Update(ctx, bookID, book.Patch{Description: &desc})
}

// GenerateCover renders cover art, stores it under covers/<id>.png and points
// the book's cover_url at it.
func (s *Service) GenerateCover(ctx context.Context, bookID string) (book.Book, error) {
	if s.images == nil {
		return book.Book{}, genai.ErrUnavailable
	}
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return book.Book{}, err
	}

	prompt := "A book cover illustration with no text or lettering, portrait orientation, " +
		"that fits this book:\n" + describe(b)
	img, _, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		return book.Book{}, err
	}
	if !strings.HasPrefix(mimetype.Detect(img).String(), "image/") {
		return book.Book{}, ErrNotImage
	}

	name := b.ID + ".png"
	if _, err := s.blobs.Put(ctx, coverPrefix+name, bytes.NewReader(img)); err != nil {
		return book.Book{}, fmt.Errorf("store cover: %w", err)
	}
	url := CoverURLPrefix + name
	return s.books.Update(ctx, bookID, book.Patch{CoverURL: &url})
}

// OpenCover returns a stored cover by file name. Names that could not have
// been generated report storage.ErrNotFound.
func (s *Service) OpenCover(ctx context.Context, name string) (io.ReadCloser, error) {
	if !coverName.MatchString(name) {
		return nil, storage.ErrNotFound
	}
	return s.blobs.Open(ctx, coverPrefix+name)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
