package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"libralink/internal/platform/storage"
)

// PageCounter reports the number of pages in a PDF.
type PageCounter func(rs io.ReadSeeker) (int, error)

// CountPDFPages parses rs with pdfcpu in relaxed validation mode.
func CountPDFPages(rs io.ReadSeeker) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(rs, conf)
}

type Service struct {
	repo   Repository
	blobs  BlobStore
	pages  PageCounter
	logger *zap.Logger
}

func NewService(repo Repository, blobs BlobStore, logger *zap.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, pages: CountPDFPages, logger: logger}
}

// Upload verifies that file is a PDF, stores it and records it. The blob is
// removed again when the insert fails.
func (s *Service) Upload(ctx context.Context, in Upload, file io.ReadSeeker) (Document, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return Document{}, fmt.Errorf("sniff upload: %w", err)
	}
	if !mtype.Is(ContentTypePDF) {
		return Document{}, ErrUnsupportedType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return Document{}, fmt.Errorf("rewind upload: %w", err)
	}

	pages, err := s.pages(file)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return Document{}, fmt.Errorf("rewind upload: %w", err)
	}

	id := uuid.NewString()
	key := "documents/" + id + ".pdf"
	size, err := s.blobs.Put(ctx, key, file)
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}
	if size == 0 {
		_ = s.blobs.Delete(ctx, key)
		return Document{}, ErrEmptyFile
	}

	d := Document{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Filename:    cleanFilename(in.Filename),
		StorageKey:  key,
		SizeBytes:   size,
		PageCount:   pages,
		ContentType: ContentTypePDF,
		UploadedBy:  in.UploadedBy,
	}
	if d.Title == "" {
		d.Title = strings.TrimSuffix(d.Filename, path.Ext(d.Filename))
	}

	if err := s.repo.Create(ctx, &d); err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.logger.Warn("orphaned document blob", zap.String("key", key), zap.Error(derr))
		}
		return Document{}, err
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, q string, limit, offset int) ([]Document, int, error) {
	return s.repo.List(ctx, strings.TrimSpace(q), limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.repo.GetByID(ctx, id)
}

// Open returns the document and a reader over its content. The caller closes
// the reader.
func (s *Service) Open(ctx context.Context, id string) (Document, io.ReadCloser, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.blobs.Open(ctx, d.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Document{}, nil, ErrNotFound
		}
		return Document{}, nil, err
	}
	return d, rc, nil
}

// Delete removes the row first; a blob that cannot be removed is only logged.
func (s *Service) Delete(ctx context.Context, id string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, d.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("delete document blob", zap.String("key", d.StorageKey), zap.Error(err))
	}
	return nil
}

func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document.pdf"
	}
	return name
}
