package document

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrUnsupportedType = errors.New("only PDF files are accepted")
	ErrInvalidPDF      = errors.New("file is not a readable PDF")
	ErrEmptyFile       = errors.New("file is empty")
)

const ContentTypePDF = "application/pdf"

type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Filename    string    `json:"filename"`
	StorageKey  string    `json:"-"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   int       `json:"page_count"`
	ContentType string    `json:"content_type"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload describes a new document; the file itself is passed separately.
type Upload struct {
	Title       string
	Description string
	Filename    string
	UploadedBy  string
}
