package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libralink/internal/platform/storage"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, d *Document) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Document), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, q string, limit, offset int) ([]Document, int, error) {
	args := m.Called(ctx, q, limit, offset)
	return args.Get(0).([]Document), args.Int(1), args.Error(2)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func newTestService(t *testing.T, pages int, pagesErr error) (*Service, *mockRepo, *storage.FS, string) {
	t.Helper()
	root := t.TempDir()
	fs, err := storage.NewFS(root)
	require.NoError(t, err)
	repo := new(mockRepo)
	svc := NewService(repo, fs, zap.NewNop())
	svc.pages = func(io.ReadSeeker) (int, error) { return pages, pagesErr }
	return svc, repo, fs, root
}

func storedFiles(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, "documents"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestService_Upload(t *testing.T) {
	svc, repo, fs, _ := newTestService(t, 3, nil)
	ctx := context.Background()
	repo.On("Create", ctx, mock.AnythingOfType("*document.Document")).Return(nil)

	d, err := svc.Upload(ctx, Upload{Filename: `C:\scans\Intro to Go.pdf`, UploadedBy: "admin"}, bytes.NewReader(samplePDF))
	require.NoError(t, err)

	assert.Equal(t, "Intro to Go.pdf", d.Filename)
	assert.Equal(t, "Intro to Go", d.Title)
	assert.Equal(t, 3, d.PageCount)
	assert.Equal(t, int64(len(samplePDF)), d.SizeBytes)
	assert.Equal(t, ContentTypePDF, d.ContentType)
	assert.Equal(t, "documents/"+d.ID+".pdf", d.StorageKey)

	rc, err := fs.Open(ctx, d.StorageKey)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, stored)
	repo.AssertExpectations(t)
}

func TestService_UploadRejectsNonPDF(t *testing.T) {
	svc, repo, _, root := newTestService(t, 1, nil)

	_, err := svc.Upload(context.Background(), Upload{Filename: "notes.pdf"}, bytes.NewReader([]byte("just some plain text")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Empty(t, storedFiles(t, root))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_UploadRejectsUnreadablePDF(t *testing.T) {
	svc, repo, _, root := newTestService(t, 0, errors.New("xref table missing"))

	_, err := svc.Upload(context.Background(), Upload{Filename: "broken.pdf"}, bytes.NewReader(samplePDF))
	assert.ErrorIs(t, err, ErrInvalidPDF)
	assert.Empty(t, storedFiles(t, root))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_UploadRemovesBlobWhenInsertFails(t *testing.T) {
	svc, repo, _, root := newTestService(t, 1, nil)
	ctx := context.Background()
	repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Upload(ctx, Upload{Filename: "a.pdf"}, bytes.NewReader(samplePDF))
	require.Error(t, err)
	assert.Empty(t, storedFiles(t, root))
}

func TestService_Delete(t *testing.T) {
	svc, repo, fs, root := newTestService(t, 1, nil)
	ctx := context.Background()
	_, err := fs.Put(ctx, "documents/d1.pdf", bytes.NewReader(samplePDF))
	require.NoError(t, err)

	repo.On("GetByID", ctx, "d1").Return(Document{ID: "d1", StorageKey: "documents/d1.pdf"}, nil)
	repo.On("Delete", ctx, "d1").Return(nil)

	require.NoError(t, svc.Delete(ctx, "d1"))
	assert.Empty(t, storedFiles(t, root))
	repo.AssertExpectations(t)
}

func TestService_DeleteMissing(t *testing.T) {
	svc, repo, _, _ := newTestService(t, 1, nil)
	ctx := context.Background()
	repo.On("GetByID", ctx, "nope").Return(Document{}, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "nope"), ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_OpenMissingBlob(t *testing.T) {
	svc, repo, _, _ := newTestService(t, 1, nil)
	ctx := context.Background()
	repo.On("GetByID", ctx, "d1").Return(Document{ID: "d1", StorageKey: "documents/d1.pdf"}, nil)

	_, _, err := svc.Open(ctx, "d1")
	assert.ErrorIs(t, err, ErrNotFound)
}
