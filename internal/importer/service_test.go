package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libralink/internal/book"
	"libralink/internal/platform/openlibrary"
)

type mockOLClient struct {
	mock.Mock
}

func (m *mockOLClient) GetBooksByISBN(ctx context.Context, isbns []string) (map[string]openlibrary.BookDetails, error) {
	args := m.Called(ctx, isbns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]openlibrary.BookDetails), args.Error(1)
}

type mockBooks struct {
	mock.Mock
}

func (m *mockBooks) UpsertByISBN(ctx context.Context, b *book.Book) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

type mockRunRepo struct {
	mock.Mock
}

func (m *mockRunRepo) CreateRun(ctx context.Context, run *Run) error {
	args := m.Called(ctx, run)
	run.ID = "run-1"
	return args.Error(0)
}

func (m *mockRunRepo) FinishRun(ctx context.Context, run *Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockRunRepo) GetRun(ctx context.Context, id string) (Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Run), args.Error(1)
}

func newMocks() (*mockOLClient, *mockBooks, *mockRunRepo, *Service) {
	mOL := new(mockOLClient)
	mBooks := new(mockBooks)
	mRepo := new(mockRunRepo)
	return mOL, mBooks, mRepo, NewService(mOL, mBooks, mRepo, zap.NewNop())
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("creates, updates and reports missing", func(t *testing.T) {
		mOL, mBooks, mRepo, s := newMocks()

		mRepo.On("CreateRun", ctx, mock.MatchedBy(func(run *Run) bool {
			return run.Status == StatusRunning && run.Requested == 3 && run.Copies == 2
		})).Return(nil)
		mRepo.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *Run) bool {
			return run.Status == StatusCompleted && run.FinishedAt != nil
		})).Return(nil)

		mOL.On("GetBooksByISBN", ctx, []string{"9780261103573", "9780547928227", "0441013597"}).
			Return(map[string]openlibrary.BookDetails{
				"9780261103573": {Title: "The Fellowship of the Ring", Authors: []openlibrary.Named{{Name: "J.R.R. Tolkien"}}},
				"9780547928227": {Title: "The Hobbit", Authors: []openlibrary.Named{{Name: "J.R.R. Tolkien"}}},
			}, nil)

		mBooks.On("UpsertByISBN", ctx, mock.MatchedBy(func(b *book.Book) bool {
			return b.ISBN == "9780261103573"
		})).Return(true, nil)
		mBooks.On("UpsertByISBN", ctx, mock.MatchedBy(func(b *book.Book) bool {
			return b.ISBN == "9780547928227"
		})).Return(false, nil)

		run, err := s.Import(ctx, "admin-1", []string{"978-0-261-10357-3", "9780547928227", "0-441-01359-7"}, 2)
		require.NoError(t, err)
		assert.Equal(t, "run-1", run.ID)
		assert.Equal(t, StatusCompleted, run.Status)
		assert.Equal(t, 2, run.Found)
		assert.Equal(t, 1, run.Created)
		assert.Equal(t, 1, run.Updated)
		assert.Equal(t, []string{"0441013597"}, run.Missing)
		assert.Empty(t, run.Failed)

		mOL.AssertExpectations(t)
		mBooks.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("looks up in batches", func(t *testing.T) {
		mOL, _, mRepo, s := newMocks()

		isbns := make([]string, 25)
		for i := range isbns {
			isbns[i] = fmt.Sprintf("978%010d", i)
		}

		mRepo.On("CreateRun", ctx, mock.Anything).Return(nil)
		mRepo.On("FinishRun", mock.Anything, mock.Anything).Return(nil)
		mOL.On("GetBooksByISBN", ctx, isbns[:20]).Return(map[string]openlibrary.BookDetails{}, nil).Once()
		mOL.On("GetBooksByISBN", ctx, isbns[20:]).Return(map[string]openlibrary.BookDetails{}, nil).Once()

		run, err := s.Import(ctx, "admin-1", isbns, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, run.Copies)
		assert.Len(t, run.Missing, 25)
		mOL.AssertExpectations(t)
	})

	t.Run("lookup failure fails the run", func(t *testing.T) {
		mOL, _, mRepo, s := newMocks()

		mRepo.On("CreateRun", ctx, mock.Anything).Return(nil)
		mRepo.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *Run) bool {
			return run.Status == StatusFailed && strings.Contains(run.Error, "upstream down")
		})).Return(nil)
		mOL.On("GetBooksByISBN", ctx, mock.Anything).Return(nil, errors.New("upstream down"))

		run, err := s.Import(ctx, "admin-1", []string{"9780547928227"}, 1)
		require.Error(t, err)
		require.NotNil(t, run)
		assert.Equal(t, StatusFailed, run.Status)
		mRepo.AssertExpectations(t)
	})

	t.Run("upsert failure is reported per isbn", func(t *testing.T) {
		mOL, mBooks, mRepo, s := newMocks()

		mRepo.On("CreateRun", ctx, mock.Anything).Return(nil)
		mRepo.On("FinishRun", mock.Anything, mock.Anything).Return(nil)
		mOL.On("GetBooksByISBN", ctx, mock.Anything).Return(map[string]openlibrary.BookDetails{
			"9780547928227": {Title: "The Hobbit"},
		}, nil)
		mBooks.On("UpsertByISBN", ctx, mock.Anything).Return(false, errors.New("db down"))

		run, err := s.Import(ctx, "admin-1", []string{"9780547928227"}, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"9780547928227"}, run.Failed)
		assert.Equal(t, 1, run.Found)
		assert.Zero(t, run.Created+run.Updated)
	})

	t.Run("invalid isbn records nothing", func(t *testing.T) {
		_, _, mRepo, s := newMocks()

		_, err := s.Import(ctx, "admin-1", []string{"not-an-isbn"}, 1)
		assert.ErrorIs(t, err, ErrInvalidISBN)
		mRepo.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
	})

	t.Run("duplicates count once", func(t *testing.T) {
		mOL, _, mRepo, s := newMocks()

		mRepo.On("CreateRun", ctx, mock.MatchedBy(func(run *Run) bool { return run.Requested == 1 })).Return(nil)
		mRepo.On("FinishRun", mock.Anything, mock.Anything).Return(nil)
		mOL.On("GetBooksByISBN", ctx, []string{"9780547928227"}).Return(map[string]openlibrary.BookDetails{}, nil)

		_, err := s.Import(ctx, "admin-1", []string{"9780547928227", "978-0547928227"}, 1)
		require.NoError(t, err)
		mOL.AssertExpectations(t)
	})

	t.Run("too many isbns", func(t *testing.T) {
		_, _, _, s := newMocks()
		isbns := make([]string, MaxISBNs+1)
		for i := range isbns {
			isbns[i] = fmt.Sprintf("978%010d", i)
		}
		_, err := s.Import(ctx, "admin-1", isbns, 1)
		assert.ErrorIs(t, err, ErrTooManyISBNs)
	})
}

func TestToBook(t *testing.T) {
	d := openlibrary.BookDetails{
		Title:         " Dune ",
		Authors:       []openlibrary.Named{{Name: "Frank Herbert"}, {Name: ""}},
		Publishers:    []openlibrary.Named{{Name: "Ace"}, {Name: "Chilton"}},
		Subjects:      []openlibrary.Named{{Name: "Science Fiction"}},
		PublishDate:   "August 1, 1990",
		NumberOfPages: 535,
		Notes:         "Source title: Dune",
	}
	d.Cover.Large = "https://covers.openlibrary.org/b/id/1-L.jpg"

	b := toBook("0441013597", d, 3)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)
	assert.Equal(t, "Ace, Chilton", b.Publisher)
	assert.Equal(t, "Science Fiction", b.Genre)
	assert.Equal(t, "Source title: Dune", b.Description)
	assert.Equal(t, 3, b.TotalCopies)
	require.NotNil(t, b.PublicationYear)
	assert.Equal(t, 1990, *b.PublicationYear)
	require.NotNil(t, b.PageCount)
	assert.Equal(t, 535, *b.PageCount)
	require.NotNil(t, b.CoverURL)

	bare := toBook("0441013597", openlibrary.BookDetails{Title: "Dune", PublishDate: "n.d."}, 1)
	assert.Equal(t, "Unknown", bare.Author)
	assert.Nil(t, bare.PublicationYear)
	assert.Nil(t, bare.CoverURL)
}

func TestHTTPHandler_Import(t *testing.T) {
	t.Run("validation error", func(t *testing.T) {
		_, _, _, s := newMocks()
		h := NewHTTPHandler(s)

		req := httptest.NewRequest(http.MethodPost, "/admin/books/import", strings.NewReader(`{"isbns":["nope"]}`))
		w := httptest.NewRecorder()
		h.Import(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("created", func(t *testing.T) {
		mOL, _, mRepo, s := newMocks()
		h := NewHTTPHandler(s)

		mRepo.On("CreateRun", mock.Anything, mock.Anything).Return(nil)
		mRepo.On("FinishRun", mock.Anything, mock.Anything).Return(nil)
		mOL.On("GetBooksByISBN", mock.Anything, mock.Anything).Return(map[string]openlibrary.BookDetails{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/admin/books/import", strings.NewReader(`{"isbns":["9780547928227"]}`))
		w := httptest.NewRecorder()
		h.Import(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"missing":["9780547928227"]`)
	})

	t.Run("upstream failure", func(t *testing.T) {
		mOL, _, mRepo, s := newMocks()
		h := NewHTTPHandler(s)

		mRepo.On("CreateRun", mock.Anything, mock.Anything).Return(nil)
		mRepo.On("FinishRun", mock.Anything, mock.Anything).Return(nil)
		mOL.On("GetBooksByISBN", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		req := httptest.NewRequest(http.MethodPost, "/admin/books/import", strings.NewReader(`{"isbns":["9780547928227"]}`))
		w := httptest.NewRecorder()
		h.Import(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "IMPORT_FAILED")
	})
}

func TestHTTPHandler_GetRun(t *testing.T) {
	_, _, mRepo, s := newMocks()
	h := NewHTTPHandler(s)

	mRepo.On("GetRun", mock.Anything, "run-1").Return(Run{ID: "run-1", Status: StatusCompleted}, nil)
	mRepo.On("GetRun", mock.Anything, "missing").Return(Run{}, ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/admin/imports/run-1", nil)
	req.SetPathValue("id", "run-1")
	w := httptest.NewRecorder()
	h.GetRun(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"COMPLETED"`)

	req = httptest.NewRequest(http.MethodGet, "/admin/imports/missing", nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	h.GetRun(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
