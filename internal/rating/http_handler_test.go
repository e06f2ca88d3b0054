package rating

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"libralink/internal/httpx"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Upsert(ctx context.Context, r *Rating) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, userID, bookID string) error {
	return m.Called(ctx, userID, bookID).Error(0)
}

func (m *mockRepo) GetBookRating(ctx context.Context, bookID string) (float64, int, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

func (m *mockRepo) ListReviews(ctx context.Context, bookID string, limit, offset int) ([]Rating, int, error) {
	args := m.Called(ctx, bookID, limit, offset)
	return args.Get(0).([]Rating), args.Int(1), args.Error(2)
}

func (m *mockRepo) GetUserRatingStats(ctx context.Context, userID string) (float64, int, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

func TestHTTPHandler_CreateRating(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		body           map[string]any
		setupMock      func(m *mockRepo)
		expectedStatus int
	}{
		{
			name:   "success - new rating with review",
			userID: "test-user-id",
			body:   map[string]any{"star": 4, "review": "  Loved the ending  "},
			setupMock: func(m *mockRepo) {
				m.On("Upsert", mock.Anything, mock.MatchedBy(func(r *Rating) bool {
					return r.UserID == "test-user-id" && r.BookID == "book-1" && r.Star == 4 && r.Review == "Loved the ending"
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "not found - unknown book",
			userID: "test-user-id",
			body:   map[string]any{"star": 5},
			setupMock: func(m *mockRepo) {
				m.On("Upsert", mock.Anything, mock.Anything).Return(ErrBookNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unauthorized - no token",
			body:           map[string]any{"star": 4},
			setupMock:      func(m *mockRepo) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad request - star < 1",
			userID:         "test-user-id",
			body:           map[string]any{"star": 0},
			setupMock:      func(m *mockRepo) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - star > 5",
			userID:         "test-user-id",
			body:           map[string]any{"star": 6},
			setupMock:      func(m *mockRepo) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			tt.setupMock(repo)
			h := NewHTTPHandler(NewService(repo))

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/books/book-1/rating", bytes.NewReader(body))
			req.SetPathValue("id", "book-1")
			if tt.userID != "" {
				req = req.WithContext(httpx.ContextWithUser(req.Context(), tt.userID, httpx.RoleUser))
			}
			w := httptest.NewRecorder()

			h.CreateRating(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestHTTPHandler_DeleteRating(t *testing.T) {
	repo := new(mockRepo)
	repo.On("Delete", mock.Anything, "u1", "book-1").Return(nil).Once()
	repo.On("Delete", mock.Anything, "u1", "book-2").Return(ErrNotFound).Once()
	h := NewHTTPHandler(NewService(repo))

	for bookID, want := range map[string]int{"book-1": http.StatusNoContent, "book-2": http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodDelete, "/books/"+bookID+"/rating", nil)
		req.SetPathValue("id", bookID)
		req = req.WithContext(httpx.ContextWithUser(req.Context(), "u1", httpx.RoleUser))
		w := httptest.NewRecorder()

		h.DeleteRating(w, req)
		assert.Equal(t, want, w.Code, bookID)
	}
	repo.AssertExpectations(t)
}

func TestHTTPHandler_GetRating(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetBookRating", mock.Anything, "book-1").Return(4.333333, 3, nil)
	h := NewHTTPHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodGet, "/books/book-1/rating", nil)
	req.SetPathValue("id", "book-1")
	w := httptest.NewRecorder()
	h.GetRating(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data Summary `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4.33, resp.Data.AverageRating)
	assert.Equal(t, 3, resp.Data.RatingsCount)
}

func TestHTTPHandler_ListReviews(t *testing.T) {
	repo := new(mockRepo)
	repo.On("ListReviews", mock.Anything, "book-1", 20, 0).Return([]Rating{{UserID: "u1", Star: 5, Review: "Great"}}, 1, nil)
	h := NewHTTPHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodGet, "/books/book-1/reviews", nil)
	req.SetPathValue("id", "book-1")
	w := httptest.NewRecorder()
	h.ListReviews(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"review":"Great"`)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestService_GetUserRatingStats(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetUserRatingStats", mock.Anything, "u1").Return(3.5, 2, nil)

	stats, err := NewService(repo).GetUserRatingStats(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, UserStats{AverageRating: 3.5, RatingsCount: 2}, stats)
}
