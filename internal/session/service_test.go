package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libralink/internal/httpx"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, s *Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockRepo) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(Session), args.Error(1)
}

func (m *mockRepo) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Session), args.Error(1)
}

func (m *mockRepo) DeleteForUser(ctx context.Context, sessionID, userID string) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

func (m *mockRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *mockRepo) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockBlacklist struct {
	mock.Mock
}

func (m *mockBlacklist) AddToken(ctx context.Context, jti string, userID string, expiresAt time.Time) error {
	return m.Called(ctx, jti, userID, expiresAt).Error(0)
}

func (m *mockBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlacklist) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestService_Cleanup(t *testing.T) {
	ctx := context.Background()
	repo, bl := new(mockRepo), new(mockBlacklist)
	repo.On("CleanupExpired", ctx).Return(int64(3), nil)
	bl.On("CleanupExpired", ctx).Return(int64(2), nil)

	sessions, tokens, err := NewService(repo, bl).Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sessions)
	assert.Equal(t, int64(2), tokens)
}

func TestService_CleanupSessionError(t *testing.T) {
	ctx := context.Background()
	repo, bl := new(mockRepo), new(mockBlacklist)
	repo.On("CleanupExpired", ctx).Return(int64(0), errors.New("db down"))

	_, _, err := NewService(repo, bl).Cleanup(ctx)
	assert.Error(t, err)
	bl.AssertNotCalled(t, "CleanupExpired", mock.Anything)
}

func TestHTTPHandler_DeleteSession_OtherUser(t *testing.T) {
	repo := new(mockRepo)
	repo.On("DeleteForUser", mock.Anything, "s1", "u1").Return(ErrNotFound)
	h := NewHTTPHandler(NewService(repo, new(mockBlacklist)))

	req := httptest.NewRequest(http.MethodDelete, "/me/sessions/s1", nil)
	req.SetPathValue("id", "s1")
	req = req.WithContext(httpx.ContextWithUser(req.Context(), "u1", httpx.RoleUser))
	w := httptest.NewRecorder()
	h.DeleteSession(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTPHandler_ListSessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := new(mockRepo)
	repo.On("ListByUserID", mock.Anything, "u1").Return([]Session{{ID: "s1", UserAgent: "curl", CreatedAt: now, LastUsedAt: now, ExpiresAt: now}}, nil)
	h := NewHTTPHandler(NewService(repo, new(mockBlacklist)))

	req := httptest.NewRequest(http.MethodGet, "/me/sessions", nil)
	req = req.WithContext(httpx.ContextWithUser(req.Context(), "u1", httpx.RoleUser))
	w := httptest.NewRecorder()
	h.ListSessions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"created_at":"2024-05-01T10:00:00Z"`)
}
