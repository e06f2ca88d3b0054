package loan

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"libralink/internal/httpx"
)

func authed(r *http.Request, userID, role string) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), userID, role))
}

func TestHTTPHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "book missing", err: ErrBookNotFound, wantCode: http.StatusNotFound},
		{name: "no copies", err: ErrNoCopiesAvailable, wantCode: http.StatusConflict},
		{name: "already issued", err: ErrAlreadyIssued, wantCode: http.StatusConflict},
		{name: "limit", err: ErrLoanLimitReached, wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)
			repo.EXPECT().Issue(gomock.Any(), "u1", "b1", gomock.Any()).Return(Loan{}, tt.err)
			h := NewHTTPHandler(svc)

			r := httptest.NewRequest(http.MethodPost, "/books/b1/issue", nil)
			r.SetPathValue("id", "b1")
			w := httptest.NewRecorder()
			h.Issue(w, authed(r, "u1", httpx.RoleUser))

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestHTTPHandler_IssueCreated(t *testing.T) {
	svc, repo := newTestService(t)
	repo.EXPECT().Issue(gomock.Any(), "u1", "b1", gomock.Any()).DoAndReturn(withIssueState(IssueState{TotalCopies: 1}))
	h := NewHTTPHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/books/b1/issue", nil)
	r.SetPathValue("id", "b1")
	w := httptest.NewRecorder()
	h.Issue(w, authed(r, "u1", httpx.RoleUser))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"due_at":"2024-06-15T12:00:00Z"`)
}

func TestHTTPHandler_RenewOverdue(t *testing.T) {
	svc, repo := newTestService(t)
	repo.EXPECT().Renew(gomock.Any(), "u1", "b1", gomock.Any(), gomock.Any()).DoAndReturn(withRenewLoan(Loan{DueAt: testNow.Add(-day)}))
	h := NewHTTPHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/books/b1/renew", nil)
	r.SetPathValue("id", "b1")
	w := httptest.NewRecorder()
	h.Renew(w, authed(r, "u1", httpx.RoleUser))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), ErrOverdue.Error())
}

func TestHTTPHandler_ReturnForUser(t *testing.T) {
	svc, repo := newTestService(t)
	repo.EXPECT().Return(gomock.Any(), "u2", "b1", gomock.Any()).Return(Loan{}, ErrNoActiveLoan)
	h := NewHTTPHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/admin/users/u2/books/b1/return", nil)
	r.SetPathValue("userID", "u2")
	r.SetPathValue("id", "b1")
	w := httptest.NewRecorder()
	h.ReturnForUser(w, authed(r, "admin", httpx.RoleAdmin))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTPHandler_MyLoansActiveFilter(t *testing.T) {
	svc, repo := newTestService(t)
	repo.EXPECT().ListByUser(gomock.Any(), "u1", true).Return([]Loan{}, nil)
	h := NewHTTPHandler(svc)

	w := httptest.NewRecorder()
	h.MyLoans(w, authed(httptest.NewRequest(http.MethodGet, "/me/loans?active=true", nil), "u1", httpx.RoleUser))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPHandler_RequiresUser(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHTTPHandler(svc)

	w := httptest.NewRecorder()
	h.MyFees(w, httptest.NewRequest(http.MethodGet, "/me/fees", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
