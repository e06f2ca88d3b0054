package loan

import (
	"errors"
	"net/http"

	"libralink/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBookNotFound):
		httpx.NotFound(w, r, "Book not found")
	case errors.Is(err, ErrNoActiveLoan):
		httpx.NotFound(w, r, "No active loan for this book")
	case IsConflict(err):
		httpx.Conflict(w, r, err.Error())
	default:
		httpx.InternalError(w, r)
	}
}

// Availability handles GET /books/{id}/availability
// @Summary Check whether a copy can be issued
// @Tags loans
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/availability [get]
func (h *HTTPHandler) Availability(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.IsBookAvailable(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// Issue handles POST /books/{id}/issue
// @Summary Borrow a book
// @Tags loans
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books/{id}/issue [post]
func (h *HTTPHandler) Issue(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	l, err := h.service.Issue(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, l)
}

// Return handles POST /books/{id}/return
// @Summary Return a borrowed book
// @Tags loans
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/return [post]
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	h.returnFor(w, r, userID)
}

// ReturnForUser handles POST /admin/books/{id}/users/{userID}/return
// @Summary Check a book in on behalf of a user
// @Tags admin
// @Produce json
// @Security Bearer
// @Param userID path string true "Borrower ID"
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/books/{id}/users/{userID}/return [post]
func (h *HTTPHandler) ReturnForUser(w http.ResponseWriter, r *http.Request) {
	h.returnFor(w, r, r.PathValue("userID"))
}

func (h *HTTPHandler) returnFor(w http.ResponseWriter, r *http.Request, userID string) {
	l, err := h.service.Return(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, l, nil)
}

// Renew handles POST /books/{id}/renew
// @Summary Extend a loan
// @Tags loans
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books/{id}/renew [post]
func (h *HTTPHandler) Renew(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	l, err := h.service.Renew(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, l, nil)
}

// MyLoans handles GET /me/loans
// @Summary List the caller's loans
// @Tags loans
// @Produce json
// @Security Bearer
// @Param active query bool false "Only open loans"
// @Success 200 {object} httpx.SuccessResponse
// @Router /me/loans [get]
func (h *HTTPHandler) MyLoans(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	loans, err := h.service.ListUserLoans(r.Context(), userID, r.URL.Query().Get("active") == "true")
	if err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, loans, nil)
}

// MyTransactions handles GET /me/transactions
// @Summary List the caller's circulation history
// @Tags loans
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /me/transactions [get]
func (h *HTTPHandler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	page := httpx.PageFrom(r)
	txns, total, err := h.service.ListTransactions(r.Context(), userID, page.Limit(), page.Offset())
	if err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, txns, page.Meta(total))
}

// MyFees handles GET /me/fees
// @Summary Late fees owed by the caller
// @Tags loans
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /me/fees [get]
func (h *HTTPHandler) MyFees(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	report, err := h.service.FeeSummary(r.Context(), userID)
	if err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, report, map[string]any{
		"fine_per_day_cents": h.service.Policy().FinePerDayCents,
	})
}

// Overdue handles GET /admin/loans/overdue
// @Summary List overdue loans
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /admin/loans/overdue [get]
func (h *HTTPHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	page := httpx.PageFrom(r)
	loans, total, err := h.service.ListOverdue(r.Context(), page.Limit(), page.Offset())
	if err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, loans, page.Meta(total))
}
