package bookmark

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

type addReq struct {
	BookID string `json:"book_id" validate:"required"`
}

// Add handles POST /me/bookmarks
// @Summary Bookmark a book
// @Tags bookmarks
// @Accept json
// @Security Bearer
// @Param request body addReq true "Book to bookmark"
// @Success 204 "No Content"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /me/bookmarks [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	var req addReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Add(r.Context(), userID, req.BookID); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			httpx.NotFound(w, r, "Book not found")
			return
		}
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// Remove handles DELETE /me/bookmarks/{bookID}
// @Summary Remove a bookmark
// @Tags bookmarks
// @Security Bearer
// @Param bookID path string true "Book ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /me/bookmarks/{bookID} [delete]
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	if err := h.service.Remove(r.Context(), userID, r.PathValue("bookID")); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, "Bookmark not found")
			return
		}
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// List handles GET /me/bookmarks
// @Summary List bookmarked books
// @Tags bookmarks
// @Produce json
// @Security Bearer
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} httpx.SuccessResponse
// @Router /me/bookmarks [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	page := httpx.PageFrom(r)
	items, total, err := h.service.List(r.Context(), userID, page.Limit(), page.Offset())
	if err != nil {
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccess(w, r, items, page.Meta(total))
}
