package rating

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

type createRatingReq struct {
	Star   int    `json:"star" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=2000"`
}

// CreateRating handles POST /books/{id}/rating
// @Summary Create or update book rating
// @Description Rate a book (1-5 stars) with an optional review
// @Tags ratings
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body createRatingReq true "Rating request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/{id}/rating [post]
func (h *HTTPHandler) CreateRating(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	var req createRatingReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	rating, err := h.service.CreateOrUpdate(r.Context(), userID, r.PathValue("id"), req.Star, req.Review)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookNotFound):
			httpx.NotFound(w, r, "Book not found")
		case errors.Is(err, ErrInvalidStar):
			httpx.BadRequest(w, r, err.Error())
		default:
			httpx.InternalError(w, r)
		}
		return
	}

	httpx.JSONSuccess(w, r, rating, nil)
}

// DeleteRating handles DELETE /books/{id}/rating
// @Summary Remove the caller's rating
// @Tags ratings
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 204 "No Content"
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/rating [delete]
func (h *HTTPHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	if err := h.service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, "Rating not found")
			return
		}
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// GetRating handles GET /books/{id}/rating
// @Summary Get book rating
// @Description Get average rating and total count for a book
// @Tags ratings
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/{id}/rating [get]
func (h *HTTPHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetBookRating(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccess(w, r, summary, nil)
}

// ListReviews handles GET /books/{id}/reviews
// @Summary Latest written reviews for a book
// @Tags ratings
// @Produce json
// @Param id path string true "Book ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books/{id}/reviews [get]
func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page := httpx.PageFrom(r)
	reviews, total, err := h.service.ListReviews(r.Context(), r.PathValue("id"), page.Limit(), page.Offset())
	if err != nil {
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccess(w, r, reviews, page.Meta(total))
}
