package bookai

import (
	"errors"
	"io"
	"net/http"

	"libralink/internal/book"
	"libralink/internal/httpx"
	"libralink/internal/platform/genai"
	"libralink/internal/platform/storage"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound):
		httpx.NotFound(w, r, "Book not found")
	case errors.Is(err, genai.ErrUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "AI_UNAVAILABLE", "Generative AI is not configured", nil)
	case errors.Is(err, genai.ErrEmptyResponse), errors.Is(err, ErrNotImage):
		httpx.JSONError(w, r, http.StatusBadGateway, "AI_UNAVAILABLE", err.Error(), nil)
	default:
		httpx.InternalError(w, r)
	}
}

// GenerateDescription handles POST /admin/books/{id}/description/generate
// @Summary Generate a catalog description
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /admin/books/{id}/description/generate [post]
func (h *HTTPHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GenerateDescription(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// GenerateCover handles POST /admin/books/{id}/cover/generate
// @Summary Generate cover art
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /admin/books/{id}/cover/generate [post]
func (h *HTTPHandler) GenerateCover(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GenerateCover(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// ServeCover handles GET /media/covers/{name}
// @Summary Stored cover image
// @Tags media
// @Produce png
// @Param name path string true "File name"
// @Success 200 {file} file
// @Failure 404 {object} httpx.ErrorResponse
// @Router /media/covers/{name} [get]
func (h *HTTPHandler) ServeCover(w http.ResponseWriter, r *http.Request) {
	rc, err := h.service.OpenCover(r.Context(), r.PathValue("name"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.NotFound(w, r, "Cover not found")
			return
		}
		httpx.InternalError(w, r)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
