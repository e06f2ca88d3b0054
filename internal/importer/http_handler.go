package importer

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

type importRequest struct {
	ISBNs  []string `json:"isbns" validate:"required,min=1,max=50"`
	Copies int      `json:"copies" validate:"omitempty,min=1,max=1000"`
}

// Import handles POST /admin/books/import
// @Summary Import books from Open Library by ISBN
// @Description Hydrates up to 50 ISBNs and upserts them into the catalog
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /admin/books/import [post]
func (h *HTTPHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	run, err := h.service.Import(r.Context(), httpx.UserIDFrom(r), req.ISBNs, req.Copies)
	switch {
	case errors.Is(err, ErrInvalidISBN), errors.Is(err, ErrNoISBNs), errors.Is(err, ErrTooManyISBNs):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "isbns", Message: err.Error()},
		})
	case err != nil && run != nil:
		httpx.JSONError(w, r, http.StatusBadGateway, "IMPORT_FAILED", run.Error, nil)
	case err != nil:
		httpx.InternalError(w, r)
	default:
		httpx.JSONSuccessCreated(w, r, run)
	}
}

// GetRun handles GET /admin/imports/{id}
// @Summary Get an import run
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path string true "Run ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/imports/{id} [get]
func (h *HTTPHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, "Import run not found")
			return
		}
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}
