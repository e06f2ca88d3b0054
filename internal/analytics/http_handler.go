package analytics

import (
	"errors"
	"net/http"
	"strconv"

	"libralink/internal/httpx"
)

const (
	defaultTrendDays = 30
	defaultTopBooks  = 10
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// intParam returns def when the parameter is absent and ok=false when it is
// present but not an integer.
func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func rangeError(w http.ResponseWriter, r *http.Request, field, msg string) {
	httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
		{Field: field, Message: msg},
	})
}

// Overview handles GET /admin/analytics/overview
// @Summary Library headline counters
// @Tags analytics
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /admin/analytics/overview [get]
func (h *HTTPHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Overview(r.Context())
	if err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, o, nil)
}

// Trend handles GET /admin/analytics/trend
// @Summary Daily issues, returns and renewals
// @Tags analytics
// @Produce json
// @Security Bearer
// @Param days query int false "Window in days (1-90)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /admin/analytics/trend [get]
func (h *HTTPHandler) Trend(w http.ResponseWriter, r *http.Request) {
	days, ok := intParam(r, "days", defaultTrendDays)
	if !ok {
		rangeError(w, r, "days", "must be an integer")
		return
	}
	trend, err := h.service.IssueTrend(r.Context(), days)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			rangeError(w, r, "days", "must be between 1 and 90")
			return
		}
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, trend, map[string]any{"days": days})
}

// TopBooks handles GET /admin/analytics/top-books
// @Summary Most issued books
// @Tags analytics
// @Produce json
// @Security Bearer
// @Param limit query int false "Number of books (1-50)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /admin/analytics/top-books [get]
func (h *HTTPHandler) TopBooks(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", defaultTopBooks)
	if !ok {
		rangeError(w, r, "limit", "must be an integer")
		return
	}
	books, err := h.service.TopBooks(r.Context(), limit)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			rangeError(w, r, "limit", "must be between 1 and 50")
			return
		}
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, books, nil)
}

// Genres handles GET /admin/analytics/genres
// @Summary Books and issues per genre
// @Tags analytics
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /admin/analytics/genres [get]
func (h *HTTPHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.GenreDistribution(r.Context())
	if err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, genres, nil)
}
