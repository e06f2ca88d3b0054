package book

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"libralink/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createBookReq struct {
	ISBN            string  `json:"isbn" validate:"required,isbn"`
	Title           string  `json:"title" validate:"required,max=500"`
	Subtitle        string  `json:"subtitle" validate:"max=500"`
	Author          string  `json:"author" validate:"required,max=255"`
	Genre           string  `json:"genre" validate:"max=100"`
	Publisher       string  `json:"publisher" validate:"max=255"`
	Description     string  `json:"description" validate:"max=5000"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=0,lte=3000"`
	PageCount       *int    `json:"page_count" validate:"omitempty,gte=1"`
	Language        string  `json:"language" validate:"max=20"`
	CoverURL        *string `json:"cover_url" validate:"omitempty,url"`
	TotalCopies     int     `json:"total_copies" validate:"required,gte=1"`
}

type updateBookReq struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=500"`
	Subtitle        *string `json:"subtitle" validate:"omitempty,max=500"`
	Author          *string `json:"author" validate:"omitempty,min=1,max=255"`
	Genre           *string `json:"genre" validate:"omitempty,max=100"`
	Publisher       *string `json:"publisher" validate:"omitempty,max=255"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=0,lte=3000"`
	PageCount       *int    `json:"page_count" validate:"omitempty,gte=1"`
	Language        *string `json:"language" validate:"omitempty,max=20"`
	CoverURL        *string `json:"cover_url" validate:"omitempty,url"`
	TotalCopies     *int    `json:"total_copies" validate:"omitempty,gte=1"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, r, "Book not found")
	case errors.Is(err, ErrDuplicateISBN):
		httpx.Conflict(w, r, "A book with this ISBN already exists")
	case errors.Is(err, ErrCopiesOnLoan):
		httpx.Conflict(w, r, "Copies of this book are currently on loan")
	case errors.Is(err, ErrInvalidCopies):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input",
			[]httpx.ErrorDetail{{Field: "total_copies", Message: err.Error()}})
	default:
		httpx.InternalError(w, r)
	}
}

// List handles GET /books
// @Summary List books
// @Tags books
// @Produce json
// @Param q query string false "Free-text filter"
// @Param genre query string false "Genre"
// @Param author query string false "Author"
// @Param available_only query bool false "Only books with free copies"
// @Param sort query string false "title|created_at|year|rating|relevance"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Genre:         query.Get("genre"),
		Author:        strings.TrimSpace(query.Get("author")),
		Publisher:     query.Get("publisher"),
		Q:             strings.TrimSpace(query.Get("q")),
		Search:        strings.TrimSpace(query.Get("search")),
		Sort:          query.Get("sort"),
		Desc:          query.Get("desc") == "true",
		Language:      query.Get("language"),
		AvailableOnly: query.Get("available_only") == "true",
	}

	if genres := query.Get("genres"); genres != "" {
		params.Genres = strings.Split(genres, ",")
	}

	if minRatingStr := query.Get("min_rating"); minRatingStr != "" {
		if val, err := strconv.ParseFloat(minRatingStr, 64); err == nil {
			params.MinRating = &val
		}
	}

	if yearFromStr := query.Get("year_from"); yearFromStr != "" {
		if val, err := strconv.Atoi(yearFromStr); err == nil {
			params.YearFrom = &val
		}
	}

	if yearToStr := query.Get("year_to"); yearToStr != "" {
		if val, err := strconv.Atoi(yearToStr); err == nil {
			params.YearTo = &val
		}
	}

	page := httpx.PageFrom(r)
	params.Limit = page.Limit()
	params.Offset = page.Offset()

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccess(w, r, books, page.Meta(total))
}

// Get handles GET /books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// GetByISBN handles GET /books/isbn/{isbn}
// @Summary Get a book by ISBN
// @Tags books
// @Produce json
// @Param isbn path string true "ISBN-10 or ISBN-13"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/isbn/{isbn} [get]
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")
	if !httpx.IsValidISBN(isbn) {
		httpx.BadRequest(w, r, "Invalid ISBN")
		return
	}

	b, err := h.service.GetByISBN(r.Context(), isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, "ISBN not found")
			return
		}
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /admin/books
// @Summary Add a book to the catalog
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	b, err := h.service.Create(r.Context(), Book{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		Author:          req.Author,
		Genre:           req.Genre,
		Publisher:       req.Publisher,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		PageCount:       req.PageCount,
		Language:        req.Language,
		CoverURL:        req.CoverURL,
		TotalCopies:     req.TotalCopies,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}

// Update handles PATCH /admin/books/{id}
// @Summary Update a book
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/books/{id} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateBookReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	b, err := h.service.Update(r.Context(), r.PathValue("id"), Patch{
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		Author:          req.Author,
		Genre:           req.Genre,
		Publisher:       req.Publisher,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		PageCount:       req.PageCount,
		Language:        req.Language,
		CoverURL:        req.CoverURL,
		TotalCopies:     req.TotalCopies,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /admin/books/{id}
// @Summary Remove a book
// @Tags admin
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
