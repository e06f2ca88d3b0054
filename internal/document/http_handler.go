package document

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"libralink/internal/httpx"
)

// multipartOverhead leaves room for the form fields and part headers around
// the file itself.
const multipartOverhead = 1 << 20

type HTTPHandler struct {
	service  *Service
	maxBytes int64
}

func NewHTTPHandler(service *Service, maxBytes int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBytes: maxBytes}
}

func (h *HTTPHandler) tooLarge(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
		"File exceeds the upload limit of "+strconv.FormatInt(h.maxBytes>>20, 10)+" MB", nil)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, r, "Document not found")
	case errors.Is(err, ErrUnsupportedType):
		httpx.JSONError(w, r, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error(), nil)
	case errors.Is(err, ErrInvalidPDF), errors.Is(err, ErrEmptyFile):
		httpx.BadRequest(w, r, err.Error())
	default:
		httpx.InternalError(w, r)
	}
}

// Upload handles POST /admin/documents
// @Summary Upload a PDF resource
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param file formData file true "PDF file"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 413 {object} httpx.ErrorResponse
// @Failure 415 {object} httpx.ErrorResponse
// @Router /admin/documents [post]
func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.maxBytes + multipartOverhead
	if r.ContentLength > limit {
		h.tooLarge(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.tooLarge(w, r)
			return
		}
		httpx.BadRequest(w, r, "Expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "file", Message: "file is required"},
		})
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		h.tooLarge(w, r)
		return
	}

	d, err := h.service.Upload(r.Context(), Upload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Filename:    header.Filename,
		UploadedBy:  httpx.UserIDFrom(r),
	}, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, d)
}

// List handles GET /documents
// @Summary List PDF resources
// @Tags documents
// @Produce json
// @Param q query string false "Title search"
// @Success 200 {object} httpx.SuccessResponse
// @Router /documents [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page := httpx.PageFrom(r)
	docs, total, err := h.service.List(r.Context(), r.URL.Query().Get("q"), page.Limit(), page.Offset())
	if err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, docs, page.Meta(total))
}

// Get handles GET /documents/{id}
// @Summary Document metadata
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /documents/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, d, nil)
}

// Download handles GET /documents/{id}/download
// @Summary Download a PDF resource
// @Tags documents
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Success 200 {file} file
// @Failure 404 {object} httpx.ErrorResponse
// @Router /documents/{id}/download [get]
func (h *HTTPHandler) Download(w http.ResponseWriter, r *http.Request) {
	d, rc, err := h.service.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Filename}))
	w.Header().Set("Content-Length", strconv.FormatInt(d.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

// Delete handles DELETE /admin/documents/{id}
// @Summary Remove a PDF resource
// @Tags documents
// @Security Bearer
// @Param id path string true "Document ID"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/documents/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
