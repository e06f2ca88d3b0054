package document

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Handbook"))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHTTPHandler_Upload(t *testing.T) {
	svc, repo, _, _ := newTestService(t, 4, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	h := NewHTTPHandler(svc, 1<<20)

	w := httptest.NewRecorder()
	h.Upload(w, multipartUpload(t, "handbook.pdf", samplePDF))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Handbook"`)
	assert.Contains(t, w.Body.String(), `"page_count":4`)
}

func TestHTTPHandler_UploadRejectsNonPDF(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, nil)
	h := NewHTTPHandler(svc, 1<<20)

	w := httptest.NewRecorder()
	h.Upload(w, multipartUpload(t, "photo.pdf", []byte("\x89PNG\r\n\x1a\n0000000000")))

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_MEDIA_TYPE")
}

func TestHTTPHandler_UploadTooLarge(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, nil)
	h := NewHTTPHandler(svc, 16)

	w := httptest.NewRecorder()
	h.Upload(w, multipartUpload(t, "big.pdf", samplePDF))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestHTTPHandler_UploadMissingFile(t *testing.T) {
	svc, _, _, _ := newTestService(t, 1, nil)
	h := NewHTTPHandler(svc, 1<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "No file"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/admin/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	h.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestHTTPHandler_Download(t *testing.T) {
	svc, repo, fs, _ := newTestService(t, 1, nil)
	_, err := fs.Put(context.Background(), "documents/d1.pdf", bytes.NewReader(samplePDF))
	require.NoError(t, err)
	repo.On("GetByID", mock.Anything, "d1").Return(Document{
		ID: "d1", Filename: "guide.pdf", StorageKey: "documents/d1.pdf",
		SizeBytes: int64(len(samplePDF)), ContentType: ContentTypePDF,
	}, nil)
	h := NewHTTPHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/documents/d1/download", nil)
	req.SetPathValue("id", "d1")
	w := httptest.NewRecorder()
	h.Download(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypePDF, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=guide.pdf`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, samplePDF, w.Body.Bytes())
}

func TestHTTPHandler_GetNotFound(t *testing.T) {
	svc, repo, _, _ := newTestService(t, 1, nil)
	repo.On("GetByID", mock.Anything, "nope").Return(Document{}, ErrNotFound)
	h := NewHTTPHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/documents/nope", nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
