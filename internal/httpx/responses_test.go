package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSuccess_IncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "req-1"))
	w := httptest.NewRecorder()

	JSONSuccess(w, req, map[string]string{"key": "value"}, map[string]any{"total": 10})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Meta    map[string]any    `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "value", resp.Data["key"])
	assert.Equal(t, "req-1", resp.Meta["request_id"])
	assert.EqualValues(t, 10, resp.Meta["total"])
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	details := []ErrorDetail{{Field: "email", Message: "email is required"}}

	JSONError(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, details, resp.Error.Details)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name" validate:"required"`
	}

	var dst body
	w := httptest.NewRecorder()
	ok := DecodeJSON(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`)), &dst)
	assert.True(t, ok)
	assert.Equal(t, "x", dst.Name)

	w = httptest.NewRecorder()
	ok = DecodeJSON(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	ok = DecodeJSON(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), &body{})
	assert.False(t, ok)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestPageFrom(t *testing.T) {
	p := PageFrom(httptest.NewRequest(http.MethodGet, "/?page=3&page_size=500", nil))
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 5, p.Meta(81)["total_pages"])
}
