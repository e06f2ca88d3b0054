package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetBooksByISBN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "ISBN:9780141439518,ISBN:0000000000", r.URL.Query().Get("bibkeys"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ISBN:9780141439518":{"title":"Pride and Prejudice","authors":[{"name":"Jane Austen"}],"number_of_pages":480,"notes":{"type":"/type/text","value":"Classic"}}}`))
	}))
	defer srv.Close()

	c := NewClient("test-agent", 100, 0).WithBaseURL(srv.URL)

	res, err := c.GetBooksByISBN(context.Background(), []string{"9780141439518", "0000000000"})
	require.NoError(t, err)
	require.Len(t, res, 1)

	d := res["9780141439518"]
	assert.Equal(t, "Pride and Prejudice", d.Title)
	assert.Equal(t, "Jane Austen", d.Authors[0].Name)
	assert.Equal(t, 480, d.NumberOfPages)
	assert.Equal(t, "Classic", d.NotesText())
}

func TestClient_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("test-agent", 100, 1).WithBaseURL(srv.URL)

	res, err := c.GetBooksByISBN(context.Background(), []string{"123"})
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-agent", 100, 3).WithBaseURL(srv.URL)

	_, err := c.GetBooksByISBN(context.Background(), []string{"123"})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
