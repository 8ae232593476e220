package wordpress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSection_PaginatesUntilInvalidPage(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.Equal(t, "/plugin-handbook", r.URL.Path)

		switch page {
		case "1":
			fmt.Fprint(w, `[{"id":10,"link":"https://wp.test/a","title":{"rendered":"Page A"},"content":{"rendered":"<p>a</p>"}}]`)
		case "2":
			fmt.Fprint(w, `[{"id":11,"link":"https://wp.test/b","title":{"rendered":"Page B"},"content":{"rendered":"<p>b</p>"}}]`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"code":"rest_post_invalid_page_number","message":"The page number requested is larger than the number of pages available."}`)
		}
	}))
	defer srv.Close()

	docs, err := NewClient(srv.URL).FetchSection(context.Background(), "plugin")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, []string{"1", "2", "3"}, pages)

	assert.Equal(t, "10", docs[0].ID)
	assert.Equal(t, "Page A", docs[0].Title)
	assert.Equal(t, "https://wp.test/a", docs[0].URL)
	assert.Equal(t, "<p>a</p>", docs[0].ContentHTML)
}

func TestFetchSection_UnsupportedSection(t *testing.T) {
	_, err := NewClient("http://unused").FetchSection(context.Background(), "themes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported section")
}

func TestFetchSection_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchSection(context.Background(), "plugin")
	require.Error(t, err)

	var retryable *RetryableError
	assert.True(t, errors.As(err, &retryable))
	assert.Equal(t, http.StatusServiceUnavailable, retryable.StatusCode)
}

func TestFetchSection_RateLimitIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchSection(context.Background(), "plugin")
	var retryable *RetryableError
	require.True(t, errors.As(err, &retryable))
}

func TestFetchSection_NotFoundIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchSection(context.Background(), "plugin")
	require.Error(t, err)

	var retryable *RetryableError
	assert.False(t, errors.As(err, &retryable))
}

func TestToDocument_Fallbacks(t *testing.T) {
	item := apiItem{Link: "https://wp.test/only-link"}
	doc := item.toDocument()

	assert.Equal(t, "https://wp.test/only-link", doc.ID, "id falls back to link")
	assert.Equal(t, "WordPress Documentation", doc.Title, "title falls back to a default")
}
