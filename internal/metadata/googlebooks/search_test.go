package googlebooks

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient("test-key", logger)
	c.SetBaseURL(server.URL)
	return c
}

func TestSearch_MapsVolumes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dune", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"id": "abc",
				"volumeInfo": {
					"title": "Dune",
					"authors": ["Frank Herbert", "Someone Else"],
					"description": "<p>Desert <b>planet</b></p>",
					"pageCount": 412,
					"publishedDate": "1965",
					"imageLinks": {"thumbnail": "http://books.google.com/cover.jpg"},
					"industryIdentifiers": [
						{"type": "ISBN_10", "identifier": "0441013597"},
						{"type": "ISBN_13", "identifier": "9780441013593"}
					]
				}
			}]
		}`))
	})

	results, err := c.Search(t.Context(), "dune")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "Dune", r.Title)
	assert.Equal(t, "Frank Herbert", r.Author)
	assert.Equal(t, "9780441013593", r.ISBN)
	assert.Equal(t, "https://books.google.com/cover.jpg", r.CoverImageURL)
	require.NotNil(t, r.Pages)
	assert.Equal(t, 412, *r.Pages)
	assert.Equal(t, "1965", r.PublishedDate)
	// HTML description converted to markdown.
	assert.Equal(t, "Desert **planet**", r.Description)
}

func TestSearch_NoItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	})

	results, err := c.Search(t.Context(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_BlankQueryMakesNoRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	results, err := c.Search(t.Context(), "  ")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestSearch_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Search(t.Context(), "dune")
	assert.ErrorContains(t, err, "status 429")
}

func TestSearchByISBN_UsesOperator(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9780441013593", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	})

	_, err := c.SearchByISBN(t.Context(), "9780441013593")
	require.NoError(t, err)
}

func TestPickISBN_FallsBackToISBN10(t *testing.T) {
	ids := []industryIdentifier{{Type: "ISBN_10", Identifier: "0441013597"}}
	assert.Equal(t, "0441013597", pickISBN(ids))
	assert.Empty(t, pickISBN(nil))
}
