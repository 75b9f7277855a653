package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectScraperReturnsMarkupOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>Jane Doe</h1></body></html>"))
	}))
	defer server.Close()

	scraper, err := NewDirectScraper()
	require.NoError(t, err)

	doc, err := scraper.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "", doc.Markdown)
	require.Contains(t, doc.Html, "<h1>Jane Doe</h1>")
}

func TestDirectScraperStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	scraper, err := NewDirectScraper()
	require.NoError(t, err)

	_, err = scraper.Scrape(context.Background(), server.URL)
	var status *StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, http.StatusForbidden, status.Code)
}

func TestDirectScraperEmptyDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	scraper, err := NewDirectScraper()
	require.NoError(t, err)

	_, err = scraper.Scrape(context.Background(), server.URL)
	require.ErrorContains(t, err, "empty document")
}
