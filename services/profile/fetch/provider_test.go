package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProviderScrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/scrape", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req scrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"markdown", "html"}, req.Formats)
		require.Equal(t, renderWaitMs, req.WaitFor)
		require.Equal(t, browserUserAgent, req.Headers["User-Agent"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scrapeResponse{
			Success: true,
			Data:    Document{Markdown: "# Jane Doe", Html: "<h1>Jane Doe</h1>"},
		})
	}))
	defer server.Close()

	client := NewProviderClient(ProviderConfig{BaseUrl: server.URL, ApiKey: "test-key"})
	doc, err := client.Scrape(context.Background(), "https://example.com/jane-doe")
	require.NoError(t, err)
	require.Equal(t, "# Jane Doe", doc.Markdown)
	require.Equal(t, "<h1>Jane Doe</h1>", doc.Html)
}

func TestProviderScrapeUnsuccessful(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scrapeResponse{Success: false, Error: "page blocked"})
	}))
	defer server.Close()

	client := NewProviderClient(ProviderConfig{BaseUrl: server.URL, ApiKey: "test-key"})
	_, err := client.Scrape(context.Background(), "https://example.com/jane-doe")
	require.ErrorContains(t, err, "scrape unsuccessful: page blocked")
}

func TestProviderScrapeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(scrapeResponse{Success: false, Error: "rate limited"})
	}))
	defer server.Close()

	client := NewProviderClient(ProviderConfig{BaseUrl: server.URL, ApiKey: "test-key"})
	_, err := client.Scrape(context.Background(), "https://example.com/jane-doe")

	var status *StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, http.StatusTooManyRequests, status.Code)
	require.Equal(t, "rate limited", status.Message)
}

func TestProviderCrawlLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/crawl":
			json.NewEncoder(w).Encode(crawlSubmitResponse{Success: true, Id: "job-42"})
		case "/v1/crawl/job-42":
			json.NewEncoder(w).Encode(crawlStatusResponse{
				Success: true,
				Status:  "completed",
				Data: []Document{
					{Markdown: "page", Metadata: DocumentMetadata{SourceUrl: "https://example.com/p"}},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewProviderClient(ProviderConfig{BaseUrl: server.URL, ApiKey: "test-key"})

	id, err := client.SubmitCrawl(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Equal(t, "job-42", id)

	status, docs, err := client.CrawlStatus(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "completed", status)
	require.Len(t, docs, 1)
	require.Equal(t, "https://example.com/p", docs[0].Metadata.SourceUrl)
}
