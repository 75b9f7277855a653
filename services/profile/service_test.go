package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"agentsite-backend/lib/testutil"
	"agentsite-backend/services/profile/db"
	"agentsite-backend/services/profile/extract"
	"agentsite-backend/services/profile/fetch"

	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	docs map[string]fetch.Document
	err  error
}

func (s fakeScraper) Scrape(ctx context.Context, url string) (fetch.Document, error) {
	if s.err != nil {
		return fetch.Document{}, s.err
	}
	doc, ok := s.docs[url]
	if !ok {
		return fetch.Document{}, errors.New("scrape unsuccessful: unknown url")
	}
	return doc, nil
}

// flakyScraper serves scripted documents until err is set, then fails every
// call.
type flakyScraper struct {
	docs map[string]fetch.Document
	err  error
}

func (s *flakyScraper) Scrape(ctx context.Context, url string) (fetch.Document, error) {
	if s.err != nil {
		return fetch.Document{}, s.err
	}
	doc, ok := s.docs[url]
	if !ok {
		return fetch.Document{}, errors.New("scrape unsuccessful: unknown url")
	}
	return doc, nil
}

func setupService(t *testing.T, scraper fetch.Scraper) Service {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "profile",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	client := fetch.NewWithSleeper(scraper, fetch.Config{}, func(context.Context, time.Duration) {})
	return NewService(client, res.DB)
}

const janePage = `# Jane Doe

jane@brokerage.com

Call 972-555-0134 today.
`

func TestScrapePipeline(t *testing.T) {
	url := "https://example.com/jane-doe"
	service := setupService(t, fakeScraper{
		docs: map[string]fetch.Document{url: {Markdown: janePage}},
	})

	result, err := service.Scrape(context.Background(), url)
	require.NoError(t, err)
	require.True(t, result.Profile.Succeeded)
	require.Equal(t, "jane-doe", result.Overrides.WebsiteSlug)

	record, err := service.Get(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "Jane Doe", record.FullName)
	require.Equal(t, "jane@brokerage.com", record.Email)
	require.Equal(t, "(972) 555-0134", record.MobilePhone)
}

func TestScrapeRerunKeepsStoredEmail(t *testing.T) {
	url := "https://example.com/jane-doe"
	scraper := fakeScraper{docs: map[string]fetch.Document{url: {Markdown: janePage}}}
	service := setupService(t, scraper)

	_, err := service.Scrape(context.Background(), url)
	require.NoError(t, err)

	// the page now renders a new inbox and a new phone
	scraper.docs[url] = fetch.Document{Markdown: "# Jane Doe\n\njane.doe@gmail.com\n\nCall 214-555-0000 today.\n"}

	result, err := service.Scrape(context.Background(), url)
	require.NoError(t, err)
	require.Contains(t, result.Warnings,
		"stored email jane@brokerage.com retained over freshly extracted jane.doe@gmail.com")

	record, err := service.Get(context.Background(), url)
	require.NoError(t, err)
	require.Equal(t, "jane@brokerage.com", record.Email)
	require.Equal(t, "(214) 555-0000", record.MobilePhone)
	require.Equal(t, "jane-doe", record.WebsiteSlug)
}

func TestScrapeFetchFailureKeepsExistingRecord(t *testing.T) {
	url := "https://example.com/jane-doe"
	scraper := &flakyScraper{docs: map[string]fetch.Document{url: {Markdown: janePage}}}
	service := setupService(t, scraper)

	_, err := service.Scrape(context.Background(), url)
	require.NoError(t, err)

	// the provider goes down; the record scraped while it was up must
	// survive untouched
	scraper.err = errors.New("scrape unsuccessful: provider outage")

	result, err := service.Scrape(context.Background(), url)
	require.NoError(t, err)
	require.False(t, result.Profile.Succeeded)
	require.Contains(t, result.Warnings, "fetch failed: scrape unsuccessful: provider outage")

	record, err := service.Get(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "Jane Doe", record.FullName)
	require.Equal(t, "jane@brokerage.com", record.Email)
	require.Equal(t, "(972) 555-0134", record.MobilePhone)
	require.Equal(t, "jane-doe", record.WebsiteSlug)
}

func TestScrapeFetchFailureStoresShell(t *testing.T) {
	url := "https://example.com/broken"
	service := setupService(t, fakeScraper{err: errors.New("scrape unsuccessful: page blocked")})

	result, err := service.Scrape(context.Background(), url)
	require.NoError(t, err)
	require.False(t, result.Profile.Succeeded)
	require.Contains(t, result.Warnings, "fetch failed: scrape unsuccessful: page blocked")

	record, err := service.Get(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "", record.FullName)
	require.Equal(t, extract.DefaultBrokerageLogoUrl, record.BrokerageLogoUrl)
}

type fakeCrawler struct {
	docs []fetch.Document
}

func (c fakeCrawler) SubmitCrawl(ctx context.Context, url string) (string, error) {
	return "job-1", nil
}

func (c fakeCrawler) CrawlStatus(ctx context.Context, id string) (string, []fetch.Document, error) {
	return "completed", c.docs, nil
}

func TestScrapeCrawlUpsertsEveryPage(t *testing.T) {
	service := setupService(t, fakeScraper{})

	crawler := fakeCrawler{docs: []fetch.Document{
		{
			Markdown: janePage,
			Metadata: fetch.DocumentMetadata{SourceUrl: "https://example.com/jane-doe"},
		},
		{
			Markdown: "# John Roe\n\njohn@brokerage.com\n",
			Metadata: fetch.DocumentMetadata{SourceUrl: "https://example.com/john-roe"},
		},
	}}

	results, err := service.ScrapeCrawl(context.Background(), crawler, "https://example.com")
	require.NoError(t, err)
	require.Len(t, results, 2)

	record, err := service.Get(context.Background(), "https://example.com/john-roe")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "John Roe", record.FullName)
}
