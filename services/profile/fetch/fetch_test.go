package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type step struct {
	doc Document
	err error
}

type scriptedScraper struct {
	t     *testing.T
	steps []step
	calls int
}

func (s *scriptedScraper) Scrape(ctx context.Context, url string) (Document, error) {
	if s.calls >= len(s.steps) {
		s.t.Fatal("scraper called more often than scripted")
	}
	st := s.steps[s.calls]
	s.calls++
	return st.doc, st.err
}

func newRecordingClient(t *testing.T, steps []step) (*scriptedScraper, Client, *[]time.Duration) {
	scraper := &scriptedScraper{t: t, steps: steps}
	var sleeps []time.Duration
	client := NewWithSleeper(scraper, Config{}, func(_ context.Context, d time.Duration) {
		sleeps = append(sleeps, d)
	})
	return scraper, client, &sleeps
}

func TestFetchSuccess(t *testing.T) {
	scraper, client, sleeps := newRecordingClient(t, []step{
		{doc: Document{Markdown: "# Jane Doe", Html: "<h1>Jane Doe</h1>"}},
	})

	result := client.Fetch(context.Background(), "https://example.com/agent")

	require.True(t, result.Succeeded)
	require.Equal(t, "# Jane Doe", result.Markdown)
	require.Equal(t, "<h1>Jane Doe</h1>", result.Markup)
	require.Equal(t, 1, scraper.calls)
	require.Empty(t, *sleeps)
}

func TestFetchRateLimitExhaustion(t *testing.T) {
	rateLimited := &StatusError{Code: 429, Message: "Too Many Requests"}
	scraper, client, sleeps := newRecordingClient(t, []step{
		{err: rateLimited}, {err: rateLimited}, {err: rateLimited},
	})

	result := client.Fetch(context.Background(), "https://example.com/agent")

	require.False(t, result.Succeeded)
	require.Equal(t, "max retries exceeded", result.FailureReason)
	require.Equal(t, 3, scraper.calls)
	// backoff grows linearly with the attempt number
	require.Equal(t, []time.Duration{
		defaultBaseDelay * 1,
		defaultBaseDelay * 2,
		defaultBaseDelay * 3,
	}, *sleeps)
}

func TestFetchServerErrorRecovery(t *testing.T) {
	scraper, client, sleeps := newRecordingClient(t, []step{
		{err: &StatusError{Code: 503, Message: "Service Unavailable"}},
		{doc: Document{Markdown: "recovered"}},
	})

	result := client.Fetch(context.Background(), "https://example.com/agent")

	require.True(t, result.Succeeded)
	require.Equal(t, 2, scraper.calls)
	// server distress backs off twice as hard as a rate limit
	require.Equal(t, []time.Duration{defaultBaseDelay * 1 * 2}, *sleeps)
}

func TestFetchTimeoutTreatedAsServerDistress(t *testing.T) {
	_, client, sleeps := newRecordingClient(t, []step{
		{err: &StatusError{Code: 408, Message: "Request Timeout"}},
		{doc: Document{Markdown: "ok"}},
	})

	result := client.Fetch(context.Background(), "https://example.com/agent")

	require.True(t, result.Succeeded)
	require.Equal(t, []time.Duration{defaultBaseDelay * 2}, *sleeps)
}

func TestFetchOtherErrorFinalAttemptVerbatim(t *testing.T) {
	scraper, client, sleeps := newRecordingClient(t, []step{
		{err: errors.New("scrape unsuccessful: page blocked")},
		{err: errors.New("scrape unsuccessful: page blocked")},
		{err: errors.New("scrape unsuccessful: page blocked")},
	})

	result := client.Fetch(context.Background(), "https://example.com/agent")

	require.False(t, result.Succeeded)
	require.Equal(t, "scrape unsuccessful: page blocked", result.FailureReason)
	require.Equal(t, 3, scraper.calls)
	// non-final attempts back off by the flat base delay
	require.Equal(t, []time.Duration{defaultBaseDelay, defaultBaseDelay}, *sleeps)
}

func TestFetchConfigOverridesDelay(t *testing.T) {
	scraper := &scriptedScraper{t: t, steps: []step{
		{err: &StatusError{Code: 429, Message: "Too Many Requests"}},
		{doc: Document{Markdown: "ok"}},
	}}
	var sleeps []time.Duration
	client := NewWithSleeper(scraper, Config{BaseDelay: time.Millisecond * 10}, func(_ context.Context, d time.Duration) {
		sleeps = append(sleeps, d)
	})

	result := client.Fetch(context.Background(), "https://example.com/agent")

	require.True(t, result.Succeeded)
	require.Equal(t, []time.Duration{time.Millisecond * 10}, sleeps)
}

type scriptedCrawler struct {
	submitErr error
	statuses  []string
	docs      []Document
	polls     int
}

func (c *scriptedCrawler) SubmitCrawl(ctx context.Context, url string) (string, error) {
	if c.submitErr != nil {
		return "", c.submitErr
	}
	return "job-1", nil
}

func (c *scriptedCrawler) CrawlStatus(ctx context.Context, id string) (string, []Document, error) {
	status := c.statuses[c.polls]
	c.polls++
	if status == "completed" {
		return status, c.docs, nil
	}
	return status, nil, nil
}

func TestFetchCrawlCompletes(t *testing.T) {
	crawler := &scriptedCrawler{
		statuses: []string{"completed"},
		docs: []Document{
			{Markdown: "page one"},
			{Markdown: "page two"},
		},
	}
	client := NewWithSleeper(&scriptedScraper{t: t}, Config{}, func(context.Context, time.Duration) {})

	result := client.FetchCrawl(context.Background(), crawler, "https://example.com")

	require.True(t, result.Succeeded)
	require.Len(t, result.Documents, 2)
}

func TestFetchCrawlJobFailure(t *testing.T) {
	crawler := &scriptedCrawler{statuses: []string{"failed"}}
	client := NewWithSleeper(&scriptedScraper{t: t}, Config{}, func(context.Context, time.Duration) {})

	result := client.FetchCrawl(context.Background(), crawler, "https://example.com")

	require.False(t, result.Succeeded)
	require.Equal(t, "crawl job failed", result.FailureReason)
}

func TestFetchCrawlSubmitRetriesExhausted(t *testing.T) {
	crawler := &scriptedCrawler{submitErr: &StatusError{Code: 500, Message: "Internal Server Error"}}
	var sleeps []time.Duration
	client := NewWithSleeper(&scriptedScraper{t: t}, Config{}, func(_ context.Context, d time.Duration) {
		sleeps = append(sleeps, d)
	})

	result := client.FetchCrawl(context.Background(), crawler, "https://example.com")

	require.False(t, result.Succeeded)
	require.Equal(t, "max retries exceeded", result.FailureReason)
	require.Equal(t, []time.Duration{
		defaultBaseDelay * 1 * 2,
		defaultBaseDelay * 2 * 2,
		defaultBaseDelay * 3 * 2,
	}, sleeps)
}
