package fetch

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Crawler is the asynchronous submit/poll provider surface.
type Crawler interface {
	SubmitCrawl(ctx context.Context, url string) (string, error)
	CrawlStatus(ctx context.Context, id string) (status string, docs []Document, err error)
}

// CrawlResult mirrors Result for the multi-page crawl-job variant.
type CrawlResult struct {
	Succeeded     bool
	Documents     []Document
	FailureReason string
}

const crawlPollInterval = time.Second * 5

// FetchCrawl runs the submit/poll/complete lifecycle of a crawl job with
// the same attempt budget and backoff classification as single-page
// fetches: submission and each poll retry transient provider failures
// before giving up.
func (c Client) FetchCrawl(ctx context.Context, crawler Crawler, url string) CrawlResult {
	ctx, span := tracer.Start(ctx, "FetchCrawl")
	defer span.End()

	var jobId string
	submitted := c.withRetries(ctx, func() error {
		id, err := crawler.SubmitCrawl(ctx, url)
		jobId = id
		return err
	})
	if submitted != "" {
		return CrawlResult{FailureReason: submitted}
	}

	for {
		var status string
		var docs []Document
		polled := c.withRetries(ctx, func() error {
			s, d, err := crawler.CrawlStatus(ctx, jobId)
			status, docs = s, d
			return err
		})
		if polled != "" {
			return CrawlResult{FailureReason: polled}
		}

		switch status {
		case "completed":
			return CrawlResult{Succeeded: true, Documents: docs}
		case "failed", "cancelled":
			return CrawlResult{FailureReason: fmt.Sprintf("crawl job %s", status)}
		}

		select {
		case <-ctx.Done():
			return CrawlResult{FailureReason: ctx.Err().Error()}
		case <-time.After(crawlPollInterval):
		}
	}
}

// withRetries applies the fetch backoff policy to one provider call and
// returns the terminal failure reason, or "" on success.
func (c Client) withRetries(ctx context.Context, call func() error) string {
	span := trace.SpanFromContext(ctx)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := call()
		if err == nil {
			return ""
		}
		span.AddEvent(fmt.Sprintf("attempt %d failed: %s", attempt, err.Error()))

		switch classifyFailure(err) {
		case failureRateLimited:
			c.sleep(ctx, c.baseDelay*time.Duration(attempt))
		case failureServerDistress:
			c.sleep(ctx, c.baseDelay*time.Duration(attempt)*2)
		default:
			if attempt == c.maxAttempts {
				return err.Error()
			}
			c.sleep(ctx, c.baseDelay)
		}
	}
	return "max retries exceeded"
}
