// Package profile runs the full pipeline for one agent page: fetch the
// rendered document, extract fields, reconcile against the stored record
// and persist the result.
package profile

import (
	"context"
	"database/sql"
	"log/slog"

	"agentsite-backend/services/profile/extract"
	"agentsite-backend/services/profile/fetch"
	"agentsite-backend/services/profile/merge"
	"agentsite-backend/services/profile/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/profile")

type Service struct {
	fetcher fetch.Client
	store   store.Store
}

func NewService(fetcher fetch.Client, database *sql.DB) Service {
	return Service{
		fetcher: fetcher,
		store:   store.New(database),
	}
}

// ScrapeResult is what one pipeline run hands back to the caller. Warnings
// aggregates extraction diagnostics and reconciliation notices.
type ScrapeResult struct {
	Profile   extract.Profile
	Overrides merge.FieldOverrides
	Warnings  []string
}

// Scrape runs fetch, extract, reconcile and upsert for one url. When the
// fetch terminally fails, an already stored record is left untouched; a
// shell record is written only for urls never seen before, so the operator
// can see the failed attempt. Extraction and reconciliation never fail,
// only the store can return an error.
func (s Service) Scrape(ctx context.Context, url string) (ScrapeResult, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	result := s.fetcher.Fetch(ctx, url)
	if !result.Succeeded {
		slog.WarnContext(ctx, "fetch failed", "url", url, "reason", result.FailureReason)
		scraped, err := s.recordFetchFailure(ctx, url, result.FailureReason)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return ScrapeResult{}, err
		}
		return scraped, nil
	}

	profile := extract.Extract(url, result.Markdown, result.Markup)
	span.SetAttributes(
		attribute.Bool("extraction.succeeded", profile.Succeeded),
		attribute.Int("extraction.warnings", len(profile.Warnings)),
	)

	existing, err := s.store.GetBySourceUrl(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScrapeResult{}, err
	}

	overrides, notices := merge.Reconcile(profile, existing)
	warnings := append(append([]string{}, profile.Warnings...), notices...)

	err = s.store.Upsert(ctx, overrides)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScrapeResult{}, err
	}

	slog.InfoContext(ctx, "profile scraped",
		"url", url,
		"slug", overrides.WebsiteSlug,
		"succeeded", profile.Succeeded,
		"warnings", len(warnings),
	)
	return ScrapeResult{Profile: profile, Overrides: overrides, Warnings: warnings}, nil
}

// recordFetchFailure handles the terminal-failure path. An existing record
// holds real data from a previous run; reconciling an empty shell over it
// would blank every last-extraction-wins field, so the write is skipped
// entirely and only the warnings are surfaced.
func (s Service) recordFetchFailure(ctx context.Context, url, reason string) (ScrapeResult, error) {
	profile := extract.FailedShell(url, reason)

	existing, err := s.store.GetBySourceUrl(ctx, url)
	if err != nil {
		return ScrapeResult{}, err
	}
	if existing != nil {
		return ScrapeResult{Profile: profile, Warnings: profile.Warnings}, nil
	}

	overrides, _ := merge.Reconcile(profile, nil)
	err = s.store.Upsert(ctx, overrides)
	if err != nil {
		return ScrapeResult{}, err
	}
	return ScrapeResult{Profile: profile, Overrides: overrides, Warnings: profile.Warnings}, nil
}

// Get returns the stored record for a url, or nil when none exists.
func (s Service) Get(ctx context.Context, url string) (*merge.StoredRecord, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	record, err := s.store.GetBySourceUrl(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return record, nil
}

// ScrapeCrawl runs the async crawl-job variant: every page the provider
// discovered under the url is extracted and upserted independently. The
// page's own source url keys each record.
func (s Service) ScrapeCrawl(ctx context.Context, crawler fetch.Crawler, url string) ([]ScrapeResult, error) {
	ctx, span := tracer.Start(ctx, "ScrapeCrawl")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	crawl := s.fetcher.FetchCrawl(ctx, crawler, url)
	if !crawl.Succeeded {
		slog.WarnContext(ctx, "crawl failed", "url", url, "reason", crawl.FailureReason)
		scraped, err := s.recordFetchFailure(ctx, url, crawl.FailureReason)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		return []ScrapeResult{scraped}, nil
	}

	var results []ScrapeResult
	for _, doc := range crawl.Documents {
		pageUrl := doc.Metadata.SourceUrl
		if pageUrl == "" {
			pageUrl = url
		}
		profile := extract.Extract(pageUrl, doc.Markdown, doc.Html)

		existing, err := s.store.GetBySourceUrl(ctx, pageUrl)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		overrides, notices := merge.Reconcile(profile, existing)
		warnings := append(append([]string{}, profile.Warnings...), notices...)

		err = s.store.Upsert(ctx, overrides)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		results = append(results, ScrapeResult{Profile: profile, Overrides: overrides, Warnings: warnings})
	}
	return results, nil
}

// List exposes the store's summary listing for the CLI.
func (s Service) List(ctx context.Context) ([]store.Summary, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	summaries, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return summaries, nil
}
