// Package fetch turns a profile url into rendered page content, absorbing
// the transient failures that are the norm with the upstream scrape
// provider: rate limits, timeouts and 5xx replies are retried with a
// bounded, class-dependent backoff; everything else terminates in a Result,
// never an error.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/profile/fetch")

// Scraper is the provider call the retry loop wraps.
type Scraper interface {
	Scrape(ctx context.Context, url string) (Document, error)
}

// Result is the outcome of one fetch attempt sequence. Constructed once per
// extraction request, immutable, not persisted.
type Result struct {
	Succeeded     bool
	Markdown      string
	Markup        string
	FailureReason string
}

type Config struct {
	// attempts before giving up; zero means the default of 3
	MaxAttempts int `json:"max_attempts"`
	// base backoff unit; zero means the default of 2s. Tests inject a zero
	// config and a recording sleeper instead of mutating globals.
	BaseDelay time.Duration `json:"base_delay"`
}

const defaultMaxAttempts = 3
const defaultBaseDelay = time.Second * 2

// Client retries the provider with a backoff scaled by attempt number and
// failure class. It keeps no state between calls.
type Client struct {
	scraper     Scraper
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration)
}

func New(scraper Scraper, config Config) Client {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaultMaxAttempts
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = defaultBaseDelay
	}
	return Client{
		scraper:     scraper,
		maxAttempts: config.MaxAttempts,
		baseDelay:   config.BaseDelay,
		sleep:       sleepContext,
	}
}

// NewWithSleeper is New with an injected sleep function, for tests that
// assert the backoff schedule.
func NewWithSleeper(scraper Scraper, config Config, sleep func(ctx context.Context, d time.Duration)) Client {
	client := New(scraper, config)
	client.sleep = sleep
	return client
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Fetch never returns an error; every failure mode terminates in a Result
// with FailureReason set.
func (c Client) Fetch(ctx context.Context, url string) Result {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	var doc Document
	reason := c.withRetries(ctx, func() error {
		d, err := c.scraper.Scrape(ctx, url)
		doc = d
		return err
	})
	if reason != "" {
		return Result{FailureReason: reason}
	}
	return Result{
		Succeeded: true,
		Markdown:  doc.Markdown,
		Markup:    doc.Html,
	}
}

type failureClass int

const (
	failureOther failureClass = iota
	failureRateLimited
	failureServerDistress
)

func classifyFailure(err error) failureClass {
	var status *StatusError
	if !errors.As(err, &status) {
		return failureOther
	}
	switch {
	case status.Code == http.StatusTooManyRequests:
		return failureRateLimited
	case status.Code == http.StatusRequestTimeout || status.Code >= 500:
		return failureServerDistress
	}
	return failureOther
}
