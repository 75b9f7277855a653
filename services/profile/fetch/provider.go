package fetch

import (
	"context"
	"fmt"
	"time"

	"agentsite-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// browser identification handed to the provider so that anti-bot gates see
// an ordinary desktop session
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// renderWaitMs gives client-rendered profile widgets time to settle before
// the provider captures the page
const renderWaitMs = 3000

// StatusError is a non-2xx reply from the scrape provider. Fetch uses the
// code to pick a backoff class.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.Code, e.Message)
}

// Document is one rendered page as returned by the provider. Metadata is
// only populated on crawl results, where each page carries its own url.
type Document struct {
	Markdown string           `json:"markdown"`
	Html     string           `json:"html"`
	Metadata DocumentMetadata `json:"metadata"`
}

type DocumentMetadata struct {
	SourceUrl string `json:"sourceURL"`
}

type ProviderConfig struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
}

// ProviderClient talks to the remote render/scrape provider. It is a thin
// transport: retry policy lives in Client, not here.
type ProviderClient struct {
	http *resty.Client
}

func NewProviderClient(config ProviderConfig) ProviderClient {
	httpClient := resty.New()
	httpClient.SetBaseURL(config.BaseUrl)
	httpClient.SetAuthToken(config.ApiKey)
	// strictly shorter than the overall attempt budget
	httpClient.SetTimeout(time.Second * 25)

	// 2 requests max per second
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(2, 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, "services/profile/fetch")

	return ProviderClient{http: httpClient}
}

type scrapeRequest struct {
	Url     string            `json:"url"`
	Formats []string          `json:"formats"`
	WaitFor int               `json:"waitFor"`
	Headers map[string]string `json:"headers,omitempty"`
}

type scrapeResponse struct {
	Success bool     `json:"success"`
	Data    Document `json:"data"`
	Error   string   `json:"error"`
}

// Scrape renders one page and returns its markdown and raw markup.
func (c ProviderClient) Scrape(ctx context.Context, url string) (Document, error) {
	var body scrapeResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(scrapeRequest{
			Url:     url,
			Formats: []string{"markdown", "html"},
			WaitFor: renderWaitMs,
			Headers: map[string]string{"User-Agent": browserUserAgent},
		}).
		SetResult(&body).
		SetError(&body).
		Post("/v1/scrape")
	if err != nil {
		return Document{}, err
	}
	if res.StatusCode() != 200 {
		return Document{}, &StatusError{Code: res.StatusCode(), Message: body.Error}
	}
	if !body.Success {
		return Document{}, fmt.Errorf("scrape unsuccessful: %s", body.Error)
	}
	if body.Data.Markdown == "" && body.Data.Html == "" {
		return Document{}, fmt.Errorf("scrape returned an empty document")
	}
	return body.Data, nil
}

type crawlSubmitResponse struct {
	Success bool   `json:"success"`
	Id      string `json:"id"`
	Error   string `json:"error"`
}

type crawlStatusResponse struct {
	Success bool       `json:"success"`
	Status  string     `json:"status"`
	Error   string     `json:"error"`
	Data    []Document `json:"data"`
}

// SubmitCrawl starts an asynchronous crawl job and returns its id.
func (c ProviderClient) SubmitCrawl(ctx context.Context, url string) (string, error) {
	var body crawlSubmitResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"url": url}).
		SetResult(&body).
		SetError(&body).
		Post("/v1/crawl")
	if err != nil {
		return "", err
	}
	if res.StatusCode() != 200 {
		return "", &StatusError{Code: res.StatusCode(), Message: body.Error}
	}
	if !body.Success || body.Id == "" {
		return "", fmt.Errorf("crawl submit unsuccessful: %s", body.Error)
	}
	return body.Id, nil
}

// CrawlStatus polls one crawl job.
func (c ProviderClient) CrawlStatus(ctx context.Context, id string) (status string, docs []Document, err error) {
	var body crawlStatusResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		SetError(&body).
		Get("/v1/crawl/" + id)
	if err != nil {
		return "", nil, err
	}
	if res.StatusCode() != 200 {
		return "", nil, &StatusError{Code: res.StatusCode(), Message: body.Error}
	}
	return body.Status, body.Data, nil
}
