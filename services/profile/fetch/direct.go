package fetch

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"agentsite-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// DirectScraper fetches the page itself when no provider key is configured.
// It only yields raw markup; the extraction engine falls back to the markup
// text rendering for its markdown-driven strategies.
type DirectScraper struct {
	http *resty.Client
}

func NewDirectScraper() (DirectScraper, error) {
	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return DirectScraper{}, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	httpClient.SetHeader("user-agent", browserUserAgent)
	httpClient.SetTimeout(time.Second * 25)

	telemetry.InstrumentResty(httpClient, "services/profile/fetch.direct")

	return DirectScraper{http: httpClient}, nil
}

func (s DirectScraper) Scrape(ctx context.Context, url string) (Document, error) {
	res, err := s.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return Document{}, err
	}
	if res.StatusCode() != 200 {
		return Document{}, &StatusError{Code: res.StatusCode(), Message: res.Status()}
	}
	body := res.String()
	if body == "" {
		return Document{}, fmt.Errorf("fetched an empty document")
	}
	return Document{Html: body}, nil
}
