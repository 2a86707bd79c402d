// Package fetcher retrieves transcript pages over http.
package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"time"
	"transcript-scraper/internal/assert"
	"transcript-scraper/internal/telemetry"
	"transcript-scraper/internal/transcript"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_fetch = "client.fetch"
	report_client_retry = "client.retry"
)

const DefaultBaseUrl = "https://chat.stackexchange.com"

type Options struct {
	BaseUrl string
	// Timeout applies to a single request, defaults to 30 seconds.
	Timeout time.Duration
	// Retries is how many times a request is retried on transport errors,
	// 429 and 5xx responses.
	Retries   int
	RetryWait time.Duration
	UserAgent string
	// CloudflareBypass mimics a browser's tls fingerprint and headers.
	CloudflareBypass bool
	// Archive receives the markup of every page that was fetched successfully.
	Archive *PageArchive
}

type Client struct {
	http    *resty.Client
	tel     telemetry.API
	archive *PageArchive
}

func New(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("fetcher", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 2 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	client.SetRetryCount(opts.Retries)
	client.SetRetryWaitTime(opts.RetryWait)
	client.SetRetryMaxWaitTime(opts.RetryWait * 8)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		status := res.StatusCode()
		return status == http.StatusTooManyRequests || status >= 500
	})
	client.AddRetryHook(func(res *resty.Response, err error) {
		if err != nil {
			tel.ReportWarning(report_client_retry, err)
			return
		}
		tel.ReportWarning(report_client_retry, res.Request.URL, res.StatusCode())
	})

	telemetry.InstrumentResty(client, "transcript-scraper/fetcher")

	return &Client{http: client, tel: tel, archive: opts.Archive}, nil
}

// Fetch implements transcript.Fetcher, every failure is a *transcript.FetchError.
func (c *Client) Fetch(ctx context.Context, endpoint string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err, endpoint)
		return "", &transcript.FetchError{URL: endpoint, Err: err}
	}
	if res.IsError() {
		c.tel.ReportBroken(report_client_fetch, res.Status(), endpoint)
		return "", &transcript.FetchError{URL: endpoint, Status: res.StatusCode()}
	}

	c.tel.ReportDebug("fetched page", "url", endpoint, "bytes", len(res.Body()), "elapsed", res.Time().String())
	if c.archive != nil {
		c.archive.Write(endpoint, res.String())
	}
	return res.String(), nil
}
