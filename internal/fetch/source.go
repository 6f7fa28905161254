package fetch

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chech0x/parsedBible/core/errors"
	"github.com/chech0x/parsedBible/internal/logging"
)

// Defaults for the BibleGateway source.
const (
	DefaultBaseURL   = "https://www.biblegateway.com/passage/"
	DefaultUserAgent = "Mozilla/5.0 (compatible; parsedBible-fetch/1.0)"
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 2
	DefaultRetryWait = 500 * time.Millisecond
)

// Source retrieves the raw markup behind a chapter URL.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	UserAgent string
}

// HTTPSource fetches markup over HTTP.
type HTTPSource struct {
	client *resty.Client
}

// NewHTTPSource creates an HTTPSource. Zero durations and an empty user
// agent take the package defaults. Retries of 0 disables retrying.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = DefaultRetryWait
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept-Charset", "utf-8")
	client.SetRetryCount(cfg.Retries)
	client.SetRetryWaitTime(cfg.RetryWait)
	client.SetRetryMaxWaitTime(10 * cfg.RetryWait)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		code := r.StatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	})
	logging.InstrumentClient(client)

	return &HTTPSource{client: client}
}

// Fetch performs a GET and returns the body. Transport failures and
// statuses >= 400 are reported as FetchError.
func (s *HTTPSource) Fetch(ctx context.Context, target string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, errors.NewFetch(target, 0, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, errors.NewFetch(target, resp.StatusCode(), nil)
	}
	return resp.Body(), nil
}

// ChapterURL builds the passage URL for one chapter, e.g.
// https://www.biblegateway.com/passage/?search=Song%20of%20Solomon%203&version=NTV
func ChapterURL(baseURL, bookName string, chapter int, version string) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep +
		"search=" + queryEscape(bookName+" "+strconv.Itoa(chapter)) +
		"&version=" + queryEscape(version)
}

// queryEscape escapes s for a query value with spaces as %20.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
