package partner

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// ErrFeedNotFound is returned when the feed URL answers 404, either with the
// status code or with the bare "404: Not Found" body some file hosts send.
var ErrFeedNotFound = errors.New("partner feed not found")

var notFoundBody = []byte("404: Not Found")

// Fetcher downloads partner feeds.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher creates a Fetcher whose requests give up after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/x-yaml, text/yaml, text/plain, */*")
	return &Fetcher{client: client}
}

// Fetch returns the raw feed document at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch partner feed %s", url)
	}

	body := resp.Body()
	if resp.StatusCode() == http.StatusNotFound || bytes.Equal(bytes.TrimSpace(body), notFoundBody) {
		return nil, ErrFeedNotFound
	}
	if resp.IsError() {
		return nil, errors.Errorf("fetch partner feed %s: unexpected status %d", url, resp.StatusCode())
	}
	return body, nil
}
