package fetcher

import (
	"context"
	"io"

	"rdelorme/pricewatcher/helpers"
)

// Fetcher obtains raw page content for a URL. The pipeline only ever sees
// this interface; the network lives behind it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over plain HTTP with randomized browser-like
// headers and UTF-8 normalization.
type HTTPFetcher struct{}

// NewHTTPFetcher creates an HTTP fetcher
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{}
}

// Fetch retrieves the page body as a UTF-8 string
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := helpers.FetchWithRandomHeaders(ctx, url)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
