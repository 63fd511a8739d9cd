// Package fetch provides the default page-fetch collaborator: a plain HTTP
// client with bounded timeouts and a response size cap, suitable for the
// extraction engine's document sources.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPFetcher implements core.Fetcher over net/http.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// Options tune the fetcher.
type Options struct {
	Timeout  time.Duration
	MaxBytes int64
	Client   *http.Client
}

// NewHTTPFetcher builds a fetcher with an 8s default timeout and a 512 KiB
// response cap, enough for contact pages without buffering whole sites.
func NewHTTPFetcher(optFns ...func(o *Options)) *HTTPFetcher {
	opts := Options{
		Timeout:  8 * time.Second,
		MaxBytes: 512 << 10,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPFetcher{client: client, maxBytes: opts.MaxBytes}
}

// Fetch retrieves a URL's body as text. The caller's context carries the
// per-document deadline; the client timeout is a second backstop.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "clarion/1.0 (emergency response assistant)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
