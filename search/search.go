// Package search implements the Searcher collaborator over the Brave Search
// web API. It backs the information agent's situation summaries and the
// resource agent's source discovery.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/clarionhq/clarion/core"
)

const defaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Options configure the search client.
type Options struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

// Client is a thin Searcher over the web search API. It is safe for
// concurrent use.
type Client struct {
	apiKey string
	opts   Options
}

// NewClient builds a search client. The API key is required; callers without
// one should pass a nil Searcher into the agents instead.
func NewClient(apiKey string, optFns ...func(o *Options)) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search: API key is required")
	}
	opts := Options{
		Endpoint: defaultEndpoint,
		Timeout:  8 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{apiKey: apiKey, opts: opts}, nil
}

type webResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements core.Searcher.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	if limit < 1 {
		limit = 1
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("count", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: unexpected status %d", query, resp.StatusCode)
	}

	var body webResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("search %q: decode response: %w", query, err)
	}

	results := make([]core.SearchResult, 0, limit)
	for _, r := range body.Web.Results {
		if len(results) == limit {
			break
		}
		results = append(results, core.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}
	return results, nil
}

var _ core.Searcher = (*Client)(nil)
