// Package company resolves root domains to company names, backed by the
// Clearbit autocomplete API and a local account cache.
package company

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const DefaultSuggestURL = "https://autocomplete.clearbit.com/v1/companies/suggest"

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Suggestion is one company candidate returned by the autocomplete API.
type Suggestion struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Logo   string `json:"logo"`
}

// Suggester looks up company candidates for a domain.
type Suggester interface {
	Suggest(ctx context.Context, domain string) ([]Suggestion, error)
}

// ClearbitClient queries the public Clearbit autocomplete endpoint.
// The endpoint needs no authentication.
type ClearbitClient struct {
	base   string
	client HTTPDoer
}

func NewClearbitClient(base string, client HTTPDoer) *ClearbitClient {
	if base == "" {
		base = DefaultSuggestURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ClearbitClient{base: base, client: client}
}

func (c *ClearbitClient) Suggest(ctx context.Context, domain string) ([]Suggestion, error) {
	u := c.base + "?query=" + url.QueryEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build suggest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggest %s: unexpected status %d", domain, resp.StatusCode)
	}

	var suggestions []Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions for %s: %w", domain, err)
	}
	return suggestions, nil
}
