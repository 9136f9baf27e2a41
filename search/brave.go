package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

const defaultBraveURL = "https://api.search.brave.com/res/v1/web/search"

// BraveEngine uses the Brave Search API. An API key is sent via
// X-Subscription-Token.
type BraveEngine struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewBraveEngine constructs the Brave adapter. Use NewEngine to get the
// credential check.
func NewBraveEngine(cfg EngineConfig) *BraveEngine {
	endpoint := cfg.BraveURL
	if endpoint == "" {
		endpoint = defaultBraveURL
	}
	return &BraveEngine{apiKey: cfg.BraveAPIKey, endpoint: endpoint, client: cfg.client()}
}

// Name implements Engine.
func (b *BraveEngine) Name() string { return Brave }

// Search implements Engine.
func (b *BraveEngine) Search(ctx context.Context, query string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(Brave, resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		results = append(results, Result{Title: r.Title, Snippet: r.Description, URL: r.URL, Engine: Brave})
	}
	return results, nil
}
