package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// SearxNGEngine queries a self-hosted SearxNG instance through its JSON
// output format.
type SearxNGEngine struct {
	baseURL  string
	language string
	client   *http.Client
}

// NewSearxNGEngine constructs the SearxNG adapter. Use NewEngine to get the
// base URL check.
func NewSearxNGEngine(cfg EngineConfig) *SearxNGEngine {
	return &SearxNGEngine{
		baseURL:  strings.TrimRight(cfg.SearxNGBaseURL, "/"),
		language: "en",
		client:   cfg.client(),
	}
}

// Name implements Engine.
func (s *SearxNGEngine) Name() string { return SearxNG }

// Search implements Engine.
func (s *SearxNGEngine) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("categories", "general")
	params.Set("language", s.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(SearxNG, resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			URL     string `json:"url"`
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(payload.Results))
	for _, r := range payload.Results {
		results = append(results, Result{Title: r.Title, Snippet: r.Content, URL: r.URL, Engine: SearxNG})
	}
	return results, nil
}
