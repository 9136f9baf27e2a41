package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

const defaultTavilyURL = "https://api.tavily.com/search"

// TavilyEngine posts queries to the Tavily search API.
type TavilyEngine struct {
	apiKey   string
	endpoint string
	client   *http.Client
	// Depth controls Tavily's search_depth parameter (basic or advanced).
	Depth string
}

// NewTavilyEngine constructs the Tavily adapter. Use NewEngine to get the
// credential check.
func NewTavilyEngine(cfg EngineConfig) *TavilyEngine {
	endpoint := cfg.TavilyURL
	if endpoint == "" {
		endpoint = defaultTavilyURL
	}
	return &TavilyEngine{apiKey: cfg.TavilyAPIKey, endpoint: endpoint, client: cfg.client(), Depth: "basic"}
}

// Name implements Engine.
func (t *TavilyEngine) Name() string { return Tavily }

// Search implements Engine.
func (t *TavilyEngine) Search(ctx context.Context, query string) ([]Result, error) {
	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"api_key":      t.apiKey,
		"search_depth": t.Depth,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(Tavily, resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, Result{Title: r.Title, Snippet: r.Content, URL: r.URL, Engine: Tavily})
	}
	return results, nil
}
