package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	defaultDuckDuckGoURL = "https://api.duckduckgo.com/"
	maxRelatedTopics     = 3
)

// DuckDuckGoEngine queries the DuckDuckGo Instant Answer API. It yields the
// abstract (when present) followed by up to three related topics.
type DuckDuckGoEngine struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

// NewDuckDuckGoEngine constructs the DuckDuckGo adapter.
func NewDuckDuckGoEngine(cfg EngineConfig) *DuckDuckGoEngine {
	endpoint := cfg.DuckDuckGoURL
	if endpoint == "" {
		endpoint = defaultDuckDuckGoURL
	}
	return &DuckDuckGoEngine{endpoint: endpoint, userAgent: cfg.userAgent(), client: cfg.client()}
}

// Name implements Engine.
func (d *DuckDuckGoEngine) Name() string { return DuckDuckGo }

// Search implements Engine.
func (d *DuckDuckGoEngine) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(DuckDuckGo, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("duckduckgo: malformed response")
	}
	return parseInstantAnswer(gjson.ParseBytes(body)), nil
}

func parseInstantAnswer(data gjson.Result) []Result {
	var results []Result
	if abstract := data.Get("Abstract").String(); abstract != "" {
		title := data.Get("AbstractSource").String()
		if title == "" {
			title = "DuckDuckGo"
		}
		results = append(results, Result{
			Title:   title,
			Snippet: abstract,
			URL:     data.Get("AbstractURL").String(),
			Engine:  DuckDuckGo,
		})
	}

	// Only the first three entries are considered; groups without Text are skipped.
	for i, topic := range data.Get("RelatedTopics").Array() {
		if i == maxRelatedTopics {
			break
		}
		text := topic.Get("Text").String()
		if text == "" {
			continue
		}
		firstURL := topic.Get("FirstURL").String()
		title := "Related topic"
		if firstURL != "" {
			title = firstURL[strings.LastIndex(firstURL, "/")+1:]
		}
		results = append(results, Result{
			Title:   title,
			Snippet: text,
			URL:     firstURL,
			Engine:  DuckDuckGo,
		})
	}
	return results
}
