package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/agentdesk/model"
)

// Engine names understood by NewEngine.
const (
	DuckDuckGo = "duckduckgo"
	Bing       = "bing"
	Brave      = "brave"
	Tavily     = "tavily"
	SearxNG    = "searxng"
)

// Result is a single search hit. URL is the deduplication key.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Engine  string `json:"engine"`
}

// Engine is an external search data source.
type Engine interface {
	// Name returns the engine identifier reported in Result.Engine.
	Name() string

	// Search runs one query. Implementations honor ctx for cancellation.
	Search(ctx context.Context, query string) ([]Result, error)
}

// UnknownEngineError reports an engine name that matches no adapter. The
// Aggregator skips such engines instead of failing.
type UnknownEngineError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unsupported search engine: %s", e.Name)
}

// EngineConfig carries endpoints and credentials for every engine adapter.
// Empty endpoints fall back to the public defaults.
type EngineConfig struct {
	DuckDuckGoURL  string
	BingURL        string
	BraveAPIKey    string
	BraveURL       string
	TavilyAPIKey   string
	TavilyURL      string
	SearxNGBaseURL string
	UserAgent      string

	// HTTPClient is shared by all engines. Per-engine timeouts are applied
	// through the request context, so the client itself needs none.
	HTTPClient *http.Client
}

const defaultUserAgent = "Mozilla/5.0 (compatible; agentdesk/1.0)"

func (c EngineConfig) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c EngineConfig) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return defaultUserAgent
}

// Names returns every engine name NewEngine understands.
func Names() []string {
	return []string{Bing, Brave, DuckDuckGo, SearxNG, Tavily}
}

// NewEngine builds the adapter registered under name. It returns an
// *UnknownEngineError for unrecognized names and a *model.ConfigurationError
// when a known engine lacks its credential or endpoint.
func NewEngine(name string, cfg EngineConfig) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case DuckDuckGo:
		return NewDuckDuckGoEngine(cfg), nil
	case Bing:
		return NewBingEngine(cfg), nil
	case Brave:
		if strings.TrimSpace(cfg.BraveAPIKey) == "" {
			return nil, model.MissingCredential(Brave)
		}
		return NewBraveEngine(cfg), nil
	case Tavily:
		if strings.TrimSpace(cfg.TavilyAPIKey) == "" {
			return nil, model.MissingCredential(Tavily)
		}
		return NewTavilyEngine(cfg), nil
	case SearxNG:
		if strings.TrimSpace(cfg.SearxNGBaseURL) == "" {
			return nil, &model.ConfigurationError{Component: SearxNG, Field: "base_url", Reason: "base URL is not configured"}
		}
		return NewSearxNGEngine(cfg), nil
	default:
		return nil, &UnknownEngineError{Name: name}
	}
}

func httpError(engine string, status int) error {
	return fmt.Errorf("%s http %d", engine, status)
}
