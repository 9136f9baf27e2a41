package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/agentdesk/memory"
	"github.com/hupe1980/agentdesk/prompt"
	"github.com/hupe1980/agentdesk/search"
)

// Search answers questions from web search results.
type Search struct {
	baseAgent
	cfg        SearchConfig
	aggregator *search.Aggregator
}

// NewSearch creates a search agent. Recognized config keys: search_engines
// (default [duckduckgo]), max_results (default 1), timeout in seconds
// (default 10), filter_ads plus the generation options. Unknown engines are
// skipped; a known engine without credentials is a configuration error.
func NewSearch(p Params) (*Search, error) {
	cfg := SearchConfig{
		Engines:    []string{search.DuckDuckGo},
		MaxResults: search.DefaultMaxResults,
		Timeout:    search.DefaultTimeout.Seconds(),
	}
	if err := decodeConfig(string(KindSearch), p.Config, &cfg); err != nil {
		return nil, err
	}
	base, err := newBaseAgent(KindSearch, p)
	if err != nil {
		return nil, err
	}
	agg, err := search.NewAggregator(cfg.Engines, p.Engines, func(o *search.AggregatorOptions) {
		o.MaxResults = cfg.MaxResults
		o.Timeout = time.Duration(cfg.Timeout * float64(time.Second))
		o.FilterAds = cfg.FilterAds
		o.Logger = base.logger
	})
	if err != nil {
		return nil, err
	}
	return &Search{baseAgent: base, cfg: cfg, aggregator: agg}, nil
}

// Process implements Agent. Engine failures never surface here: with no
// results the model is told explicitly that nothing was found.
func (s *Search) Process(ctx context.Context, message string, msgCtx map[string]any) (*Result, error) {
	query := ExtractQuery(message, msgCtx)
	outcome := s.aggregator.Search(ctx, query)

	text, err := prompt.Search(prompt.SearchInput{
		Message: message,
		Query:   query,
		Results: outcome.Results,
		Found:   outcome.Found,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.generate(ctx, text)
	if err != nil {
		return nil, err
	}

	return s.result(resp, map[string]any{
		"search_query":        query,
		"search_results":      outcome.Results,
		"search_engines_used": outcome.Engines,
		"results_count":       len(outcome.Results),
		"search_summary":      search.Format(query, outcome.Results),
	}), nil
}

// Engines returns the engines actually queried by this agent.
func (s *Search) Engines() []string { return s.aggregator.Engines() }

// History returns an empty slice; search agents keep no history.
func (s *Search) History() []memory.Turn { return []memory.Turn{} }

// ClearHistory is a no-op.
func (s *Search) ClearHistory() {}

var intentPrefixes = func() []string {
	p := []string{
		"search for", "look up", "search", "find",
		"搜索", "查找", "查询", "搜索一下", "帮我搜索", "请搜索",
	}
	// longest first so "search for" wins over "search"
	sort.SliceStable(p, func(i, j int) bool { return len(p[i]) > len(p[j]) })
	return p
}()

// ExtractQuery derives the search query for message. An explicit
// "search_query" entry in msgCtx wins. Otherwise one leading search intent
// phrase ("search for", "look up", ...) is stripped. If nothing remains the
// trimmed message is used as is.
func ExtractQuery(message string, msgCtx map[string]any) string {
	if v, ok := msgCtx["search_query"]; ok && v != nil {
		if q := strings.TrimSpace(fmt.Sprint(v)); q != "" {
			return q
		}
	}

	trimmed := strings.TrimSpace(message)
	for _, prefix := range intentPrefixes {
		if len(trimmed) < len(prefix) || !strings.EqualFold(trimmed[:len(prefix)], prefix) {
			continue
		}
		rest := trimmed[len(prefix):]
		if isASCII(prefix) && !atWordBoundary(rest) {
			continue
		}
		if q := strings.TrimSpace(rest); q != "" {
			return q
		}
		break
	}
	return trimmed
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// atWordBoundary reports whether rest does not continue the word of an
// English prefix ("find" must not match "finding").
func atWordBoundary(rest string) bool {
	r, _ := utf8.DecodeRuneInString(rest)
	if r == utf8.RuneError {
		return true
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
