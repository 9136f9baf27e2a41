package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentdesk/logging"
)

// Defaults applied by NewAggregator.
const (
	DefaultMaxResults = 1
	DefaultTimeout    = 10 * time.Second
)

// AggregatorOptions configure an Aggregator.
type AggregatorOptions struct {
	// MaxResults caps the deduplicated result list.
	MaxResults int
	// Timeout bounds each engine query independently.
	Timeout time.Duration
	// FilterAds drops results that look like advertisements.
	FilterAds bool
	Logger    logging.Logger
}

// Outcome is the aggregated result of one query.
type Outcome struct {
	Query string `json:"query"`
	// Results are deduplicated, filtered and truncated, in engine order.
	Results []Result `json:"results"`
	// Engines lists the engines that were actually queried.
	Engines []string `json:"engines"`
	// Found is false when no engine produced a usable result.
	Found bool `json:"found"`
}

// Aggregator fans a query out to several engines and merges the results.
type Aggregator struct {
	engines []Engine
	opts    AggregatorOptions
	logger  logging.Logger
}

// NewAggregator resolves the engine names against cfg. Unknown names are
// skipped with a warning. A known engine missing its credential fails the
// construction with a *model.ConfigurationError.
func NewAggregator(names []string, cfg EngineConfig, optFns ...func(o *AggregatorOptions)) (*Aggregator, error) {
	a := newAggregator(nil, optFns...)
	for _, name := range names {
		engine, err := NewEngine(name, cfg)
		if err != nil {
			var unknown *UnknownEngineError
			if errors.As(err, &unknown) {
				a.logger.Warn("skipping unsupported search engine", "engine", name)
				continue
			}
			return nil, err
		}
		a.engines = append(a.engines, engine)
	}
	return a, nil
}

// NewAggregatorFromEngines builds an Aggregator over ready-made engines.
func NewAggregatorFromEngines(engines []Engine, optFns ...func(o *AggregatorOptions)) *Aggregator {
	return newAggregator(engines, optFns...)
}

func newAggregator(engines []Engine, optFns ...func(o *AggregatorOptions)) *Aggregator {
	opts := AggregatorOptions{
		MaxResults: DefaultMaxResults,
		Timeout:    DefaultTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxResults < 1 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Aggregator{engines: engines, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

// Engines returns the names of the engines this aggregator queries.
func (a *Aggregator) Engines() []string {
	names := make([]string, len(a.engines))
	for i, e := range a.engines {
		names[i] = e.Name()
	}
	return names
}

type searchLogger interface {
	LogSearch(engine, query string, results int, dur time.Duration, err error)
}

// Search queries every engine concurrently and returns the merged outcome.
// Engine failures are logged and never returned; the only signal of a total
// failure is Outcome.Found being false.
//
// Each engine call is bounded by the configured timeout only: cancelling ctx
// does not abort queries already in flight.
func (a *Aggregator) Search(ctx context.Context, query string) Outcome {
	perEngine := make([][]Result, len(a.engines))
	base := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i, engine := range a.engines {
		wg.Add(1)
		go func(i int, engine Engine) {
			defer wg.Done()
			perEngine[i] = a.query(base, engine, query)
		}(i, engine)
	}
	wg.Wait()

	var merged []Result
	for _, results := range perEngine {
		merged = append(merged, results...)
	}

	results := Deduplicate(merged)
	if a.opts.FilterAds {
		results = FilterAds(results)
	}
	if len(results) > a.opts.MaxResults {
		results = results[:a.opts.MaxResults]
	}
	if results == nil {
		results = []Result{}
	}

	return Outcome{
		Query:   query,
		Results: results,
		Engines: a.Engines(),
		Found:   len(results) > 0,
	}
}

type reply struct {
	results []Result
	err     error
}

// query runs one engine and waits for it no longer than the configured
// timeout. An engine that ignores ctx is abandoned at the deadline; its late
// answer is discarded.
func (a *Aggregator) query(ctx context.Context, engine Engine, query string) []Result {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		results, err := engine.Search(ctx, query)
		done <- reply{results: results, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			a.report(engine.Name(), query, 0, time.Since(start), r.err)
			return nil
		}
		a.report(engine.Name(), query, len(r.results), time.Since(start), nil)
		return r.results
	case <-ctx.Done():
		a.report(engine.Name(), query, 0, time.Since(start), ctx.Err())
		return nil
	}
}

func (a *Aggregator) report(engine, query string, n int, dur time.Duration, err error) {
	if sl, ok := a.logger.(searchLogger); ok {
		sl.LogSearch(engine, query, n, dur, err)
		return
	}
	if err != nil {
		a.logger.Error("search engine failed", "engine", engine, "query", query, "error", err)
		return
	}
	a.logger.Debug("search engine completed", "engine", engine, "results", n, "duration", dur)
}

// Deduplicate keeps the first occurrence of every non-empty URL, preserving
// order. Results with an empty URL are always kept.
func Deduplicate(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

var (
	adWords = regexp.MustCompile(`\b(ad|ads|sponsored|promoted)\b`)
	adCJK   = []string{"广告", "推广", "赞助", "购买", "优惠", "折扣", "限时", "特价"}
)

// IsAdvertisement reports whether a result's title or snippet carries an
// advertisement marker.
func IsAdvertisement(r Result) bool {
	text := strings.ToLower(r.Title + " " + r.Snippet)
	if adWords.MatchString(text) {
		return true
	}
	for _, marker := range adCJK {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// FilterAds returns the results that are not advertisements.
func FilterAds(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if !IsAdvertisement(r) {
			out = append(out, r)
		}
	}
	return out
}

// NoResultsMessage is the fixed text used when a query produced nothing.
func NoResultsMessage(query string) string {
	return fmt.Sprintf("No information found for '%s'.", query)
}

// Format renders results as a numbered plain text listing, or
// NoResultsMessage when there are none.
func Format(query string, results []Result) string {
	if len(results) == 0 {
		return NoResultsMessage(query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for '%s':\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   %s\n", r.Snippet)
		if r.URL != "" {
			fmt.Fprintf(&b, "   Link: %s\n", r.URL)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
