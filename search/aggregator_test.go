package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/agentdesk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	name      string
	results   []Result
	err       error
	delay     time.Duration
	ignoreCtx bool // sleep through the deadline
	panics    bool
	calls     atomic.Int32
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Search(ctx context.Context, _ string) ([]Result, error) {
	f.calls.Add(1)
	if f.panics {
		panic("engine exploded")
	}
	if f.delay > 0 && f.ignoreCtx {
		time.Sleep(f.delay)
		return f.results, f.err
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func urls(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.URL
	}
	return out
}

func TestDeduplicate_PreservesFirstOccurrence(t *testing.T) {
	in := []Result{
		{Title: "a", URL: "u1"},
		{Title: "b", URL: "u2"},
		{Title: "c", URL: "u1"},
		{Title: "d", URL: "u3"},
	}
	out := Deduplicate(in)
	assert.Equal(t, []string{"u1", "u2", "u3"}, urls(out))
	assert.Equal(t, "a", out[0].Title)
}

func TestDeduplicate_KeepsEmptyURLs(t *testing.T) {
	in := []Result{{Title: "x"}, {Title: "y"}, {Title: "z", URL: "u"}, {Title: "w", URL: "u"}}
	out := Deduplicate(in)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"", "", "u"}, urls(out))
}

func TestAggregator_IsolatesFailingEngines(t *testing.T) {
	failing := &fakeEngine{name: "broken", err: errors.New("boom")}
	slow := &fakeEngine{name: "slow", delay: time.Second}
	good := &fakeEngine{name: "good", results: []Result{
		{Title: "one", URL: "https://one"},
		{Title: "two", URL: "https://two"},
	}}

	agg := NewAggregatorFromEngines([]Engine{failing, slow, good}, func(o *AggregatorOptions) {
		o.MaxResults = 5
		o.Timeout = 50 * time.Millisecond
	})

	outcome := agg.Search(context.Background(), "golang")
	assert.True(t, outcome.Found)
	assert.Equal(t, []string{"https://one", "https://two"}, urls(outcome.Results))
	assert.Equal(t, []string{"broken", "slow", "good"}, outcome.Engines)
}

func TestAggregator_AbandonsEngineIgnoringDeadline(t *testing.T) {
	stuck := &fakeEngine{name: "stuck", delay: 2 * time.Second, ignoreCtx: true, results: []Result{{Title: "late", URL: "https://late"}}}
	good := &fakeEngine{name: "good", results: []Result{
		{Title: "one", URL: "https://one"},
		{Title: "two", URL: "https://two"},
	}}

	agg := NewAggregatorFromEngines([]Engine{stuck, good}, func(o *AggregatorOptions) {
		o.MaxResults = 5
		o.Timeout = 100 * time.Millisecond
	})

	start := time.Now()
	outcome := agg.Search(context.Background(), "go")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.Equal(t, []string{"https://one", "https://two"}, urls(outcome.Results))
}

func TestAggregator_RecoversEnginePanic(t *testing.T) {
	agg := NewAggregatorFromEngines([]Engine{
		&fakeEngine{name: "panics", panics: true},
		&fakeEngine{name: "ok", results: []Result{{URL: "u"}}},
	})
	outcome := agg.Search(context.Background(), "q")
	assert.Equal(t, []string{"u"}, urls(outcome.Results))
}

func TestAggregator_RunsConcurrently(t *testing.T) {
	engines := []Engine{
		&fakeEngine{name: "a", delay: 100 * time.Millisecond, results: []Result{{URL: "a"}}},
		&fakeEngine{name: "b", delay: 100 * time.Millisecond, results: []Result{{URL: "b"}}},
		&fakeEngine{name: "c", delay: 100 * time.Millisecond, results: []Result{{URL: "c"}}},
	}
	agg := NewAggregatorFromEngines(engines, func(o *AggregatorOptions) { o.MaxResults = 10 })

	start := time.Now()
	outcome := agg.Search(context.Background(), "q")
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, urls(outcome.Results))
}

func TestAggregator_MergeDedupTruncate(t *testing.T) {
	agg := NewAggregatorFromEngines([]Engine{
		&fakeEngine{name: "first", results: []Result{{URL: "u1"}, {URL: "u2"}}},
		&fakeEngine{name: "second", results: []Result{{URL: "u1"}, {URL: "u3"}, {URL: "u4"}}},
	}, func(o *AggregatorOptions) { o.MaxResults = 3 })

	outcome := agg.Search(context.Background(), "q")
	assert.Equal(t, []string{"u1", "u2", "u3"}, urls(outcome.Results))
}

func TestAggregator_DefaultMaxResults(t *testing.T) {
	agg := NewAggregatorFromEngines([]Engine{
		&fakeEngine{name: "e", results: []Result{{URL: "u1"}, {URL: "u2"}}},
	})
	outcome := agg.Search(context.Background(), "q")
	assert.Len(t, outcome.Results, DefaultMaxResults)
}

func TestAggregator_NoResults(t *testing.T) {
	agg := NewAggregatorFromEngines([]Engine{&fakeEngine{name: "empty"}})
	outcome := agg.Search(context.Background(), "zzzqqqnotfound")
	assert.False(t, outcome.Found)
	assert.NotNil(t, outcome.Results)
	assert.Empty(t, outcome.Results)
	assert.Equal(t, "No information found for 'zzzqqqnotfound'.", Format(outcome.Query, outcome.Results))
}

func TestAggregator_CallerCancellationDoesNotAbortEngines(t *testing.T) {
	engine := &fakeEngine{name: "e", delay: 50 * time.Millisecond, results: []Result{{URL: "u"}}}
	agg := NewAggregatorFromEngines([]Engine{engine})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome := agg.Search(ctx, "q")
	assert.True(t, outcome.Found)
}

func TestAggregator_FilterAds(t *testing.T) {
	agg := NewAggregatorFromEngines([]Engine{
		&fakeEngine{name: "e", results: []Result{
			{Title: "Sponsored: buy now", URL: "ad"},
			{Title: "Download the reader", Snippet: "readme", URL: "ok"},
			{Title: "限时特价", URL: "cjk"},
		}},
	}, func(o *AggregatorOptions) { o.MaxResults = 10; o.FilterAds = true })

	outcome := agg.Search(context.Background(), "q")
	assert.Equal(t, []string{"ok"}, urls(outcome.Results))
}

func TestNewAggregator_SkipsUnknownEngines(t *testing.T) {
	agg, err := NewAggregator([]string{"duckduckgo", "yahoo", "bing"}, EngineConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"duckduckgo", "bing"}, agg.Engines())
}

func TestNewAggregator_MissingCredential(t *testing.T) {
	_, err := NewAggregator([]string{"brave"}, EngineConfig{})
	assert.True(t, errors.Is(err, model.ErrConfiguration))

	_, err = NewAggregator([]string{"searxng"}, EngineConfig{})
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestNewEngine_Unknown(t *testing.T) {
	_, err := NewEngine("altavista", EngineConfig{})
	var uee *UnknownEngineError
	require.ErrorAs(t, err, &uee)
	assert.Equal(t, "altavista", uee.Name)
}

func TestFormat(t *testing.T) {
	out := Format("go", []Result{
		{Title: "Go", Snippet: "The Go language", URL: "https://go.dev"},
		{Title: "Tour", Snippet: "A tour"},
	})
	assert.Equal(t, "Search results for 'go':\n\n"+
		"1. Go\n   The Go language\n   Link: https://go.dev\n\n"+
		"2. Tour\n   A tour", out)
}
