// Package search queries external search engines and aggregates their
// results.
//
// An Aggregator fans a query out to every configured Engine concurrently.
// Each engine runs under its own timeout and a failing engine contributes
// zero results without affecting the others. The merged results are
// deduplicated by URL (first occurrence wins, empty URLs are always kept),
// optionally stripped of advertisements and truncated to the configured
// maximum.
//
// Supported engines: duckduckgo, bing, brave, tavily and searxng.
package search
