package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// CountingTransport is an http.RoundTripper that counts outgoing requests
// before delegating to Base (http.DefaultTransport when nil).
type CountingTransport struct {
	Base  http.RoundTripper
	calls atomic.Int64
}

// RoundTrip implements http.RoundTripper.
func (c *CountingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	base := c.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// Calls returns the number of requests seen so far.
func (c *CountingTransport) Calls() int { return int(c.calls.Load()) }

// NewCountingClient returns an http.Client wired to a fresh CountingTransport.
func NewCountingClient() (*http.Client, *CountingTransport) {
	tr := &CountingTransport{}
	return &http.Client{Transport: tr}, tr
}

// JSONHandler returns a handler that always writes v as JSON with status.
func JSONHandler(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

// NewServer starts an httptest server closed automatically at test cleanup.
func NewServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// DecodeBody decodes the JSON request body into a generic map.
func DecodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Errorf("decode request body: %v", err)
	}
	return body
}
