package ollama

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/hupe1980/agentdesk/internal/testutil"
	"github.com/hupe1980/agentdesk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ model.Provider = (*Provider)(nil)

func TestProvider_Generate(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		body := testutil.DecodeBody(t, r)
		assert.Equal(t, "llama3", body["model"])
		assert.Equal(t, "hello", body["prompt"])
		assert.Equal(t, false, body["stream"])
		opts, _ := body["options"].(map[string]any)
		assert.InDelta(t, 0.3, opts["temperature"], 1e-9)
		testutil.JSONHandler(http.StatusOK, map[string]any{
			"model":      "llama3",
			"response":   "hi there",
			"done":       true,
			"eval_count": 7,
		})(w, r)
	}))

	p := New(func(o *Options) { o.BaseURL = srv.URL + "/"; o.Model = "llama3" })
	resp, err := p.Generate(context.Background(), "hello", model.Options{Temperature: model.Float(0.3)})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text)
	assert.Equal(t, "llama3", resp.ModelUsed)
	assert.Equal(t, 7, resp.TokensUsed)
	assert.Equal(t, "ollama", resp.Provider)
	assert.Equal(t, 7, resp.Metadata["eval_count"])
}

func TestProvider_GenerateStreaming(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := testutil.DecodeBody(t, r)
		assert.Equal(t, true, body["stream"])
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"model":"m","response":"Hel","done":false}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"model":"m","response":"lo","done":false}`)
		fmt.Fprintln(w, `{"model":"m","response":"","done":true,"eval_count":2}`)
	}))

	p := New(func(o *Options) { o.BaseURL = srv.URL })
	resp, err := p.Generate(context.Background(), "x", model.Options{Stream: true, Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", resp.Text)
	assert.Equal(t, 2, resp.TokensUsed)
}

func TestProvider_GenerateStreamingTruncated(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"model":"m","response":"Hel","done":false}`)
	}))

	p := New(func(o *Options) { o.BaseURL = srv.URL })
	_, err := p.Generate(context.Background(), "x", model.Options{Stream: true})
	var ue *model.UpstreamError
	require.ErrorAs(t, err, &ue)
}

func TestProvider_GenerateHTTPError(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))

	p := New(func(o *Options) { o.BaseURL = srv.URL })
	_, err := p.Generate(context.Background(), "x", model.Options{})
	var ue *model.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusNotFound, ue.StatusCode)
	assert.Equal(t, "ollama", ue.Provider)
}

func TestProvider_GenerateTransportError(t *testing.T) {
	p := New(func(o *Options) { o.BaseURL = "http://127.0.0.1:1" })
	_, err := p.Generate(context.Background(), "x", model.Options{})
	var ue *model.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.StatusCode)
}

func TestProvider_GenerateTimeoutWithInjectedClient(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))

	p := New(func(o *Options) {
		o.BaseURL = srv.URL
		o.HTTPClient = &http.Client{}
		o.Timeout = 50 * time.Millisecond
	})

	start := time.Now()
	_, err := p.Generate(context.Background(), "x", model.Options{})
	var ue *model.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Less(t, time.Since(start), time.Second)
}
