package router

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/hupe1980/agentdesk/internal/testutil"
	"github.com/hupe1980/agentdesk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_UnknownProvider(t *testing.T) {
	r := New(Config{})

	_, err := r.Resolve("gemini")
	var upe *model.UnknownProviderError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, "gemini", upe.Name)
}

func TestResolve_CredentialGate(t *testing.T) {
	for _, name := range []string{DeepSeek, OpenAI, Dify, Anthropic} {
		t.Run(name, func(t *testing.T) {
			client, counter := testutil.NewCountingClient()
			r := New(Config{HTTPClient: client})

			p, err := r.Resolve(name)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, model.ErrConfiguration))

			_, err = r.Invoke(context.Background(), name, "hi", model.Options{})
			assert.True(t, errors.Is(err, model.ErrConfiguration))
			assert.Zero(t, counter.Calls())
		})
	}
}

func TestResolve_Caches(t *testing.T) {
	r := New(Config{})

	p1, err := r.Resolve("ollama")
	require.NoError(t, err)
	p2, err := r.Resolve(" Ollama ")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestInvoke_Ollama(t *testing.T) {
	srv := testutil.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		body := testutil.DecodeBody(t, r)
		assert.Equal(t, "llama3", body["model"])
		testutil.JSONHandler(http.StatusOK, map[string]any{
			"model":      "llama3",
			"response":   "pong",
			"done":       true,
			"eval_count": 3,
		})(w, r)
	}))

	r := New(Config{Ollama: OllamaConfig{BaseURL: srv.URL, Model: "llama3"}})
	resp, err := r.Invoke(context.Background(), Ollama, "ping", model.Options{})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text)
	assert.Equal(t, 3, resp.TokensUsed)
	assert.Equal(t, Ollama, resp.Provider)
}

func TestInvoke_Registered(t *testing.T) {
	r := New(Config{})
	mock := model.NewMockProvider("mock", "mock-1")
	mock.AddResponse("hi", "hello there")
	r.Register(mock)

	resp, err := r.Invoke(context.Background(), "mock", "hi", model.Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Text)
	assert.Equal(t, []string{"hi"}, mock.Prompts())
}

func TestNamesAndAvailable(t *testing.T) {
	r := New(Config{
		DeepSeek: HostedConfig{APIKey: "sk"},
		Dify:     DifyConfig{APIKey: "app"},
	})

	assert.Equal(t, []string{"anthropic", "deepseek", "dify", "ollama", "openai"}, r.Names())
	assert.Equal(t, []string{"ollama", "deepseek", "dify"}, r.Available())

	r.Register(model.NewMockProvider("mock", "m"))
	assert.Equal(t, []string{"ollama", "deepseek", "dify", "mock"}, r.Available())
}
