// Package router resolves provider names to model.Provider implementations
// and dispatches generation calls to them.
//
// The set of names is fixed: ollama, deepseek, openai, dify and anthropic.
// Providers are constructed lazily on first use and cached; construction of a
// variant that needs credentials fails with a *model.ConfigurationError
// before any request is sent.
package router

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/model/anthropic"
	"github.com/hupe1980/agentdesk/model/dify"
	"github.com/hupe1980/agentdesk/model/ollama"
	"github.com/hupe1980/agentdesk/model/openai"
)

// Provider names understood by the router.
const (
	Ollama    = "ollama"
	DeepSeek  = "deepseek"
	OpenAI    = "openai"
	Dify      = "dify"
	Anthropic = "anthropic"
)

// OllamaConfig configures the local inference variant.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// HostedConfig configures an OpenAI-compatible or Anthropic variant.
type HostedConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// DifyConfig configures the workflow variant.
type DifyConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Config holds the per-variant settings. Empty fields fall back to the
// provider package defaults.
type Config struct {
	Ollama    OllamaConfig
	DeepSeek  HostedConfig
	OpenAI    HostedConfig
	Dify      DifyConfig
	Anthropic HostedConfig

	// HTTPClient, when set, is shared by every provider.
	HTTPClient *http.Client
	Logger     logging.Logger
}

type factory func(cfg Config) (model.Provider, error)

var factories = map[string]factory{
	Ollama: func(cfg Config) (model.Provider, error) {
		return ollama.New(func(o *ollama.Options) {
			setIf(&o.BaseURL, cfg.Ollama.BaseURL)
			setIf(&o.Model, cfg.Ollama.Model)
			if cfg.Ollama.Timeout > 0 {
				o.Timeout = cfg.Ollama.Timeout
			}
			o.HTTPClient = cfg.HTTPClient
		}), nil
	},
	DeepSeek: func(cfg Config) (model.Provider, error) {
		return newHosted(DeepSeek, cfg.DeepSeek, cfg.HTTPClient)
	},
	OpenAI: func(cfg Config) (model.Provider, error) {
		hosted := cfg.OpenAI
		if hosted.BaseURL == "" {
			hosted.BaseURL = "https://api.openai.com/v1"
		}
		if hosted.Model == "" {
			hosted.Model = "gpt-4o-mini"
		}
		return newHosted(OpenAI, hosted, cfg.HTTPClient)
	},
	Dify: func(cfg Config) (model.Provider, error) {
		return dify.New(func(o *dify.Options) {
			o.APIKey = cfg.Dify.APIKey
			setIf(&o.BaseURL, cfg.Dify.BaseURL)
			if cfg.Dify.Timeout > 0 {
				o.Timeout = cfg.Dify.Timeout
			}
			o.HTTPClient = cfg.HTTPClient
		})
	},
	Anthropic: func(cfg Config) (model.Provider, error) {
		return anthropic.New(func(o *anthropic.Options) {
			o.APIKey = cfg.Anthropic.APIKey
			o.BaseURL = cfg.Anthropic.BaseURL
			if cfg.Anthropic.Model != "" {
				o.Model = cfg.Anthropic.Model
			}
			o.HTTPClient = cfg.HTTPClient
		})
	},
}

func newHosted(name string, hc HostedConfig, client *http.Client) (model.Provider, error) {
	return openai.New(func(o *openai.Options) {
		o.Name = name
		o.APIKey = hc.APIKey
		setIf(&o.BaseURL, hc.BaseURL)
		setIf(&o.Model, hc.Model)
		o.HTTPClient = client
	})
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Router dispatches generation calls by provider name.
type Router struct {
	cfg    Config
	logger logging.Logger

	mu        sync.Mutex
	providers map[string]model.Provider
}

// New creates a Router. No provider is constructed until it is first resolved.
func New(cfg Config) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Router{
		cfg:       cfg,
		logger:    logger,
		providers: make(map[string]model.Provider),
	}
}

// Register installs p under its own name, replacing any cached or built-in
// variant of the same name. Mainly useful for tests and custom backends.
func (r *Router) Register(p model.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Resolve returns the provider registered under name, constructing it on
// first use. Unknown names yield *model.UnknownProviderError; a variant
// without credentials yields *model.ConfigurationError.
func (r *Router) Resolve(name string) (model.Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	build, ok := factories[name]
	if !ok {
		return nil, &model.UnknownProviderError{Name: name}
	}
	p, err := build(r.cfg)
	if err != nil {
		return nil, err
	}
	r.providers[name] = p
	r.logger.Debug("provider initialized", "provider", name)
	return p, nil
}

// Invoke resolves name and runs a single generation call against it.
func (r *Router) Invoke(ctx context.Context, name, prompt string, opts model.Options) (*model.Response, error) {
	p, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return p.Generate(ctx, prompt, opts)
}

// Names returns every provider name the router understands, sorted.
func (r *Router) Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available returns the providers that can be used with the current
// configuration: ollama always, the others only when a credential is set.
// Providers installed with Register are included as well.
func (r *Router) Available() []string {
	available := []string{Ollama}
	if r.cfg.DeepSeek.APIKey != "" {
		available = append(available, DeepSeek)
	}
	if r.cfg.OpenAI.APIKey != "" {
		available = append(available, OpenAI)
	}
	if r.cfg.Dify.APIKey != "" {
		available = append(available, Dify)
	}
	if r.cfg.Anthropic.APIKey != "" {
		available = append(available, Anthropic)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var custom []string
	for name := range r.providers {
		if _, builtin := factories[name]; !builtin {
			custom = append(custom, name)
		}
	}
	sort.Strings(custom)
	return append(available, custom...)
}
