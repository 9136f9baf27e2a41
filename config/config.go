// Package config loads process configuration from an optional YAML file
// overlaid with environment variables, and turns it into the settings of
// the router, the search engines and the logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/router"
	"github.com/hupe1980/agentdesk/search"
	"gopkg.in/yaml.v3"
)

// OllamaConfig configures the local inference backend.
type OllamaConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Model   string        `yaml:"model" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// ProviderConfig configures a hosted backend.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	Model   string `yaml:"model"`
}

// DifyConfig configures the Dify workflow backend.
type DifyConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// SearchConfig carries search engine credentials and endpoints.
type SearchConfig struct {
	BraveAPIKey    string `yaml:"brave_api_key"`
	TavilyAPIKey   string `yaml:"tavily_api_key"`
	SearxNGBaseURL string `yaml:"searxng_base_url" validate:"omitempty,url"`
	UserAgent      string `yaml:"user_agent"`
}

// DatabaseConfig locates the agent metadata database.
type DatabaseConfig struct {
	URL string `yaml:"url" validate:"required"`
}

// LogConfig selects and configures the logger.
type LogConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format  string `yaml:"format" validate:"oneof=json text pretty"`
	File    string `yaml:"file"`
	Backend string `yaml:"backend" validate:"oneof=slog zerolog"`
}

// Config is the complete process configuration.
type Config struct {
	Ollama    OllamaConfig   `yaml:"ollama"`
	DeepSeek  ProviderConfig `yaml:"deepseek"`
	OpenAI    ProviderConfig `yaml:"openai"`
	Dify      DifyConfig     `yaml:"dify"`
	Anthropic ProviderConfig `yaml:"anthropic"`
	Search    SearchConfig   `yaml:"search"`
	Database  DatabaseConfig `yaml:"database"`
	Log       LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "deepseek-r1:8b",
			Timeout: 60 * time.Second,
		},
		DeepSeek: ProviderConfig{BaseURL: "https://api.deepseek.com/v1", Model: "deepseek-chat"},
		OpenAI:   ProviderConfig{BaseURL: "https://api.openai.com/v1"},
		Dify:     DifyConfig{BaseURL: "https://api.dify.ai/v1", Timeout: 60 * time.Second},
		Database: DatabaseConfig{URL: "./data/agentdesk.db"},
		Log:      LogConfig{Level: "info", Format: "json", Backend: "slog"},
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when path is empty) and the environment, in that order, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	bind := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	bind("OLLAMA_BASE_URL", &c.Ollama.BaseURL)
	bind("OLLAMA_MODEL", &c.Ollama.Model)
	bind("DEEPSEEK_API_KEY", &c.DeepSeek.APIKey)
	bind("DEEPSEEK_API_BASE_URL", &c.DeepSeek.BaseURL)
	bind("DIFY_API_KEY", &c.Dify.APIKey)
	bind("DIFY_API_BASE_URL", &c.Dify.BaseURL)
	bind("OPENAI_API_KEY", &c.OpenAI.APIKey)
	bind("OPENAI_API_BASE_URL", &c.OpenAI.BaseURL)
	bind("ANTHROPIC_API_KEY", &c.Anthropic.APIKey)
	bind("BRAVE_API_KEY", &c.Search.BraveAPIKey)
	bind("TAVILY_API_KEY", &c.Search.TavilyAPIKey)
	bind("SEARXNG_BASE_URL", &c.Search.SearxNGBaseURL)
	bind("DATABASE_URL", &c.Database.URL)
	bind("LOG_LEVEL", &c.Log.Level)
	bind("LOG_FORMAT", &c.Log.Format)
	bind("LOG_FILE", &c.Log.File)
	bind("LOG_BACKEND", &c.Log.Backend)
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
}

var validate = validator.New()

// Validate checks every field constraint. Failures are reported as
// *model.ConfigurationError naming the offending field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &model.ConfigurationError{
			Component: "config",
			Field:     fe.Namespace(),
			Reason:    fmt.Sprintf("failed '%s' validation (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &model.ConfigurationError{Component: "config", Reason: err.Error()}
}

// RouterConfig converts the provider sections for router.New.
func (c *Config) RouterConfig(logger logging.Logger) router.Config {
	return router.Config{
		Ollama: router.OllamaConfig{
			BaseURL: c.Ollama.BaseURL,
			Model:   c.Ollama.Model,
			Timeout: c.Ollama.Timeout,
		},
		DeepSeek:  router.HostedConfig(c.DeepSeek),
		OpenAI:    router.HostedConfig(c.OpenAI),
		Dify:      router.DifyConfig(c.Dify),
		Anthropic: router.HostedConfig(c.Anthropic),
		Logger:    logger,
	}
}

// EngineConfig converts the search section for search agents.
func (c *Config) EngineConfig() search.EngineConfig {
	return search.EngineConfig{
		BraveAPIKey:    c.Search.BraveAPIKey,
		TavilyAPIKey:   c.Search.TavilyAPIKey,
		SearxNGBaseURL: c.Search.SearxNGBaseURL,
		UserAgent:      c.Search.UserAgent,
	}
}

// NewLogger builds the configured logger. The closer releases the log file
// when one is configured.
func (c *Config) NewLogger() (logging.Logger, io.Closer, error) {
	if c.Log.Backend == "zerolog" {
		zl, closer, err := logging.NewZerolog(logging.ZerologConfig{
			Level:  c.Log.Level,
			Pretty: c.Log.Format == "pretty",
			File:   c.Log.File,
		})
		if err != nil {
			return nil, nil, err
		}
		return logging.NewZerologAdapter(zl), closer, nil
	}

	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	lc := logging.DefaultLoggerConfig()
	lc.Level = level
	lc.Format = c.Log.Format
	if lc.Format == "pretty" {
		lc.Format = "text"
	}

	var closer io.Closer = logging.NopCloser{}
	if c.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Log.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		lc.Output = io.MultiWriter(os.Stdout, f)
		closer = f
	}
	return logging.NewLogger(lc), closer, nil
}
