package model

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Options carries the per call generation settings recognized by every
// provider. Zero values mean "use the provider default".
type Options struct {
	Model          string   `json:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	Stream         bool     `json:"stream,omitempty"`
	User           string   `json:"user,omitempty"`            // workflow providers only
	ConversationID string   `json:"conversation_id,omitempty"` // workflow providers only
}

// OptionsFromMap extracts the recognized generation keys from a loosely typed
// configuration map. Unknown keys are ignored so agent level settings
// (system_prompt, language, ...) can share the same map.
func OptionsFromMap(m map[string]any) (Options, error) {
	var opts Options
	if len(m) == 0 {
		return opts, nil
	}
	if v, ok := m["model"]; ok && v != nil {
		opts.Model = fmt.Sprint(v)
	}
	if v, ok := m["temperature"]; ok && v != nil {
		f, err := toFloat(v)
		if err != nil {
			return opts, &ConfigurationError{Component: "options", Field: "temperature", Reason: err.Error()}
		}
		opts.Temperature = &f
	}
	if v, ok := m["max_tokens"]; ok && v != nil {
		f, err := toFloat(v)
		if err != nil {
			return opts, &ConfigurationError{Component: "options", Field: "max_tokens", Reason: err.Error()}
		}
		n := int(f)
		opts.MaxTokens = &n
	}
	if v, ok := m["stream"]; ok && v != nil {
		switch b := v.(type) {
		case bool:
			opts.Stream = b
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return opts, &ConfigurationError{Component: "options", Field: "stream", Reason: err.Error()}
			}
			opts.Stream = parsed
		default:
			return opts, &ConfigurationError{Component: "options", Field: "stream", Reason: fmt.Sprintf("unsupported type %T", v)}
		}
	}
	if v, ok := m["user"]; ok && v != nil {
		opts.User = fmt.Sprint(v)
	}
	if v, ok := m["conversation_id"]; ok && v != nil {
		opts.ConversationID = fmt.Sprint(v)
	}
	return opts, nil
}

// Merge returns o overlaid with every non-zero field of override.
func (o Options) Merge(override Options) Options {
	out := o
	if override.Model != "" {
		out.Model = override.Model
	}
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.MaxTokens != nil {
		out.MaxTokens = override.MaxTokens
	}
	if override.Stream {
		out.Stream = true
	}
	if override.User != "" {
		out.User = override.User
	}
	if override.ConversationID != "" {
		out.ConversationID = override.ConversationID
	}
	return out
}

// Float returns a pointer to f. Handy for Options literals.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n. Handy for Options literals.
func Int(n int) *int { return &n }

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// Response is the normalized result of a single generation call. It is
// produced once per call and never mutated after being returned.
type Response struct {
	Text           string         `json:"response"`
	ModelUsed      string         `json:"model_used"`
	TokensUsed     int            `json:"tokens_used"`
	ProcessingTime time.Duration  `json:"processing_time"`
	Provider       string         `json:"provider"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Provider is the minimal interface required by the router and agents to
// turn a prompt into generated text. Implementations perform exactly one
// network round trip per call and never retry.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Response, error)

	// Name returns the provider identifier ("ollama", "deepseek", ...).
	Name() string
}

// Timer measures the wall-clock duration of a backend round trip.
type Timer struct{ start time.Time }

// StartTimer starts a new Timer.
func StartTimer() Timer { return Timer{start: time.Now()} }

// Elapsed returns the time since the timer was started.
func (t Timer) Elapsed() time.Duration { return time.Since(t.start) }
