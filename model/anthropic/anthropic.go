// Package anthropic provides a model.Provider for the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/agentdesk/model"
)

// ProviderName is the router name of this provider.
const ProviderName = "anthropic"

// Options configures the Anthropic provider adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Provider wraps the Anthropic Messages API behind the generic model.Provider interface.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0.7,
		MaxTokens:   1024,
		Timeout:     60 * time.Second,
	}
}

// New creates a new Anthropic provider using the official client. It fails
// with a *model.ConfigurationError when no API key is configured.
func New(optFns ...func(o *Options)) (*Provider, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, model.MissingCredential(ProviderName)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}, nil
}

// Generate implements model.Provider. Streaming is not used for this backend;
// the single-shot Messages call already yields the aggregated response.
func (p *Provider) Generate(ctx context.Context, prompt string, opts model.Options) (*model.Response, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.opts.Model),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
	}
	if opts.Model != "" {
		params.Model = anthropic.Model(opts.Model)
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.Float(*opts.Temperature)
	}
	if opts.MaxTokens != nil {
		params.MaxTokens = int64(*opts.MaxTokens)
	}

	timer := model.StartTimer()
	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return nil, model.Upstream(ProviderName, status, err)
	}
	elapsed := timer.Elapsed()

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	return &model.Response{
		Text:           text.String(),
		ModelUsed:      string(resp.Model),
		TokensUsed:     int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		ProcessingTime: elapsed,
		Provider:       ProviderName,
		Metadata: map[string]any{
			"id":            resp.ID,
			"stop_reason":   string(resp.StopReason),
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
		},
	}, nil
}

// Name implements model.Provider.
func (p *Provider) Name() string { return ProviderName }

// DefaultModel returns the model used when a call does not override it.
func (p *Provider) DefaultModel() string { return p.opts.Model }
