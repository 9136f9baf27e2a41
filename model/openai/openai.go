// Package openai provides an implementation of model.Provider using an
// OpenAI-compatible Chat Completions endpoint (DeepSeek by default, or the
// OpenAI API itself). The prompt is sent as a single user message and
// streaming deltas are aggregated into one model.Response.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/agentdesk/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the hosted chat provider adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	// Name is the router name reported in responses ("deepseek", "openai").
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	// Timeout bounds a whole generation call, streaming included.
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Provider wraps an OpenAI-compatible Chat Completions API behind the
// generic model.Provider interface.
type Provider struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Name:        "deepseek",
		BaseURL:     "https://api.deepseek.com/v1",
		Model:       "deepseek-chat",
		Temperature: 0.7,
		MaxTokens:   1000,
		Timeout:     60 * time.Second,
	}
}

// New creates a new hosted chat provider. It fails with a
// *model.ConfigurationError when no API key is configured; no request is
// made in that case.
func New(optFns ...func(o *Options)) (*Provider, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, model.MissingCredential(opts.Name)
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
	client := openai.NewClient(clientOpts...)
	return &Provider{client: &client, opts: opts}, nil
}

// buildParams assembles the request parameters for a single prompt.
func (p *Provider) buildParams(prompt string, opts model.Options) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       p.modelName(opts),
		Temperature: openai.Float(p.opts.Temperature),
		MaxTokens:   openai.Int(p.opts.MaxTokens),
	}
	if opts.Temperature != nil {
		params.Temperature = openai.Float(*opts.Temperature)
	}
	if opts.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*opts.MaxTokens))
	}
	if opts.User != "" {
		params.User = openai.String(opts.User)
	}
	return params
}

func (p *Provider) modelName(opts model.Options) string {
	if opts.Model != "" {
		return opts.Model
	}
	return p.opts.Model
}

// Generate implements model.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, opts model.Options) (*model.Response, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	params := p.buildParams(prompt, opts)
	if opts.Stream {
		return p.generateStreaming(ctx, params)
	}
	return p.generate(ctx, params)
}

// generate processes a normal (non-streaming) completion.
func (p *Provider) generate(ctx context.Context, params openai.ChatCompletionNewParams) (*model.Response, error) {
	timer := model.StartTimer()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.upstream(err)
	}
	elapsed := timer.Elapsed()
	if len(resp.Choices) == 0 {
		return nil, model.Upstream(p.opts.Name, 0, errors.New("no choices returned"))
	}
	used := resp.Model
	if used == "" {
		used = params.Model
	}
	return &model.Response{
		Text:           resp.Choices[0].Message.Content,
		ModelUsed:      used,
		TokensUsed:     int(resp.Usage.TotalTokens),
		ProcessingTime: elapsed,
		Provider:       p.opts.Name,
		Metadata: map[string]any{
			"id":                resp.ID,
			"finish_reason":     resp.Choices[0].FinishReason,
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
		},
	}, nil
}

// generateStreaming aggregates streamed deltas into a single response.
func (p *Provider) generateStreaming(ctx context.Context, params openai.ChatCompletionNewParams) (*model.Response, error) {
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

	timer := model.StartTimer()
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var (
		text         strings.Builder
		used         = params.Model
		id           string
		finishReason string
		tokens       int64
	)
	for stream.Next() {
		ck := stream.Current()
		if ck.Model != "" {
			used = ck.Model
		}
		if ck.ID != "" {
			id = ck.ID
		}
		if ck.Usage.TotalTokens > 0 {
			tokens = ck.Usage.TotalTokens
		}
		for _, ch := range ck.Choices {
			text.WriteString(ch.Delta.Content)
			if ch.FinishReason != "" {
				finishReason = ch.FinishReason
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, p.upstream(fmt.Errorf("streaming error: %w", err))
	}
	return &model.Response{
		Text:           text.String(),
		ModelUsed:      used,
		TokensUsed:     int(tokens),
		ProcessingTime: timer.Elapsed(),
		Provider:       p.opts.Name,
		Metadata: map[string]any{
			"id":            id,
			"finish_reason": finishReason,
			"streamed":      true,
		},
	}, nil
}

func (p *Provider) upstream(err error) error {
	status := 0
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	return model.Upstream(p.opts.Name, status, err)
}

// Name implements model.Provider.
func (p *Provider) Name() string { return p.opts.Name }

// DefaultModel returns the model used when a call does not override it.
func (p *Provider) DefaultModel() string { return p.opts.Model }
