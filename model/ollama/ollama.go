// Package ollama provides an implementation of model.Provider talking to a
// locally hosted Ollama server through its /api/generate endpoint. Streaming
// responses (newline delimited JSON) are aggregated into one model.Response.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/agentdesk/model"
)

// ProviderName is the router name of this provider.
const ProviderName = "ollama"

// Options configure the Ollama provider adapter.
type Options struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Provider wraps the Ollama generate API behind the model.Provider interface.
type Provider struct {
	client *http.Client
	opts   Options
}

// New creates a new Ollama provider. No credentials are required.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		BaseURL: "http://localhost:11434",
		Model:   "deepseek-r1:8b",
		Timeout: 60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Provider{client: client, opts: opts}
}

type generateOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	TotalDuration   int64  `json:"total_duration,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Generate implements model.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, opts model.Options) (*model.Response, error) {
	modelName := p.opts.Model
	if opts.Model != "" {
		modelName = opts.Model
	}
	body, err := json.Marshal(generateRequest{
		Model:  modelName,
		Prompt: prompt,
		Stream: opts.Stream,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return nil, model.Upstream(ProviderName, 0, fmt.Errorf("marshal request: %w", err))
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	timer := model.StartTimer()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, model.Upstream(ProviderName, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, model.Upstream(ProviderName, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, model.Upstream(ProviderName, resp.StatusCode, fmt.Errorf("generate request failed: %s", strings.TrimSpace(string(msg))))
	}

	var final generateResponse
	var text string
	if opts.Stream {
		final, text, err = readStream(resp.Body)
	} else {
		err = json.NewDecoder(resp.Body).Decode(&final)
		text = final.Response
	}
	if err != nil {
		return nil, model.Upstream(ProviderName, resp.StatusCode, err)
	}
	if final.Error != "" {
		return nil, model.Upstream(ProviderName, resp.StatusCode, errors.New(final.Error))
	}

	used := modelName
	if final.Model != "" {
		used = final.Model
	}
	return &model.Response{
		Text:           text,
		ModelUsed:      used,
		TokensUsed:     final.EvalCount,
		ProcessingTime: timer.Elapsed(),
		Provider:       ProviderName,
		Metadata: map[string]any{
			"done":              final.Done,
			"done_reason":       final.DoneReason,
			"eval_count":        final.EvalCount,
			"prompt_eval_count": final.PromptEvalCount,
			"total_duration":    final.TotalDuration,
		},
	}, nil
}

// readStream consumes NDJSON chunks until the final "done" chunk, returning
// that chunk and the concatenated response text.
func readStream(r io.Reader) (generateResponse, string, error) {
	var (
		final generateResponse
		text  strings.Builder
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return final, "", fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return chunk, "", errors.New(chunk.Error)
		}
		text.WriteString(chunk.Response)
		if chunk.Done {
			final = chunk
			return final, text.String(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return final, "", fmt.Errorf("read stream: %w", err)
	}
	return final, "", errors.New("stream ended before completion")
}

// Name implements model.Provider.
func (p *Provider) Name() string { return ProviderName }

// DefaultModel returns the model used when a call does not override it.
func (p *Provider) DefaultModel() string { return p.opts.Model }
