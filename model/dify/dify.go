// Package dify provides an implementation of model.Provider backed by a Dify
// conversational workflow application (POST /chat-messages). Both blocking and
// streaming (server-sent events) response modes are supported; streamed
// events are folded into a single model.Response.
package dify

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
	"github.com/tidwall/gjson"
)

// ProviderName is the router name of this provider.
const ProviderName = "dify"

// Options configure the Dify provider adapter.
type Options struct {
	APIKey      string
	BaseURL     string
	DefaultUser string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Provider wraps the Dify chat-messages API behind model.Provider.
type Provider struct {
	client *http.Client
	opts   Options
}

// New creates a new Dify provider. It fails with a *model.ConfigurationError
// when no API key is configured; no request is made in that case.
func New(optFns ...func(o *Options)) (*Provider, error) {
	opts := Options{
		BaseURL:     "https://api.dify.ai/v1",
		DefaultUser: "default",
		Timeout:     60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, model.MissingCredential(ProviderName)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Provider{client: client, opts: opts}, nil
}

type chatRequest struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	ResponseMode   string         `json:"response_mode"`
	ConversationID string         `json:"conversation_id,omitempty"`
	User           string         `json:"user"`
}

// Generate implements model.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, opts model.Options) (*model.Response, error) {
	mode := "blocking"
	if opts.Stream {
		mode = "streaming"
	}
	user := opts.User
	if user == "" {
		user = p.opts.DefaultUser
	}
	body, err := json.Marshal(chatRequest{
		Inputs:         map[string]any{},
		Query:          prompt,
		ResponseMode:   mode,
		ConversationID: opts.ConversationID,
		User:           user,
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
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.BaseURL+"/chat-messages", bytes.NewReader(body))
	if err != nil {
		return nil, model.Upstream(ProviderName, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, model.Upstream(ProviderName, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		reason := gjson.GetBytes(msg, "message").String()
		if reason == "" {
			reason = strings.TrimSpace(string(msg))
		}
		return nil, model.Upstream(ProviderName, resp.StatusCode, errors.New(reason))
	}

	var out *model.Response
	if opts.Stream {
		out, err = readEvents(resp.Body)
	} else {
		out, err = readBlocking(resp.Body)
	}
	if err != nil {
		return nil, model.Upstream(ProviderName, resp.StatusCode, err)
	}
	out.ProcessingTime = timer.Elapsed()
	return out, nil
}

func readBlocking(r io.Reader) (*model.Response, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("malformed response body")
	}
	result := gjson.ParseBytes(raw)
	metadata, _ := result.Value().(map[string]any)
	return &model.Response{
		Text:       result.Get("answer").String(),
		ModelUsed:  ProviderName,
		TokensUsed: totalTokens(result),
		Provider:   ProviderName,
		Metadata:   metadata,
	}, nil
}

// readEvents folds a server-sent event stream into one response. Text comes
// from "message" and "agent_message" events, usage from "message_end".
func readEvents(r io.Reader) (*model.Response, error) {
	var (
		text     strings.Builder
		tokens   int
		convID   string
		msgID    string
		finished bool
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || !gjson.Valid(payload) {
			continue
		}
		ev := gjson.Parse(payload)
		if id := ev.Get("conversation_id").String(); id != "" {
			convID = id
		}
		if id := ev.Get("message_id").String(); id != "" {
			msgID = id
		}
		switch ev.Get("event").String() {
		case "message", "agent_message":
			text.WriteString(ev.Get("answer").String())
		case "message_end":
			tokens = totalTokens(ev)
			finished = true
		case "error":
			return nil, fmt.Errorf("stream error (status %d): %s", ev.Get("status").Int(), ev.Get("message").String())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	if !finished {
		return nil, errors.New("stream ended before message_end")
	}
	return &model.Response{
		Text:       text.String(),
		ModelUsed:  ProviderName,
		TokensUsed: tokens,
		Provider:   ProviderName,
		Metadata: map[string]any{
			"conversation_id": convID,
			"message_id":      msgID,
			"streamed":        true,
		},
	}, nil
}

// totalTokens reads usage from either the documented metadata.usage location
// or a top level usage object.
func totalTokens(res gjson.Result) int {
	if v := res.Get("metadata.usage.total_tokens"); v.Exists() {
		return int(v.Int())
	}
	return int(res.Get("usage.total_tokens").Int())
}

// Name implements model.Provider.
func (p *Provider) Name() string { return ProviderName }

// DefaultModel returns the model identifier reported for this backend.
func (p *Provider) DefaultModel() string { return ProviderName }
