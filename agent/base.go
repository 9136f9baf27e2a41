package agent

import (
	"context"
	"time"

	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/model"
)

type llmLogger interface {
	LogLLMCall(model string, tokens int, dur time.Duration, success bool, err error)
}

// baseAgent bundles identity, the bound provider and the generation options
// shared by every variant.
type baseAgent struct {
	id       string
	name     string
	kind     Kind
	provider model.Provider
	model    string
	config   map[string]any
	genOpts  model.Options
	logger   logging.Logger
}

func newBaseAgent(kind Kind, p Params) (baseAgent, error) {
	if p.Provider == nil {
		return baseAgent{}, &model.ConfigurationError{Component: string(kind), Field: "provider", Reason: "no provider bound"}
	}
	genOpts, err := model.OptionsFromMap(p.Config)
	if err != nil {
		return baseAgent{}, err
	}
	if p.Model != "" {
		genOpts.Model = p.Model
	}

	cfg := make(map[string]any, len(p.Config))
	for k, v := range p.Config {
		cfg[k] = v
	}

	name := p.Name
	if name == "" {
		name = defaultName(kind)
	}
	b := baseAgent{
		id:       p.ID,
		name:     name,
		kind:     kind,
		provider: p.Provider,
		model:    p.Model,
		config:   cfg,
		genOpts:  genOpts,
		logger:   logging.OrNoOp(p.Logger),
	}
	b.logger.Info("agent initialized", "agent", name, "agent_type", string(kind), "provider", p.Provider.Name())
	return b, nil
}

func defaultName(kind Kind) string {
	switch kind {
	case KindCode:
		return "CodeAgent"
	case KindSearch:
		return "SearchAgent"
	default:
		return "ChatAgent"
	}
}

// Info implements Agent.
func (b *baseAgent) Info() Info {
	cfg := make(map[string]any, len(b.config))
	for k, v := range b.config {
		cfg[k] = v
	}
	return Info{
		ID:       b.id,
		Name:     b.name,
		Kind:     b.kind,
		Provider: b.provider.Name(),
		Model:    b.model,
		Config:   cfg,
	}
}

// generate runs one generation call against the bound provider. Errors are
// logged and returned unchanged.
//
// The call is detached from ctx cancellation: a caller that gives up does
// not abort the backend request, which stays bounded by the provider's own
// timeout.
func (b *baseAgent) generate(ctx context.Context, prompt string) (*model.Response, error) {
	timer := model.StartTimer()
	resp, err := b.provider.Generate(context.WithoutCancel(ctx), prompt, b.genOpts)
	if l, ok := b.logger.(llmLogger); ok {
		if err != nil {
			l.LogLLMCall(b.genOpts.Model, 0, timer.Elapsed(), false, err)
		} else {
			l.LogLLMCall(resp.ModelUsed, resp.TokensUsed, resp.ProcessingTime, true, nil)
		}
	} else if err != nil {
		b.logger.Error("generation failed", "agent", b.name, "error", err)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// result fills the common Result fields from resp. metadata is extended
// with the provider name.
func (b *baseAgent) result(resp *model.Response, metadata map[string]any) *Result {
	if metadata == nil {
		metadata = make(map[string]any, 1)
	}
	metadata["provider"] = resp.Provider
	agentID := b.id
	if agentID == "" {
		agentID = b.name
	}
	return &Result{
		AgentID:        agentID,
		Response:       resp.Text,
		ModelUsed:      resp.ModelUsed,
		TokensUsed:     resp.TokensUsed,
		ProcessingTime: resp.ProcessingTime,
		Metadata:       metadata,
	}
}
