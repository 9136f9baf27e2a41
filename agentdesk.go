// Package agentdesk is the entry point for hosting agents. A Desk creates
// agents bound to a provider, keeps them in a registry under generated
// handles and routes messages to them. The HTTP layer that exposes a Desk
// over the network is out of scope; any transport can drive the methods
// below directly.
//
// Typical wiring:
//
//	cfg, _ := config.Load("")
//	r := router.New(cfg.RouterConfig(logger))
//	desk := agentdesk.New(r, func(o *agentdesk.Options) {
//		o.Engines = cfg.EngineConfig()
//		o.Logger = logger
//	})
//	id, _ := desk.CreateAgent(ctx, "chat", "helper", "ollama", nil)
//	res, _ := desk.Process(ctx, id, "Hello!", nil)
package agentdesk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/core"
	"github.com/hupe1980/agentdesk/internal/util"
	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/memory"
	"github.com/hupe1980/agentdesk/registry"
	"github.com/hupe1980/agentdesk/router"
	"github.com/hupe1980/agentdesk/search"
)

// ErrAgentNotFound is returned for unknown agent handles.
var ErrAgentNotFound = errors.New("agent not found")

// DefaultProvider is used when CreateAgent is called without a provider.
const DefaultProvider = router.Ollama

// Options configures a Desk.
type Options struct {
	// Registry holds live agents (defaults to a fresh in-memory registry).
	Registry *registry.InMemory
	// Metadata, when set, persists agent descriptions so they can be
	// restored with Restore after a restart.
	Metadata core.MetadataStore
	// Engines supplies search engine credentials to search agents.
	Engines search.EngineConfig
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Desk creates, stores and drives agents.
type Desk struct {
	router   *router.Router
	registry *registry.InMemory
	metadata core.MetadataStore
	engines  search.EngineConfig
	logger   logging.Logger
}

// New creates a Desk dispatching generation through r.
func New(r *router.Router, optFns ...func(o *Options)) *Desk {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = registry.NewInMemory()
	}
	return &Desk{
		router:   r,
		registry: opts.Registry,
		metadata: opts.Metadata,
		engines:  opts.Engines,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// CreateAgent builds an agent of the given kind ("chat", "code", "search")
// bound to provider and returns its handle. cfg holds the kind specific
// options, the generation options and optionally "model_name" to override
// the provider's default model.
//
// Unknown kinds and missing credentials yield *model.ConfigurationError,
// unknown providers *model.UnknownProviderError. Nothing is sent over the
// network.
func (d *Desk) CreateAgent(ctx context.Context, kind, name, provider string, cfg map[string]any) (string, error) {
	k, err := agent.ParseKind(kind)
	if err != nil {
		return "", err
	}
	if provider == "" {
		provider = DefaultProvider
	}
	id := util.NewID(string(k))
	if err := d.build(k, id, name, provider, cfg); err != nil {
		return "", err
	}

	if d.metadata != nil {
		now := time.Now()
		rec := core.AgentRecord{
			ID:        id,
			Name:      name,
			Kind:      string(k),
			Provider:  provider,
			Model:     modelName(cfg),
			Config:    cfg,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := d.metadata.Save(ctx, rec); err != nil {
			d.registry.Delete(id)
			return "", fmt.Errorf("persist agent %s: %w", id, err)
		}
	}

	d.logger.Info("agent created", "agent_id", id, "agent_type", string(k), "provider", provider)
	return id, nil
}

func (d *Desk) build(k agent.Kind, id, name, provider string, cfg map[string]any) error {
	p, err := d.router.Resolve(provider)
	if err != nil {
		return err
	}
	a, err := agent.New(k, agent.Params{
		ID:       id,
		Name:     name,
		Provider: p,
		Model:    modelName(cfg),
		Config:   cfg,
		Engines:  d.engines,
		Logger:   d.logger,
	})
	if err != nil {
		return err
	}
	return d.registry.Put(id, a)
}

func modelName(cfg map[string]any) string {
	if v, ok := cfg["model_name"].(string); ok {
		return v
	}
	return ""
}

// Agent returns the live agent registered under id.
func (d *Desk) Agent(id string) (agent.Agent, error) {
	a, ok := d.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return a, nil
}

// DeleteAgent discards the agent and its persisted description.
func (d *Desk) DeleteAgent(ctx context.Context, id string) error {
	if !d.registry.Delete(id) {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	if d.metadata != nil {
		if err := d.metadata.Delete(ctx, id); err != nil && !errors.Is(err, core.ErrRecordNotFound) {
			return err
		}
	}
	d.logger.Info("agent deleted", "agent_id", id)
	return nil
}

// ListAgents describes every live agent in creation order.
func (d *Desk) ListAgents() []agent.Info {
	ids := d.registry.List()
	out := make([]agent.Info, 0, len(ids))
	for _, id := range ids {
		if a, ok := d.registry.Get(id); ok {
			out = append(out, a.Info())
		}
	}
	return out
}

// Process sends message to the agent registered under id.
func (d *Desk) Process(ctx context.Context, id, message string, msgCtx map[string]any) (*agent.Result, error) {
	a, err := d.Agent(id)
	if err != nil {
		return nil, err
	}
	return a.Process(ctx, message, msgCtx)
}

// History returns the conversation history of the agent, empty for agents
// that keep none.
func (d *Desk) History(id string) ([]memory.Turn, error) {
	a, err := d.Agent(id)
	if err != nil {
		return nil, err
	}
	if hk, ok := a.(agent.HistoryKeeper); ok {
		return hk.History(), nil
	}
	return []memory.Turn{}, nil
}

// ClearHistory drops the conversation history of the agent.
func (d *Desk) ClearHistory(id string) error {
	a, err := d.Agent(id)
	if err != nil {
		return err
	}
	if hk, ok := a.(agent.HistoryKeeper); ok {
		hk.ClearHistory()
	}
	return nil
}

// Providers lists the providers usable with the current configuration.
func (d *Desk) Providers() []string { return d.router.Available() }

// Restore recreates the agents persisted in the metadata store under their
// original handles. Records that can no longer be built (missing
// credentials, unknown provider) are skipped with a warning. It returns the
// number of restored agents.
func (d *Desk) Restore(ctx context.Context) (int, error) {
	if d.metadata == nil {
		return 0, nil
	}
	records, err := d.metadata.List(ctx)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, rec := range records {
		if !rec.Active {
			continue
		}
		if _, ok := d.registry.Get(rec.ID); ok {
			continue
		}
		k, err := agent.ParseKind(rec.Kind)
		if err == nil {
			err = d.build(k, rec.ID, rec.Name, rec.Provider, rec.Config)
		}
		if err != nil {
			d.logger.Warn("skipping persisted agent", "agent_id", rec.ID, "error", err)
			continue
		}
		restored++
	}
	return restored, nil
}
