package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentdesk/logging"
	"github.com/hupe1980/agentdesk/memory"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/search"
)

// Kind tags an agent variant.
type Kind string

// Supported agent kinds.
const (
	KindChat   Kind = "chat"
	KindCode   Kind = "code"
	KindSearch Kind = "search"
)

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindChat, KindCode, KindSearch:
		return k, nil
	default:
		return "", &model.ConfigurationError{Component: "agent", Field: "agent_type", Reason: fmt.Sprintf("unsupported agent type %q", s)}
	}
}

// Info describes an agent's identity and configuration.
type Info struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Kind     Kind           `json:"agent_type"`
	Provider string         `json:"provider"`
	Model    string         `json:"model_name,omitempty"`
	Config   map[string]any `json:"config"`
}

// Result is the uniform output of Process.
type Result struct {
	AgentID        string         `json:"agent_id"`
	Response       string         `json:"response"`
	ModelUsed      string         `json:"model_used"`
	TokensUsed     int            `json:"tokens_used"`
	ProcessingTime time.Duration  `json:"processing_time"`
	Metadata       map[string]any `json:"metadata"`
}

// Agent is the capability shared by every variant.
type Agent interface {
	// Info returns the agent's identity. The returned Config is a copy.
	Info() Info

	// Process answers message. msgCtx carries optional per call hints
	// ("search_query", "requirements", "constraints"). It returns either a
	// complete Result or an error.
	Process(ctx context.Context, message string, msgCtx map[string]any) (*Result, error)
}

// HistoryKeeper is implemented by agents that keep conversation history.
type HistoryKeeper interface {
	History() []memory.Turn
	ClearHistory()
}

// Params carries everything needed to construct an agent.
type Params struct {
	ID       string
	Name     string
	Provider model.Provider
	// Model overrides the provider's default model when set.
	Model  string
	Config map[string]any
	// Engines supplies credentials and endpoints for search agents.
	Engines search.EngineConfig
	Logger  logging.Logger
}

// New constructs an agent of the given kind. Configuration errors are
// reported as *model.ConfigurationError.
func New(kind Kind, p Params) (Agent, error) {
	switch kind {
	case KindChat:
		return NewChat(p)
	case KindCode:
		return NewCode(p)
	case KindSearch:
		return NewSearch(p)
	default:
		_, err := ParseKind(string(kind))
		return nil, err
	}
}
