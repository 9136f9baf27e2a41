package agent

import (
	"context"

	"github.com/hupe1980/agentdesk/internal/util"
	"github.com/hupe1980/agentdesk/memory"
	"github.com/hupe1980/agentdesk/model"
	"github.com/hupe1980/agentdesk/prompt"
)

// Chat is a conversational agent. It keeps the last MaxHistory exchanges and
// replays them in every prompt.
type Chat struct {
	baseAgent
	systemPrompt string
	history      *memory.Window
}

// NewChat creates a chat agent. Recognized config keys: system_prompt,
// max_history plus the generation options.
//
// The system prompt may reference message context values as template
// fields, e.g. "You are talking to {{default \"a guest\" .user_name}}.".
func NewChat(p Params) (*Chat, error) {
	cfg := ChatConfig{SystemPrompt: prompt.DefaultSystemPrompt, MaxHistory: memory.DefaultCapacity}
	if err := decodeConfig(string(KindChat), p.Config, &cfg); err != nil {
		return nil, err
	}
	if _, err := util.ParseTemplate(cfg.SystemPrompt); err != nil {
		return nil, &model.ConfigurationError{Component: string(KindChat), Field: "system_prompt", Reason: err.Error()}
	}
	base, err := newBaseAgent(KindChat, p)
	if err != nil {
		return nil, err
	}
	return &Chat{
		baseAgent:    base,
		systemPrompt: cfg.SystemPrompt,
		history:      memory.NewWindow(cfg.MaxHistory),
	}, nil
}

// Process implements Agent. The exchange is appended to the history only
// after a successful generation.
func (c *Chat) Process(ctx context.Context, message string, msgCtx map[string]any) (*Result, error) {
	system, err := util.RenderTemplate(c.systemPrompt, msgCtx)
	if err != nil {
		return nil, err
	}
	text, err := prompt.Chat(prompt.ChatInput{
		System:  system,
		History: c.history.Turns(),
		Message: message,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.generate(ctx, text)
	if err != nil {
		return nil, err
	}

	c.history.Append(memory.Turn{UserMessage: message, AgentMessage: resp.Text})

	return c.result(resp, map[string]any{
		"conversation_length": c.history.Len(),
	}), nil
}

// History returns the retained turns, oldest first.
func (c *Chat) History() []memory.Turn { return c.history.Turns() }

// ClearHistory drops every retained turn.
func (c *Chat) ClearHistory() {
	c.history.Clear()
	c.logger.Info("conversation history cleared", "agent", c.name)
}
