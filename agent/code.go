package agent

import (
	"context"
	"sync"

	"github.com/hupe1980/agentdesk/code"
	"github.com/hupe1980/agentdesk/memory"
	"github.com/hupe1980/agentdesk/prompt"
)

// Code is a code generation agent for a target language and optional
// framework.
type Code struct {
	baseAgent

	mu        sync.RWMutex
	language  string
	framework string
}

// NewCode creates a code agent. Recognized config keys: language (default
// python), framework plus the generation options.
func NewCode(p Params) (*Code, error) {
	cfg := CodeConfig{Language: "python"}
	if err := decodeConfig(string(KindCode), p.Config, &cfg); err != nil {
		return nil, err
	}
	base, err := newBaseAgent(KindCode, p)
	if err != nil {
		return nil, err
	}
	return &Code{baseAgent: base, language: cfg.Language, framework: cfg.Framework}, nil
}

// Process implements Agent. Fenced blocks of the answer are returned in
// metadata["code_blocks"].
func (c *Code) Process(ctx context.Context, message string, msgCtx map[string]any) (*Result, error) {
	language, framework := c.Language(), c.Framework()

	text, err := prompt.Code(prompt.CodeInput{
		Language:  language,
		Framework: framework,
		Context:   msgCtx,
		Message:   message,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.generate(ctx, text)
	if err != nil {
		return nil, err
	}

	blocks := code.Extract(resp.Text)
	if blocks == nil {
		blocks = []code.Block{}
	}
	return c.result(resp, map[string]any{
		"language":         language,
		"framework":        framework,
		"code_blocks":      blocks,
		"code_block_count": len(blocks),
		"code_languages":   code.Languages(blocks),
	}), nil
}

// Language returns the target language.
func (c *Code) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// Framework returns the target framework, possibly empty.
func (c *Code) Framework() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.framework
}

// SetLanguage changes the target language for subsequent calls.
func (c *Code) SetLanguage(language string) {
	c.mu.Lock()
	c.language = language
	c.mu.Unlock()
	c.logger.Info("code agent language changed", "agent", c.name, "language", language)
}

// SetFramework changes the target framework for subsequent calls.
func (c *Code) SetFramework(framework string) {
	c.mu.Lock()
	c.framework = framework
	c.mu.Unlock()
	c.logger.Info("code agent framework changed", "agent", c.name, "framework", framework)
}

// History returns an empty slice; code agents keep no history.
func (c *Code) History() []memory.Turn { return []memory.Turn{} }

// ClearHistory is a no-op.
func (c *Code) ClearHistory() {}
