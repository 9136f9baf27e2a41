package model

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a lightweight in‑memory Provider useful for tests & examples.
// It records every prompt it receives.
type MockProvider struct {
	mu        sync.Mutex
	name      string
	model     string
	responses map[string]string
	fallback  func(prompt string) string
	err       error
	prompts   []string
}

// NewMockProvider constructs a MockProvider reporting the given names.
func NewMockProvider(name, modelName string) *MockProvider {
	return &MockProvider{name: name, model: modelName, responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockProvider) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetFallback sets the function used when no canned response matches.
func (m *MockProvider) SetFallback(fn func(prompt string) string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
}

// SetError makes every subsequent Generate call fail with err.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Prompts returns a copy of all prompts received so far.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Generate implements Provider.
func (m *MockProvider) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer := StartTimer()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return nil, m.err
	}
	text, ok := m.responses[prompt]
	if !ok {
		if m.fallback != nil {
			text = m.fallback(prompt)
		} else {
			text = fmt.Sprintf("Mock response to: %s", prompt)
		}
	}
	modelName := m.model
	if opts.Model != "" {
		modelName = opts.Model
	}
	return &Response{
		Text:           text,
		ModelUsed:      modelName,
		TokensUsed:     len(text),
		ProcessingTime: timer.Elapsed(),
		Provider:       m.name,
		Metadata:       map[string]any{"mock": true},
	}, nil
}

// Name implements Provider.
func (m *MockProvider) Name() string { return m.name }
