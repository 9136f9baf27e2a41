package core

import (
	"context"
	"errors"
	"time"
)

// ErrRecordNotFound is returned by MetadataStore implementations when no
// record matches the requested id.
var ErrRecordNotFound = errors.New("agent record not found")

// AgentRecord is the durable description of an agent. Conversation history
// is never part of it.
type AgentRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Kind        string         `json:"agent_type"`
	Provider    string         `json:"provider"`
	Model       string         `json:"model_name,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Active      bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// MetadataStore persists agent records.
type MetadataStore interface {
	// Save inserts or replaces the record with the same ID.
	Save(ctx context.Context, rec AgentRecord) error
	// Get returns ErrRecordNotFound for unknown ids.
	Get(ctx context.Context, id string) (AgentRecord, error)
	// Delete returns ErrRecordNotFound for unknown ids.
	Delete(ctx context.Context, id string) error
	// List returns every record ordered by creation time.
	List(ctx context.Context) ([]AgentRecord, error)
}
