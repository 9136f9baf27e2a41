package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentdesk/agent"
)

// ErrDuplicateID is returned by Put when the id is already taken.
var ErrDuplicateID = errors.New("agent id already registered")

// InMemory is a volatile agent registry storing live agents in a process
// local map. It is safe for concurrent access. Listing preserves insertion
// order.
type InMemory struct {
	mu     sync.RWMutex
	agents map[string]agent.Agent
	order  []string
}

// NewInMemory constructs an empty registry.
func NewInMemory() *InMemory {
	return &InMemory{agents: make(map[string]agent.Agent)}
}

// Put registers a under id.
func (r *InMemory) Put(id string, a agent.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	r.agents[id] = a
	r.order = append(r.order, id)
	return nil
}

// Get returns the agent registered under id.
func (r *InMemory) Get(id string) (agent.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// Delete removes id and reports whether it was present.
func (r *InMemory) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[id]; !ok {
		return false
	}
	delete(r.agents, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the ids in insertion order.
func (r *InMemory) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered agents.
func (r *InMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
