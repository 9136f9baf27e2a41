package memory

import "sync"

// DefaultCapacity is the number of turns kept when no capacity is configured.
const DefaultCapacity = 10

// Turn is one exchange between the user and the agent. Turns are immutable
// once appended.
type Turn struct {
	UserMessage  string `json:"user"`
	AgentMessage string `json:"agent"`
}

// Window is an ordered FIFO of turns holding at most Capacity entries.
// Appending to a full window evicts the oldest turn. It is safe for
// concurrent use.
type Window struct {
	mu       sync.RWMutex
	capacity int
	turns    []Turn
}

// NewWindow creates a window holding at most capacity turns. A capacity
// below one falls back to DefaultCapacity.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Window{capacity: capacity, turns: make([]Turn, 0, capacity)}
}

// Append adds t as the newest turn, dropping the oldest ones so the window
// never exceeds its capacity.
func (w *Window) Append(t Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = append(w.turns, t)
	if over := len(w.turns) - w.capacity; over > 0 {
		// fresh backing array so evicted turns can be collected
		kept := make([]Turn, w.capacity)
		copy(kept, w.turns[over:])
		w.turns = kept
	}
}

// Recent returns the last min(k, Len()) turns, oldest first. The returned
// slice is a copy.
func (w *Window) Recent(k int) []Turn {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if k <= 0 {
		return []Turn{}
	}
	if k > len(w.turns) {
		k = len(w.turns)
	}
	out := make([]Turn, k)
	copy(out, w.turns[len(w.turns)-k:])
	return out
}

// Turns returns a copy of every turn in the window, oldest first.
func (w *Window) Turns() []Turn {
	return w.Recent(w.Capacity())
}

// Clear removes all turns.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = make([]Turn, 0, w.capacity)
}

// Len returns the number of turns currently held.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.turns)
}

// Capacity returns the maximum number of turns held.
func (w *Window) Capacity() int { return w.capacity }
