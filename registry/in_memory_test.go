package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/agentdesk/agent"
	"github.com/hupe1980/agentdesk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChat(t *testing.T, name string) agent.Agent {
	t.Helper()
	a, err := agent.NewChat(agent.Params{Name: name, Provider: model.NewMockProvider("mock", "m")})
	require.NoError(t, err)
	return a
}

func TestInMemory_Lifecycle(t *testing.T) {
	r := NewInMemory()
	a := newChat(t, "one")

	require.NoError(t, r.Put("chat_1", a))
	assert.ErrorIs(t, r.Put("chat_1", a), ErrDuplicateID)

	got, ok := r.Get("chat_1")
	require.True(t, ok)
	assert.Same(t, a, got)

	require.NoError(t, r.Put("chat_2", newChat(t, "two")))
	require.NoError(t, r.Put("chat_3", newChat(t, "three")))
	assert.Equal(t, []string{"chat_1", "chat_2", "chat_3"}, r.List())

	assert.True(t, r.Delete("chat_2"))
	assert.False(t, r.Delete("chat_2"))
	assert.Equal(t, []string{"chat_1", "chat_3"}, r.List())
	assert.Equal(t, 2, r.Len())

	_, ok = r.Get("chat_2")
	assert.False(t, ok)
}

func TestInMemory_Concurrent(t *testing.T) {
	r := NewInMemory()
	a := newChat(t, "shared")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("chat_%d", i)
			assert.NoError(t, r.Put(id, a))
			_, ok := r.Get(id)
			assert.True(t, ok)
			if i%2 == 0 {
				r.Delete(id)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 25, r.Len())
	assert.Len(t, r.List(), 25)
}
