package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(s string) Turn { return Turn{UserMessage: s, AgentMessage: "re: " + s} }

func TestWindow_EvictsOldest(t *testing.T) {
	w := NewWindow(2)
	w.Append(turn("A"))
	w.Append(turn("B"))
	w.Append(turn("C"))

	assert.Equal(t, []Turn{turn("B"), turn("C")}, w.Turns())
	assert.Equal(t, 2, w.Len())
}

func TestWindow_LengthNeverExceedsCapacity(t *testing.T) {
	for _, capacity := range []int{1, 3, 10} {
		for extra := 0; extra < 5; extra++ {
			t.Run(fmt.Sprintf("cap=%d/extra=%d", capacity, extra), func(t *testing.T) {
				w := NewWindow(capacity)
				var appended []Turn
				for i := 0; i < capacity+extra; i++ {
					tr := turn(fmt.Sprint(i))
					appended = append(appended, tr)
					w.Append(tr)
					require.LessOrEqual(t, w.Len(), capacity)
				}
				assert.Equal(t, appended[len(appended)-capacity:], w.Turns())
			})
		}
	}
}

func TestWindow_Recent(t *testing.T) {
	w := NewWindow(5)
	assert.Empty(t, w.Recent(3))

	w.Append(turn("A"))
	w.Append(turn("B"))
	w.Append(turn("C"))

	assert.Equal(t, []Turn{turn("B"), turn("C")}, w.Recent(2))
	assert.Equal(t, []Turn{turn("A"), turn("B"), turn("C")}, w.Recent(10))
	assert.Empty(t, w.Recent(0))

	got := w.Recent(1)
	got[0].UserMessage = "mutated"
	assert.Equal(t, "C", w.Recent(1)[0].UserMessage)
}

func TestWindow_ClearAndDefaults(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, DefaultCapacity, w.Capacity())

	w.Append(turn("A"))
	w.Clear()
	assert.Zero(t, w.Len())
	assert.Empty(t, w.Turns())
}

func TestWindow_ConcurrentAppend(t *testing.T) {
	w := NewWindow(4)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w.Append(turn(fmt.Sprint(i)))
			assert.LessOrEqual(t, w.Len(), 4)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, w.Len())
}
