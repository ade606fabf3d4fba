package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	N     int
	Label string
}

func TestContainer_GetSet(t *testing.T) {
	c := New(counter{Label: "start"}, nil)

	c.Set(func(s counter) counter {
		s.N++
		return s
	})

	assert.Equal(t, counter{N: 1, Label: "start"}, c.Get())
	assert.Equal(t, uint64(1), c.Version())
}

func TestContainer_ListenersSeeNextAndPrevInOrder(t *testing.T) {
	c := New(counter{}, nil)

	var seen [][2]int
	c.Subscribe(func(next, prev counter) {
		seen = append(seen, [2]int{prev.N, next.N})
		// Listeners may read.
		assert.Equal(t, next, c.Get())
	})

	for range 3 {
		c.Set(func(s counter) counter { s.N++; return s })
	}

	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}}, seen)
}

func TestContainer_NotifiesBeforeSetReturns(t *testing.T) {
	c := New(counter{}, nil)
	notified := false
	c.Subscribe(func(counter, counter) { notified = true })

	c.Set(func(s counter) counter { return s })

	assert.True(t, notified)
}

func TestContainer_UnsubscribeIsIdempotent(t *testing.T) {
	c := New(counter{}, nil)
	calls := 0
	unsubscribe := c.Subscribe(func(counter, counter) { calls++ })
	other := c.Subscribe(func(counter, counter) {})

	c.Set(func(s counter) counter { return s })
	unsubscribe()
	unsubscribe()
	c.Set(func(s counter) counter { return s })

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Listeners())
	other()
	assert.Equal(t, 0, c.Listeners())
}

func TestContainer_PanickingListenerDoesNotBlockOthers(t *testing.T) {
	c := New(counter{}, nil)
	c.Subscribe(func(counter, counter) { panic("boom") })
	reached := false
	c.Subscribe(func(counter, counter) { reached = true })

	require.NotPanics(t, func() {
		c.Set(func(s counter) counter { s.N = 7; return s })
	})
	assert.True(t, reached)
	assert.Equal(t, 7, c.Get().N)
}

func TestContainer_ConcurrentReadModifyWrite(t *testing.T) {
	c := New(counter{}, nil)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set(func(s counter) counter { s.N++; return s })
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.Get().N)
	assert.Equal(t, uint64(50), c.Version())
}

func TestContainer_Replace(t *testing.T) {
	c := New(counter{N: 1}, nil)
	var prevSeen counter
	c.Subscribe(func(_, prev counter) { prevSeen = prev })

	c.Replace(counter{N: 9, Label: "hydrated"})

	assert.Equal(t, counter{N: 9, Label: "hydrated"}, c.Get())
	assert.Equal(t, 1, prevSeen.N)
}

func TestContainer_UpdateWithoutChangeIsSilent(t *testing.T) {
	c := New(counter{N: 1}, nil)
	calls := 0
	c.Subscribe(func(counter, counter) { calls++ })

	applied := c.Update(func(s counter) (counter, bool) { return s, false })

	assert.False(t, applied)
	assert.Equal(t, 0, calls)
	assert.Equal(t, uint64(0), c.Version())

	applied = c.Update(func(s counter) (counter, bool) { s.N = 2; return s, true })
	assert.True(t, applied)
	assert.Equal(t, 1, calls)
}
