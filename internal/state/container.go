// Package state provides the process-wide mutable state container.
//
// A Container holds one value of S. Reads are synchronous and never block on
// writers for longer than a copy. Writes go through Set, which hands the
// updater the latest value, so read-modify-write sequences that straddle a
// backend call re-read state right before their second write instead of
// trusting a snapshot captured before the call.
//
// Thread safety: all methods are safe for concurrent use. Writers are
// serialized and every listener observes writes in the order they were
// applied.
package state

import (
	"fmt"
	"log/slog"
	"sync"
)

// Listener is invoked after every Set with the new and previous values.
// Listeners may call Get but must not call Set.
type Listener[S any] func(next, prev S)

type subscription[S any] struct {
	id uint64
	fn Listener[S]
}

// Container holds a single state value and notifies subscribers on change.
type Container[S any] struct {
	writeMu sync.Mutex   // serializes Set, including listener dispatch
	mu      sync.RWMutex // protects value, version and subs
	value   S
	version uint64
	nextID  uint64
	subs    []subscription[S]
	logger  *slog.Logger
}

// New creates a container seeded with initial.
func New[S any](initial S, logger *slog.Logger) *Container[S] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Container[S]{value: initial, logger: logger}
}

// Get returns the current value.
func (c *Container[S]) Get() S {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Version returns the number of applied writes.
func (c *Container[S]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Set applies update to the latest value and synchronously notifies every
// listener before returning.
func (c *Container[S]) Set(update func(S) S) {
	c.Update(func(s S) (S, bool) { return update(s), true })
}

// Update is Set for updaters that may decide nothing changed. When update
// returns false the value, version and listeners are left alone.
func (c *Container[S]) Update(update func(S) (S, bool)) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	// The updater runs without mu so it may call Get.
	prev := c.Get()
	next, changed := update(prev)
	if !changed {
		return false
	}

	c.mu.Lock()
	c.value = next
	c.version++
	subs := c.subs
	c.mu.Unlock()

	for _, sub := range subs {
		c.notify(sub, next, prev)
	}
	return true
}

// Replace swaps in a whole new value. Used when hydrating from storage.
func (c *Container[S]) Replace(next S) {
	c.Set(func(S) S { return next })
}

// Subscribe registers a listener and returns its unsubscribe func.
// Unsubscribing more than once is a no-op.
func (c *Container[S]) Subscribe(fn Listener[S]) func() {
	c.mu.Lock()
	c.nextID++
	sid := c.nextID
	// Copy-on-write so Set can iterate a snapshot without holding mu.
	subs := make([]subscription[S], len(c.subs), len(c.subs)+1)
	copy(subs, c.subs)
	c.subs = append(subs, subscription[S]{id: sid, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(sid) })
	}
}

// Listeners returns the number of registered listeners.
func (c *Container[S]) Listeners() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

func (c *Container[S]) unsubscribe(sid uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs := make([]subscription[S], 0, len(c.subs))
	for _, s := range c.subs {
		if s.id != sid {
			subs = append(subs, s)
		}
	}
	c.subs = subs
}

func (c *Container[S]) notify(sub subscription[S], next, prev S) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("state listener panicked",
				slog.Uint64("listener_id", sub.id),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()
	sub.fn(next, prev)
}
