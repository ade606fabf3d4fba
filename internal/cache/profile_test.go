package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
)

type stubSource struct {
	mu       sync.Mutex
	profiles map[string]*domain.AuthorProfile
	err      error
	calls    atomic.Int32
	gate     chan struct{}
}

func (s *stubSource) GetUserProfile(_ context.Context, id string) (*domain.AuthorProfile, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles[id], nil
}

func (s *stubSource) set(id string, p *domain.AuthorProfile, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p != nil {
		s.profiles[id] = p
	}
	s.err = err
}

func newStub() *stubSource {
	return &stubSource{profiles: map[string]*domain.AuthorProfile{
		"a1": {Name: "Ana", Avatar: "ana.png"},
	}}
}

func TestProfileCache_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := newStub()
	c, err := NewProfileCache(src, WithClock(clock), WithTTL(60*time.Second))
	require.NoError(t, err)
	ctx := context.Background()

	e, err := c.Lookup(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", e.Profile.Name)
	assert.Equal(t, int32(1), src.calls.Load())

	clock.Advance(59 * time.Second)
	_, err = c.Lookup(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load(), "lookup inside TTL must not fetch")

	clock.Advance(2 * time.Second)
	_, err = c.Lookup(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load(), "lookup after TTL must refetch")
}

func TestProfileCache_FailureKeepsStaleEntry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := newStub()
	c, err := NewProfileCache(src, WithClock(clock))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Lookup(ctx, "a1")
	require.NoError(t, err)

	clock.Advance(2 * DefaultTTL)
	src.set("a1", &domain.AuthorProfile{Name: "Changed"}, errors.New("backend down"))

	e, err := c.Lookup(ctx, "a1")
	assert.Error(t, err)
	assert.Equal(t, "Ana", e.Profile.Name)

	peeked, fresh, ok := c.Peek("a1")
	assert.True(t, ok)
	assert.False(t, fresh)
	assert.Equal(t, "Ana", peeked.Profile.Name)
}

func TestProfileCache_MissingProfileIsNegativeEntry(t *testing.T) {
	src := newStub()
	c, err := NewProfileCache(src, WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	e, err := c.Lookup(context.Background(), "ghost")
	require.NoError(t, err)
	assert.True(t, e.Missing)

	_, err = c.Lookup(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestProfileCache_LRUEvictsOldest(t *testing.T) {
	src := newStub()
	for _, id := range []string{"b", "c"} {
		src.profiles[id] = &domain.AuthorProfile{Name: id}
	}
	c, err := NewProfileCache(src, WithSize(2), WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"a1", "b", "c"} {
		_, err := c.Lookup(ctx, id)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Len())
	_, _, ok := c.Peek("a1")
	assert.False(t, ok)
	_, _, ok = c.Peek("c")
	assert.True(t, ok)
}

func TestProfileCache_CachedReadKeepsEntryRecent(t *testing.T) {
	src := newStub()
	for _, id := range []string{"b", "c"} {
		src.profiles[id] = &domain.AuthorProfile{Name: id}
	}
	c, err := NewProfileCache(src, WithSize(2), WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"a1", "b"} {
		_, err := c.Lookup(ctx, id)
		require.NoError(t, err)
	}

	e, fresh, ok := c.Cached("a1")
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, "Ana", e.Profile.Name)

	_, err = c.Lookup(ctx, "c")
	require.NoError(t, err)

	_, _, ok = c.Peek("a1")
	assert.True(t, ok)
	_, _, ok = c.Peek("b")
	assert.False(t, ok)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestProfileCache_ConcurrentLookupsShareOneFetch(t *testing.T) {
	src := newStub()
	src.gate = make(chan struct{})
	c, err := NewProfileCache(src)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Lookup(context.Background(), "a1")
		}()
	}

	assert.Eventually(t, func() bool { return src.calls.Load() >= 1 }, time.Second, time.Millisecond)
	// Give the other callers time to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestNewProfileCache_RejectsZeroSize(t *testing.T) {
	_, err := NewProfileCache(newStub(), WithSize(0))
	assert.Error(t, err)
}
