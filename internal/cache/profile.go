// Package cache holds short-lived lookups of auxiliary display data.
//
// ProfileCache maps an author id to its display projection. Entries older
// than the TTL are stale and refetched on the next lookup; the cache is
// bounded by an LRU so ids nobody asks for again eventually fall out.
package cache

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
)

const (
	DefaultTTL  = 60 * time.Second
	DefaultSize = 512
)

// ProfileSource fetches author profiles. A nil profile with a nil error
// means the entity has no profile.
type ProfileSource interface {
	GetUserProfile(ctx context.Context, entityID string) (*domain.AuthorProfile, error)
}

// Entry is one cached profile.
type Entry struct {
	FetchedAt time.Time
	Profile   domain.AuthorProfile
	Missing   bool // backend reported no profile
}

// ProfileCache is a TTL + LRU cache in front of a ProfileSource.
type ProfileCache struct {
	source  ProfileSource
	entries *lru.Cache[string, Entry]
	group   singleflight.Group
	ttl     time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
}

// Option configures a ProfileCache.
type Option func(*options)

type options struct {
	ttl    time.Duration
	size   int
	clock  clockwork.Clock
	logger *slog.Logger
}

// WithTTL sets how long an entry stays fresh.
func WithTTL(d time.Duration) Option { return func(o *options) { o.ttl = d } }

// WithSize bounds the number of cached ids.
func WithSize(n int) Option { return func(o *options) { o.size = n } }

// WithClock sets the time source.
func WithClock(c clockwork.Clock) Option { return func(o *options) { o.clock = c } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// NewProfileCache creates a cache reading through source.
func NewProfileCache(source ProfileSource, opts ...Option) (*ProfileCache, error) {
	o := options{ttl: DefaultTTL, size: DefaultSize, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	entries, err := lru.New[string, Entry](o.size)
	if err != nil {
		return nil, err
	}

	return &ProfileCache{
		source:  source,
		entries: entries,
		ttl:     o.ttl,
		clock:   o.clock,
		logger:  o.logger.With("component", "profile_cache"),
	}, nil
}

// Cached returns the cached entry without fetching and marks id as
// recently used. fresh reports whether it is younger than the TTL.
func (c *ProfileCache) Cached(id string) (e Entry, fresh, ok bool) {
	e, ok = c.entries.Get(id)
	if !ok {
		return Entry{}, false, false
	}
	return e, c.isFresh(e), true
}

// Peek is Cached without touching recency, for diagnostics.
func (c *ProfileCache) Peek(id string) (e Entry, fresh, ok bool) {
	e, ok = c.entries.Peek(id)
	if !ok {
		return Entry{}, false, false
	}
	return e, c.isFresh(e), true
}

// Lookup returns a fresh entry from the cache or fetches one.
// When the fetch fails the stale entry, if any, is returned with the error
// and left in place.
func (c *ProfileCache) Lookup(ctx context.Context, id string) (Entry, error) {
	if e, ok := c.entries.Get(id); ok && c.isFresh(e) {
		return e, nil
	}
	return c.Refresh(ctx, id)
}

// Refresh fetches id regardless of freshness. Concurrent refreshes of the
// same id share one backend call.
func (c *ProfileCache) Refresh(ctx context.Context, id string) (Entry, error) {
	v, err, _ := c.group.Do(id, func() (any, error) {
		p, err := c.source.GetUserProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		e := Entry{FetchedAt: c.clock.Now(), Missing: p == nil}
		if p != nil {
			e.Profile = *p
		}
		c.entries.Add(id, e)
		return e, nil
	})
	if err != nil {
		c.logger.Warn("profile fetch failed", "entity_id", id, "error", err)
		stale, _ := c.entries.Peek(id)
		return stale, err
	}
	return v.(Entry), nil
}

// Len returns the number of cached ids.
func (c *ProfileCache) Len() int {
	return c.entries.Len()
}

func (c *ProfileCache) isFresh(e Entry) bool {
	return c.clock.Since(e.FetchedAt) < c.ttl
}
