// Package store is the client application state store: one State value held
// in a state.Container, mutated only through the actions defined here, with
// backend effects applied either optimistically or pessimistically per
// action.
//
// Actions that call the backend block on it and return errors so callers
// can compose and test them. The facade package is the boundary that runs
// them asynchronously and guarantees no error reaches the UI.
package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vitrinaapp/vitrina-store/internal/backend"
	"github.com/vitrinaapp/vitrina-store/internal/cache"
	"github.com/vitrinaapp/vitrina-store/internal/search"
	"github.com/vitrinaapp/vitrina-store/internal/state"
	"github.com/vitrinaapp/vitrina-store/internal/validation"
)

const (
	DefaultToastDelay = 3 * time.Second
	DefaultPageSize   = 12
)

// Options configures a Store. Backend is required.
type Options struct {
	Backend    backend.Backend
	Profiles   *cache.ProfileCache // built from Backend when nil
	Search     *search.Index       // local search disabled when nil
	Validator  *validation.Validator
	Hook       Hook
	Logger     *slog.Logger
	Clock      clockwork.Clock
	ToastDelay time.Duration
	PageSize   int
}

// Effect is the backend half of an action whose local half has already
// been applied. A nil Effect has nothing to send.
type Effect func(ctx context.Context) error

// Run runs e. A nil Effect returns nil.
func (e Effect) Run(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e(ctx)
}

// Store owns the client state.
type Store struct {
	state    *state.Container[State]
	backend  backend.Backend
	profiles *cache.ProfileCache
	search   *search.Index
	validate *validation.Validator
	hook     Hook
	logger   *slog.Logger
	clock    clockwork.Clock

	toastDelay time.Duration
	pageSize   int

	toastMu    sync.Mutex
	toastTimer clockwork.Timer

	// Notification subscription. subGen is bumped on every subscribe and
	// cleanup; deliveries carrying an older generation are dropped.
	subMu    sync.Mutex
	teardown backend.Teardown
	subGen   atomic.Uint64

	persistMu     sync.Mutex
	detachPersist func()
}

// New creates a store in its initial state.
func New(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "store")

	s := &Store{
		backend:    opts.Backend,
		profiles:   opts.Profiles,
		search:     opts.Search,
		validate:   opts.Validator,
		hook:       opts.Hook,
		logger:     logger,
		clock:      opts.Clock,
		toastDelay: opts.ToastDelay,
		pageSize:   opts.PageSize,
	}
	if s.validate == nil {
		s.validate = validation.New()
	}
	if s.hook == nil {
		s.hook = NewLogHook(logger)
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.toastDelay <= 0 {
		s.toastDelay = DefaultToastDelay
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	if s.profiles == nil {
		profiles, err := cache.NewProfileCache(opts.Backend,
			cache.WithClock(s.clock),
			cache.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		s.profiles = profiles
	}

	s.state = state.New(InitialState(), logger)
	return s, nil
}

// Get returns the current state. It never blocks on backend work.
func (s *Store) Get() State {
	return s.state.Get()
}

// Version returns the number of applied mutations.
func (s *Store) Version() uint64 {
	return s.state.Version()
}

// Subscribe registers a listener called after every applied mutation.
func (s *Store) Subscribe(fn state.Listener[State]) func() {
	return s.state.Subscribe(fn)
}

// Close detaches persistence, then stops the live feed and timers. The
// last persisted snapshot is left as it was.
func (s *Store) Close() {
	s.DetachPersistence()
	s.CleanupNotifications()

	s.toastMu.Lock()
	if s.toastTimer != nil {
		s.toastTimer.Stop()
		s.toastTimer = nil
	}
	s.toastMu.Unlock()
}

// update applies fn and reports the action to the hook when something changed.
func (s *Store) update(action string, fn func(State) (State, bool), attrs ...slog.Attr) bool {
	applied := s.state.Update(fn)
	if applied {
		s.hook.OnAction(action, attrs...)
	}
	return applied
}

// set applies an unconditional mutation.
func (s *Store) set(action string, fn func(State) State, attrs ...slog.Attr) {
	s.update(action, func(st State) (State, bool) { return fn(st), true }, attrs...)
}
