package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	"github.com/vitrinaapp/vitrina-store/internal/persist"
)

// SnapshotOf projects the durable subset of st.
func SnapshotOf(st State) persist.Snapshot {
	return persist.Snapshot{
		User:          st.Session.User,
		ContentMode:   st.UI.ContentMode,
		CreatedItems:  st.Session.CreatedItems,
		BlogPosts:     st.Session.BlogPosts,
		CartItems:     st.Session.CartItems,
		LikedItems:    st.Session.LikedItems,
		Collections:   st.Session.Collections,
		Notifications: st.Session.Notifications,
	}.Normalize()
}

// applySnapshot overlays a hydrated snapshot onto st. Ephemeral slices are
// left alone.
func applySnapshot(st State, snap persist.Snapshot) State {
	snap = snap.Normalize()
	st.Session.User = snap.User.Clone()
	st.UI.ContentMode = snap.ContentMode
	st.Session.CreatedItems = slices.Clone(snap.CreatedItems)
	st.Session.BlogPosts = slices.Clone(snap.BlogPosts)
	st.Session.CartItems = slices.Clone(snap.CartItems)
	st.Session.LikedItems = slices.Clone(snap.LikedItems)
	st.Session.Collections = make([]domain.Collection, 0, len(snap.Collections))
	for _, c := range snap.Collections {
		st.Session.Collections = append(st.Session.Collections, normalizeCollection(c))
	}
	st.Session.Notifications = slices.Clone(snap.Notifications)
	return st
}

// AttachPersistence hydrates the store from adapter and then writes a
// snapshot after every change. Writes happen on a background writer that
// keeps only the newest pending snapshot, so mutations never wait on
// storage. Write failures are logged by the adapter. It returns whether
// stored data was found.
//
// Attaching again replaces the previous adapter.
func (s *Store) AttachPersistence(ctx context.Context, adapter *persist.Adapter) bool {
	snap, found := adapter.Hydrate(ctx)
	if found {
		s.set("persist.hydrate", func(st State) State {
			return applySnapshot(st, snap)
		}, slog.Bool("authenticated", snap.User != nil))
	}

	// Writes use a detached context so a cancelled caller context does not
	// stop later writes.
	w := newSnapshotWriter(context.WithoutCancel(ctx), adapter)
	unsubscribe := s.state.Subscribe(func(next, _ State) {
		w.offer(SnapshotOf(next))
	})
	go w.run()

	s.persistMu.Lock()
	prev := s.detachPersist
	s.detachPersist = func() {
		unsubscribe()
		w.stop()
	}
	s.persistMu.Unlock()
	if prev != nil {
		prev()
	}
	return found
}

// DetachPersistence stops writing snapshots. It returns once the newest
// pending snapshot has been written.
func (s *Store) DetachPersistence() {
	s.persistMu.Lock()
	detach := s.detachPersist
	s.detachPersist = nil
	s.persistMu.Unlock()
	if detach != nil {
		detach()
	}
}

// snapshotWriter serializes snapshot writes on one goroutine. Only the
// latest offered snapshot is kept; older pending ones are overwritten.
type snapshotWriter struct {
	ctx     context.Context
	adapter *persist.Adapter

	mu      sync.Mutex
	pending *persist.Snapshot

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newSnapshotWriter(ctx context.Context, adapter *persist.Adapter) *snapshotWriter {
	return &snapshotWriter{
		ctx:     ctx,
		adapter: adapter,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (w *snapshotWriter) offer(snap persist.Snapshot) {
	w.mu.Lock()
	w.pending = &snap
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *snapshotWriter) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.quit:
			w.flush()
			return
		}
	}
}

func (w *snapshotWriter) flush() {
	w.mu.Lock()
	snap := w.pending
	w.pending = nil
	w.mu.Unlock()

	if snap != nil {
		_ = w.adapter.Persist(w.ctx, *snap)
	}
}

// stop writes whatever is pending and waits for the writer to exit.
func (w *snapshotWriter) stop() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}
