package store

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinaapp/vitrina-store/internal/backend/backendtest"
	"github.com/vitrinaapp/vitrina-store/internal/domain"
	"github.com/vitrinaapp/vitrina-store/internal/persist"
)

func populate(t *testing.T, f fixture) {
	t.Helper()
	ctx := context.Background()

	seedCollections(f, "u1", domain.Collection{ID: "c1", Title: "One"})
	f.login(t, "u1")
	f.backend.Push("u1", notifications("n1", "n2"))
	_, err := f.store.AddToCart(ctx, cartItem("x", 3))
	require.NoError(t, err)
	_, err = f.store.ToggleLike(ctx, "p9")
	require.NoError(t, err)
	require.NoError(t, f.store.AddCreatedItem(domain.ContentItem{ID: "c1", Kind: domain.KindCourse, Title: "Course"}))
	require.NoError(t, f.store.AddBlogPost(domain.BlogPost{ID: "b1", Title: "Post", HTML: "<p>hi</p>"}))
	require.NoError(t, f.store.BeginSave(pendingItem))
	require.NoError(t, f.store.SaveToCollection(ctx, "c1"))
	require.NoError(t, f.store.SetContentMode(domain.ModeDev))

	f.store.SetActiveCategory(domain.CategoryTrending)
	f.store.ToggleSidebar()
}

func TestAttachPersistence_RoundTrip(t *testing.T) {
	storage := persist.NewMemoryStorage()

	first := newFixture(t)
	found := first.store.AttachPersistence(context.Background(), persist.NewAdapter(storage, "", nil))
	assert.False(t, found)
	populate(t, first)
	first.store.DetachPersistence()
	want, err := persist.Encode(SnapshotOf(first.store.Get()))
	require.NoError(t, err)

	second, err := New(Options{Backend: backendtest.New(), Clock: clockwork.NewFakeClock()})
	require.NoError(t, err)
	defer second.Close()
	found = second.AttachPersistence(context.Background(), persist.NewAdapter(storage, "", nil))
	require.True(t, found)

	got, err := persist.Encode(SnapshotOf(second.Get()))
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	st := second.Get()
	assert.Equal(t, "u1", st.Session.User.ID)
	assert.Equal(t, domain.ModeDev, st.UI.ContentMode)
	assert.Len(t, st.Session.Notifications, 2)
	assert.Equal(t, 1, st.Session.Collections[0].ItemCount)

	// Ephemeral fields start from defaults.
	assert.Equal(t, domain.CategoryHome, st.UI.Category)
	assert.False(t, st.UI.SidebarOpen)
	assert.Nil(t, st.UI.Toast)
	assert.Equal(t, 1, st.Feed.Page)
}

func TestSnapshotOf_OnlyDurableFields(t *testing.T) {
	f := newFixture(t)
	populate(t, f)

	data, err := persist.Encode(SnapshotOf(f.store.Get()))
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"user", "contentMode", "createdItems", "blogPosts",
		"cartItems", "likedItems", "collections", "notifications",
	}, keys)
}

func loadSnapshot(t *testing.T, storage persist.Storage) persist.Snapshot {
	t.Helper()
	rec, err := storage.Load(context.Background(), persist.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, persist.SchemaVersion, rec.Version)
	snap, err := persist.Decode(rec.Data)
	require.NoError(t, err)
	return snap
}

func TestAttachPersistence_WritesOnChangeUntilDetached(t *testing.T) {
	storage := persist.NewMemoryStorage()
	f := newFixture(t)
	f.store.AttachPersistence(context.Background(), persist.NewAdapter(storage, "", nil))

	_, err := f.store.AddToCart(context.Background(), cartItem("x", 1))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		rec, err := storage.Load(context.Background(), persist.DefaultKey)
		if err != nil {
			return false
		}
		snap, err := persist.Decode(rec.Data)
		return err == nil && len(snap.CartItems) == 1
	}, time.Second, 5*time.Millisecond)

	f.store.DetachPersistence()
	_, err = f.store.AddToCart(context.Background(), cartItem("y", 1))
	require.NoError(t, err)

	assert.Len(t, loadSnapshot(t, storage).CartItems, 1)
}

// gatedStorage blocks every Save until release is closed.
type gatedStorage struct {
	*persist.MemoryStorage
	release chan struct{}
	saves   atomic.Int32
}

func (g *gatedStorage) Save(ctx context.Context, key string, rec persist.Record) error {
	g.saves.Add(1)
	<-g.release
	return g.MemoryStorage.Save(ctx, key, rec)
}

func TestAttachPersistence_SlowStorageNeverBlocksMutations(t *testing.T) {
	storage := &gatedStorage{MemoryStorage: persist.NewMemoryStorage(), release: make(chan struct{})}
	f := newFixture(t)
	release := sync.OnceFunc(func() { close(storage.release) })
	t.Cleanup(release)
	f.store.AttachPersistence(context.Background(), persist.NewAdapter(storage, "", nil))

	// The first write parks in Save; everything after must still apply.
	_, err := f.store.AddToCart(context.Background(), cartItem("a", 1))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return storage.saves.Load() == 1 }, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.store.ToggleSidebar()
		_, _ = f.store.AddToCart(context.Background(), cartItem("b", 1))
		_, _ = f.store.AddToCart(context.Background(), cartItem("c", 1))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mutations waited on storage")
	}
	assert.Len(t, f.store.Get().Session.CartItems, 3)

	release()
	f.store.DetachPersistence()

	// Pending snapshots collapse into the newest one.
	assert.LessOrEqual(t, storage.saves.Load(), int32(2))
	assert.Len(t, loadSnapshot(t, storage).CartItems, 3)
}
