package store

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinaapp/vitrina-store/internal/backend/backendtest"
	"github.com/vitrinaapp/vitrina-store/internal/domain"
	"github.com/vitrinaapp/vitrina-store/internal/search"
)

type fixture struct {
	store   *Store
	backend *backendtest.Fake
	clock   *clockwork.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	fake := backendtest.New()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	idx, err := search.NewIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	s, err := New(Options{
		Backend:  fake,
		Search:   idx,
		Clock:    clock,
		Hook:     NoopHook{},
		PageSize: 4,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return fixture{store: s, backend: fake, clock: clock}
}

func testUser(id string) domain.User {
	return domain.User{ID: id, DisplayName: "User " + id, Role: domain.RoleCreator}
}

func (f fixture) login(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.Login(context.Background(), testUser(id)))
}

func TestNew_InitialState(t *testing.T) {
	f := newFixture(t)
	st := f.store.Get()

	assert.False(t, st.IsAuthenticated())
	assert.Equal(t, domain.ModuleHome, st.UI.Module)
	assert.Equal(t, domain.CategoryHome, st.UI.Category)
	assert.Equal(t, domain.ModeCreative, st.UI.ContentMode)
	assert.Equal(t, domain.SortRecent, st.Feed.Sort)
	assert.Equal(t, 1, st.Feed.Page)
	assert.Empty(t, st.Session.CartItems)
	assert.NotNil(t, st.Session.Collections)
	assert.Zero(t, f.store.Version())
}

func TestNew_RequiresNothingButBackend(t *testing.T) {
	s, err := New(Options{Backend: backendtest.New()})
	require.NoError(t, err)
	defer s.Close()

	s.ToggleSidebar()
	assert.True(t, s.Get().UI.SidebarOpen)
}

func TestSubscribe_ListenerSeesEveryAppliedAction(t *testing.T) {
	f := newFixture(t)

	var seen []bool
	unsubscribe := f.store.Subscribe(func(next, prev State) {
		seen = append(seen, next.UI.SidebarOpen)
	})

	f.store.ToggleSidebar()
	f.store.SetSidebarOpen(true) // already open: no notification
	f.store.ToggleSidebar()
	unsubscribe()
	f.store.ToggleSidebar()

	assert.Equal(t, []bool{true, false}, seen)
}

type recordingHook struct {
	actions []string
}

func (h *recordingHook) OnAction(name string, _ ...slog.Attr) {
	h.actions = append(h.actions, name)
}

func TestHook_ReceivesAppliedActionsOnly(t *testing.T) {
	hook := &recordingHook{}
	s, err := New(Options{Backend: backendtest.New(), Hook: hook, Clock: clockwork.NewFakeClock()})
	require.NoError(t, err)
	defer s.Close()

	s.SetModule(domain.ModuleBlog)
	s.SetModule(domain.ModuleBlog)
	s.SetActiveCategory(domain.CategoryTrending)

	assert.Equal(t, []string{"ui.module", "ui.category"}, hook.actions)
}
