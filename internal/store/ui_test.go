package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

func TestSetContentMode_ResetsCategory(t *testing.T) {
	f := newFixture(t)
	f.store.SetActiveCategory(domain.CategoryTrending)
	require.Equal(t, domain.ModeCreative, f.store.Get().UI.ContentMode)

	require.NoError(t, f.store.SetContentMode(domain.ModeDev))

	st := f.store.Get()
	assert.Equal(t, domain.ModeDev, st.UI.ContentMode)
	assert.Equal(t, domain.CategoryHome, st.UI.Category)
	assert.Equal(t, domain.SortRecent, st.Feed.Sort)
	require.NotNil(t, st.UI.Toast)
	assert.Equal(t, "Switched to Dev mode", st.UI.Toast.Message)
	assert.Equal(t, domain.SeverityInfo, st.UI.Toast.Severity)

	// Same mode: nothing is written and no toast is armed.
	version := f.store.Version()
	toastID := st.UI.Toast.ID
	require.NoError(t, f.store.SetContentMode(domain.ModeDev))
	assert.Equal(t, version, f.store.Version())
	assert.Equal(t, toastID, f.store.Get().UI.Toast.ID)
}

func TestSetContentMode_RejectsUnknown(t *testing.T) {
	f := newFixture(t)

	err := f.store.SetContentMode("music")

	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Zero(t, f.store.Version())
}

func TestSetActiveCategory_DerivesSort(t *testing.T) {
	tests := []struct {
		category domain.Category
		want     domain.SortOption
	}{
		{domain.CategoryTrending, domain.SortPopular},
		{domain.CategoryPopular, domain.SortPopular},
		{domain.CategoryOldest, domain.SortOldest},
		{domain.CategoryRecent, domain.SortRecent},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.store.SetSort(domain.SortOldest))
			if tt.category == domain.CategoryOldest {
				require.NoError(t, f.store.SetSort(domain.SortRecent))
			}

			f.store.SetActiveCategory(tt.category)

			st := f.store.Get()
			assert.Equal(t, tt.category, st.UI.Category)
			assert.Equal(t, tt.want, st.Feed.Sort)
			assert.Equal(t, 1, st.Feed.Page)
		})
	}
}

func TestSetActiveCategory_FreeFormKeepsSort(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetSort(domain.SortOldest))

	f.store.SetActiveCategory("Ilustración")

	st := f.store.Get()
	assert.Equal(t, domain.Category("Ilustración"), st.UI.Category)
	assert.Equal(t, domain.SortOldest, st.Feed.Sort)
}

func TestSetSort_NeverTouchesCategory(t *testing.T) {
	f := newFixture(t)
	f.store.SetActiveCategory(domain.CategoryTrending)

	require.NoError(t, f.store.SetSort(domain.SortOldest))

	st := f.store.Get()
	assert.Equal(t, domain.CategoryTrending, st.UI.Category)
	assert.Equal(t, domain.SortOldest, st.Feed.Sort)

	assert.Error(t, f.store.SetSort("random"))
}

func TestSetModule_ResetsComposeContext(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.StartCreate(domain.CreateCourse))
	f.store.ViewAuthor("author-1")

	st := f.store.Get()
	assert.Equal(t, domain.ModuleCreate, st.UI.Module)
	assert.Equal(t, domain.CreateCourse, st.UI.CreateMode)
	assert.Equal(t, "author-1", st.UI.ViewedAuthor)

	f.store.SetModule(domain.ModuleBlog)

	st = f.store.Get()
	assert.Equal(t, domain.ModuleBlog, st.UI.Module)
	assert.Equal(t, domain.CreateNone, st.UI.CreateMode)
	assert.Empty(t, st.UI.ViewedAuthor)
}

func TestStartCreate_RejectsUnknownMode(t *testing.T) {
	f := newFixture(t)

	assert.Error(t, f.store.StartCreate("video"))
	assert.Error(t, f.store.StartCreate(domain.CreateNone))
	assert.Equal(t, domain.ModuleHome, f.store.Get().UI.Module)
}

func TestRequireAuth(t *testing.T) {
	f := newFixture(t)

	f.store.RequireAuth("Sign in to create")

	st := f.store.Get()
	assert.Equal(t, domain.ModuleAuth, st.UI.Module)
	require.NotNil(t, st.UI.Toast)
	assert.Equal(t, "Sign in to create", st.UI.Toast.Message)
}

func TestModals(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.BeginSave(domain.SaveItem{ID: "p1", Type: domain.SaveProject, Image: "img.png"}))
	st := f.store.Get()
	assert.True(t, st.UI.Modals.Save)
	require.NotNil(t, st.UI.PendingSave)

	require.NoError(t, f.store.OpenModal(domain.ModalCreateCollection))
	assert.True(t, f.store.Get().UI.Modals.CreateCollection)

	require.NoError(t, f.store.CloseModal(domain.ModalSave))
	st = f.store.Get()
	assert.False(t, st.UI.Modals.Save)
	assert.Nil(t, st.UI.PendingSave)

	assert.True(t, domainerrors.Is(f.store.OpenModal("share"), domainerrors.ErrValidation))
	assert.Error(t, f.store.BeginSave(domain.SaveItem{ID: "p2", Type: "course"}))
}

func TestSetSearchQuery_UsesLoadedItems(t *testing.T) {
	f := newFixture(t)
	f.backend.SetContent(sampleContent(3))
	require.NoError(t, f.store.LoadFeed(context.Background()))

	f.store.SetSearchQuery(context.Background(), "item 2")

	st := f.store.Get()
	assert.Equal(t, "item 2", st.UI.SearchQuery)
	assert.Contains(t, st.UI.SearchHits, "item-2")

	version := f.store.Version()
	f.store.SetSearchQuery(context.Background(), "item 2")
	assert.Equal(t, version, f.store.Version())

	f.store.SetSearchQuery(context.Background(), "")
	assert.Empty(t, f.store.Get().UI.SearchHits)
}
