package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinaapp/vitrina-store/internal/backend/backendtest"
	"github.com/vitrinaapp/vitrina-store/internal/domain"
)

// sampleContent returns n items; item-1 is the newest and the least liked.
func sampleContent(n int) []domain.ContentItem {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	items := make([]domain.ContentItem, n)
	for i := range items {
		items[i] = domain.ContentItem{
			ID:        fmt.Sprintf("item-%d", i+1),
			Kind:      domain.KindProject,
			Title:     fmt.Sprintf("Item %d", i+1),
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
			Likes:     i,
		}
	}
	return items
}

func ids(items []domain.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestLoadFeed_FirstPage(t *testing.T) {
	f := newFixture(t)
	f.backend.SetContent(sampleContent(10))

	require.NoError(t, f.store.LoadFeed(context.Background()))

	st := f.store.Get()
	assert.Equal(t, []string{"item-1", "item-2", "item-3", "item-4"}, ids(st.Feed.Items))
	assert.Equal(t, 1, st.Feed.Page)
	assert.True(t, st.Feed.HasMore)
	assert.False(t, st.Feed.Loading)
	assert.False(t, st.CanGoBack())

	calls := f.backend.Calls(backendtest.FetchContent)
	require.Len(t, calls, 1)
	q := calls[0].Args[0].(domain.FeedQuery)
	assert.Equal(t, domain.CategoryHome, q.Category)
	assert.Equal(t, domain.SortRecent, q.Sort)
	assert.Equal(t, domain.ModeCreative, q.Mode)
	assert.Equal(t, 4, q.Limit)
	assert.Empty(t, q.Cursor)
}

func TestNextPrevPage_KeepStackConsistent(t *testing.T) {
	f := newFixture(t)
	f.backend.SetContent(sampleContent(10))
	ctx := context.Background()
	require.NoError(t, f.store.LoadFeed(ctx))

	require.NoError(t, f.store.NextPage(ctx))
	st := f.store.Get()
	assert.Equal(t, 2, st.Feed.Page)
	assert.Len(t, st.Feed.PageStack, 1)
	assert.Equal(t, []string{"item-5", "item-6", "item-7", "item-8"}, ids(st.Feed.Items))

	require.NoError(t, f.store.NextPage(ctx))
	st = f.store.Get()
	assert.Equal(t, 3, st.Feed.Page)
	assert.Len(t, st.Feed.PageStack, 2)
	assert.Equal(t, []string{"item-9", "item-10"}, ids(st.Feed.Items))
	assert.False(t, st.Feed.HasMore)

	// End of stream.
	require.NoError(t, f.store.NextPage(ctx))
	assert.Len(t, f.backend.Calls(backendtest.FetchContent), 3)

	f.store.PrevPage()
	st = f.store.Get()
	assert.Equal(t, 2, st.Feed.Page)
	assert.Len(t, st.Feed.PageStack, 1)
	assert.Equal(t, []string{"item-5", "item-6", "item-7", "item-8"}, ids(st.Feed.Items))
	assert.True(t, st.Feed.HasMore)

	f.store.PrevPage()
	f.store.PrevPage()
	st = f.store.Get()
	assert.Equal(t, 1, st.Feed.Page)
	assert.Empty(t, st.Feed.PageStack)
	assert.Equal(t, []string{"item-1", "item-2", "item-3", "item-4"}, ids(st.Feed.Items))

	// Paging back never hits the backend.
	assert.Len(t, f.backend.Calls(backendtest.FetchContent), 3)

	// Forward again resumes from the restored cursor.
	require.NoError(t, f.store.NextPage(ctx))
	assert.Equal(t, []string{"item-5", "item-6", "item-7", "item-8"}, ids(f.store.Get().Feed.Items))
}

func TestNextPage_WhileLoadingIsNoop(t *testing.T) {
	f := newFixture(t)
	f.backend.SetContent(sampleContent(10))
	ctx := context.Background()
	require.NoError(t, f.store.LoadFeed(ctx))

	release := f.backend.Gate(backendtest.FetchContent)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, f.store.NextPage(ctx))
	}()
	require.Eventually(t, func() bool { return f.store.Get().Feed.Loading }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.store.NextPage(ctx))
	require.NoError(t, f.store.LoadFeed(ctx))
	f.store.PrevPage()
	assert.Len(t, f.backend.Calls(backendtest.FetchContent), 2)

	release()
	wg.Wait()

	st := f.store.Get()
	assert.Equal(t, 2, st.Feed.Page)
	assert.Len(t, st.Feed.PageStack, 1)
	assert.False(t, st.Feed.Loading)
}

func TestLoadFeed_DiscardsResultForAbandonedStream(t *testing.T) {
	f := newFixture(t)
	f.backend.SetContent(sampleContent(10))
	ctx := context.Background()

	release := f.backend.Gate(backendtest.FetchContent)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, f.store.LoadFeed(ctx))
	}()
	require.Eventually(t, func() bool { return f.store.Get().Feed.Loading }, time.Second, 5*time.Millisecond)

	f.store.SetActiveCategory(domain.CategoryTrending)
	release()
	wg.Wait()

	st := f.store.Get()
	assert.Empty(t, st.Feed.Items)
	assert.False(t, st.Feed.Loading)
	assert.Equal(t, domain.SortPopular, st.Feed.Sort)

	require.NoError(t, f.store.LoadFeed(ctx))
	assert.Equal(t, []string{"item-10", "item-9", "item-8", "item-7"}, ids(f.store.Get().Feed.Items))
}

func TestLoadFeed_FailureClearsLoading(t *testing.T) {
	f := newFixture(t)
	f.backend.FailOn(backendtest.FetchContent, errors.New("timeout"))

	err := f.store.LoadFeed(context.Background())

	assert.Error(t, err)
	st := f.store.Get()
	assert.False(t, st.Feed.Loading)
	assert.Empty(t, st.Feed.Items)
}
