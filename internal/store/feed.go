package store

import (
	"context"
	"log/slog"
	"slices"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// Only one feed fetch is in flight at a time: LoadFeed and NextPage are
// no-ops while Loading is set. A fetch is tagged with the feed's request id
// and its result is dropped if the feed was reset or re-targeted meanwhile.

func (s *Store) query(st State, cursor string) domain.FeedQuery {
	return domain.FeedQuery{
		Category: st.UI.Category,
		Sort:     st.Feed.Sort,
		Mode:     st.UI.ContentMode,
		Cursor:   cursor,
		Limit:    s.pageSize,
	}
}

// beginFetch marks the feed loading and returns the query to run. ok is
// false when a fetch is already in flight or next is set and there is no
// next page.
func (s *Store) beginFetch(action string, next bool) (q domain.FeedQuery, request uint64, ok bool) {
	s.update(action, func(st State) (State, bool) {
		if st.Feed.Loading || (next && !st.Feed.HasMore) {
			return st, false
		}
		cursor := ""
		if next {
			cursor = st.Feed.Cursor
		}
		st.Feed.request++
		st.Feed.Loading = true
		q, request, ok = s.query(st, cursor), st.Feed.request, true
		return st, true
	})
	return q, request, ok
}

// current reports whether a fetch result may still be applied to st.
func (s *Store) current(st State, q domain.FeedQuery, request uint64) bool {
	return st.Feed.request == request && q.SameStream(s.query(st, ""))
}

// LoadFeed fetches the first page for the current category, sort and mode,
// replacing whatever is loaded.
func (s *Store) LoadFeed(ctx context.Context) error {
	q, request, ok := s.beginFetch("feed.load", false)
	if !ok {
		return nil
	}

	page, err := s.backend.FetchContent(ctx, q)
	if err != nil {
		s.finishFailed(q, request)
		s.logger.Warn("feed load failed", "category", q.Category, "sort", q.Sort, "error", err)
		return domainerrors.BackendRejected(err, "load feed")
	}

	applied := s.update("feed.loaded", func(st State) (State, bool) {
		if !s.current(st, q, request) {
			return st, false
		}
		st.Feed = FeedState{
			Items:   nonNilItems(page.Items),
			Sort:    st.Feed.Sort,
			Cursor:  page.NextCursor,
			Page:    1,
			HasMore: page.HasMore,
			request: st.Feed.request,
		}
		return st, true
	}, slog.Int("items", len(page.Items)))

	if !applied {
		s.logger.Debug("discarded stale feed page", "category", q.Category, "sort", q.Sort)
		return nil
	}
	s.reindex(page.Items, true)
	return nil
}

// NextPage pushes the current page onto the back stack and fetches the page
// after it.
func (s *Store) NextPage(ctx context.Context) error {
	q, request, ok := s.beginFetch("feed.next", true)
	if !ok {
		return nil
	}

	page, err := s.backend.FetchContent(ctx, q)
	if err != nil {
		s.finishFailed(q, request)
		s.logger.Warn("feed next page failed", "cursor", q.Cursor, "error", err)
		return domainerrors.BackendRejected(err, "load next page")
	}

	applied := s.update("feed.nextLoaded", func(st State) (State, bool) {
		if !s.current(st, q, request) {
			return st, false
		}
		st.Feed.PageStack = append(slices.Clone(st.Feed.PageStack), PageSnapshot{
			Items:   st.Feed.Items,
			Cursor:  st.Feed.Cursor,
			HasMore: st.Feed.HasMore,
		})
		st.Feed.Items = nonNilItems(page.Items)
		st.Feed.Cursor = page.NextCursor
		st.Feed.HasMore = page.HasMore
		st.Feed.Page++
		st.Feed.Loading = false
		return st, true
	}, slog.Int("items", len(page.Items)))

	if applied {
		s.reindex(page.Items, false)
	}
	return nil
}

// PrevPage restores the previous page from the back stack. No backend call.
func (s *Store) PrevPage() {
	s.update("feed.prev", func(st State) (State, bool) {
		n := len(st.Feed.PageStack)
		if n == 0 || st.Feed.Loading {
			return st, false
		}
		prev := st.Feed.PageStack[n-1]
		st.Feed.PageStack = slices.Clone(st.Feed.PageStack[:n-1])
		st.Feed.Items = prev.Items
		st.Feed.Cursor = prev.Cursor
		st.Feed.HasMore = prev.HasMore
		st.Feed.Page--
		return st, true
	})
}

// SetSort changes the sort explicitly. The category is never touched.
func (s *Store) SetSort(sort domain.SortOption) error {
	if !sort.Valid() {
		return domainerrors.Validationf("unknown sort option %q", sort)
	}
	s.update("feed.sort", func(st State) (State, bool) {
		if st.Feed.Sort == sort {
			return st, false
		}
		st.Feed = emptyFeed(sort, st.Feed.request)
		return st, true
	}, slog.String("sort", string(sort)))
	return nil
}

func (s *Store) finishFailed(q domain.FeedQuery, request uint64) {
	s.update("feed.failed", func(st State) (State, bool) {
		if st.Feed.request != request || !st.Feed.Loading {
			return st, false
		}
		st.Feed.Loading = false
		return st, true
	}, slog.String("category", string(q.Category)))
}

// reindex keeps the local search index in step with loaded items.
func (s *Store) reindex(items []domain.ContentItem, reset bool) {
	if s.search == nil {
		return
	}
	var err error
	if reset {
		err = s.search.Reset(items)
	} else {
		err = s.search.Add(items)
	}
	if err != nil {
		s.logger.Warn("search index update failed", "error", err)
	}
}

func nonNilItems(items []domain.ContentItem) []domain.ContentItem {
	if items == nil {
		return []domain.ContentItem{}
	}
	return items
}
