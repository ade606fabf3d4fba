package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// ToggleSidebar flips the sidebar.
func (s *Store) ToggleSidebar() {
	s.set("ui.sidebar.toggle", func(st State) State {
		st.UI.SidebarOpen = !st.UI.SidebarOpen
		return st
	})
}

// SetSidebarOpen opens or closes the sidebar.
func (s *Store) SetSidebarOpen(open bool) {
	s.update("ui.sidebar.set", func(st State) (State, bool) {
		if st.UI.SidebarOpen == open {
			return st, false
		}
		st.UI.SidebarOpen = open
		return st, true
	})
}

// SetModule switches the top-level section. Switching cancels any compose
// or author-view context.
func (s *Store) SetModule(m domain.Module) {
	s.update("ui.module", func(st State) (State, bool) {
		if st.UI.Module == m {
			return st, false
		}
		st.UI = withModule(st.UI, m)
		return st, true
	}, slog.String("module", string(m)))
}

func withModule(ui UIState, m domain.Module) UIState {
	if ui.Module != m {
		ui.CreateMode = domain.CreateNone
		ui.ViewedAuthor = ""
	}
	ui.Module = m
	return ui
}

// SetCreateMode sets what the user is composing without changing module.
func (s *Store) SetCreateMode(mode domain.CreateMode) error {
	if mode != domain.CreateNone && !mode.Valid() {
		return domainerrors.Validationf("unknown create mode %q", mode)
	}
	s.update("ui.createMode", func(st State) (State, bool) {
		if st.UI.CreateMode == mode {
			return st, false
		}
		st.UI.CreateMode = mode
		return st, true
	})
	return nil
}

// StartCreate switches to the create module and sets the create mode in one
// write. The caller checks for a session.
func (s *Store) StartCreate(mode domain.CreateMode) error {
	if !mode.Valid() {
		return domainerrors.Validationf("unknown create mode %q", mode)
	}
	s.set("ui.create.start", func(st State) State {
		st.UI = withModule(st.UI, domain.ModuleCreate)
		st.UI.CreateMode = mode
		return st
	}, slog.String("create_mode", string(mode)))
	return nil
}

// RequireAuth routes the user to the auth gate and explains why.
func (s *Store) RequireAuth(reason string) {
	s.set("ui.auth.required", func(st State) State {
		st.UI = withModule(st.UI, domain.ModuleAuth)
		st.UI.Toast = s.armToast(reason, domain.SeverityInfo)
		return st
	})
}

// SetSearchQuery stores the query and the ids of matching loaded items.
func (s *Store) SetSearchQuery(ctx context.Context, query string) {
	hits := []string{}
	if s.search != nil {
		found, err := s.search.Search(ctx, query, 0)
		if err != nil {
			s.logger.Warn("local search failed", "query", query, "error", err)
		}
		for _, h := range found {
			hits = append(hits, h.ID)
		}
	}

	s.update("ui.search", func(st State) (State, bool) {
		if st.UI.SearchQuery == query && slices.Equal(st.UI.SearchHits, hits) {
			return st, false
		}
		st.UI.SearchQuery = query
		st.UI.SearchHits = hits
		return st, true
	})
}

// ViewAuthor opens a third-party author's profile.
func (s *Store) ViewAuthor(authorID string) {
	s.update("ui.author.view", func(st State) (State, bool) {
		if st.UI.ViewedAuthor == authorID {
			return st, false
		}
		st.UI.ViewedAuthor = authorID
		return st, true
	}, slog.String("author_id", authorID))
}

// CloseAuthor closes the author view.
func (s *Store) CloseAuthor() {
	s.ViewAuthor("")
}

// OpenModal shows a modal.
func (s *Store) OpenModal(m domain.Modal) error {
	return s.setModal(m, true)
}

// CloseModal hides a modal. Closing the save modal also drops the pending item.
func (s *Store) CloseModal(m domain.Modal) error {
	return s.setModal(m, false)
}

func (s *Store) setModal(m domain.Modal, open bool) error {
	var apply func(*UIState) bool
	switch m {
	case domain.ModalSave:
		apply = func(ui *UIState) bool {
			changed := ui.Modals.Save != open || (!open && ui.PendingSave != nil)
			ui.Modals.Save = open
			if !open {
				ui.PendingSave = nil
			}
			return changed
		}
	case domain.ModalAuth:
		apply = func(ui *UIState) bool {
			changed := ui.Modals.Auth != open
			ui.Modals.Auth = open
			return changed
		}
	case domain.ModalCreateCollection:
		apply = func(ui *UIState) bool {
			changed := ui.Modals.CreateCollection != open
			ui.Modals.CreateCollection = open
			return changed
		}
	default:
		return domainerrors.Validationf("unknown modal %q", m)
	}

	s.update("ui.modal", func(st State) (State, bool) {
		changed := apply(&st.UI)
		return st, changed
	}, slog.String("modal", string(m)), slog.Bool("open", open))
	return nil
}

// BeginSave marks item as pending save and opens the save modal. The caller
// checks for a session.
func (s *Store) BeginSave(item domain.SaveItem) error {
	if err := s.validate.Validate(item); err != nil {
		return err
	}
	s.set("ui.save.begin", func(st State) State {
		pending := item
		st.UI.PendingSave = &pending
		st.UI.Modals.Save = true
		return st
	}, slog.String("item_id", item.ID))
	return nil
}

// SetContentMode switches the feed audience. Switching resets the category
// to its default and announces the new mode, all in one write. Selecting the
// current mode changes nothing.
func (s *Store) SetContentMode(mode domain.ContentMode) error {
	if !mode.Valid() {
		return domainerrors.Validationf("unknown content mode %q", mode)
	}
	s.update("ui.contentMode", func(st State) (State, bool) {
		if st.UI.ContentMode == mode {
			return st, false
		}
		st.UI.ContentMode = mode
		st = withCategory(st, domain.DefaultCategory, true)
		st.UI.Toast = s.armToast(fmt.Sprintf("Switched to %s mode", mode.Label()), domain.SeverityInfo)
		return st, true
	}, slog.String("mode", string(mode)))
	return nil
}

// SetActiveCategory sets the category and derives the sort from it. The
// feed is reset because the stream changed.
func (s *Store) SetActiveCategory(category domain.Category) {
	s.update("ui.category", func(st State) (State, bool) {
		if st.UI.Category == category {
			return st, false
		}
		return withCategory(st, category, false), true
	}, slog.String("category", string(category)))
}

// withCategory applies category and its derived sort and resets the feed.
// force resets even when the category did not change, used when the
// content mode switches.
func withCategory(st State, category domain.Category, force bool) State {
	if st.UI.Category == category && !force {
		return st
	}
	st.UI.Category = category
	sort := st.Feed.Sort
	if derived, ok := domain.SortForCategory(category); ok {
		sort = derived
	}
	st.Feed = emptyFeed(sort, st.Feed.request)
	return st
}
