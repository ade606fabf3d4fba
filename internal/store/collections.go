package store

import (
	"context"
	"log/slog"
	"slices"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// Collection mutations are pessimistic: local state changes only after the
// backend confirms, so a failure leaves collections exactly as they were.

// LoadCollections replaces the local list with the backend's and rebuilds
// each projection from its items.
func (s *Store) LoadCollections(ctx context.Context) error {
	user, err := s.requireUser("sign in to see your collections")
	if err != nil {
		return err
	}

	cols, err := s.backend.GetUserCollections(ctx, user.ID)
	if err != nil {
		return domainerrors.BackendRejected(err, "load collections")
	}

	projected := make([]domain.Collection, len(cols))
	for i, c := range cols {
		projected[i] = normalizeCollection(c).Recount()
	}

	s.update("collections.load", func(st State) (State, bool) {
		if !sameUser(st, user.ID) {
			return st, false
		}
		st.Session.Collections = projected
		return st, true
	}, slog.Int("count", len(projected)))
	return nil
}

// SaveToCollection sends the pending save item to collectionID and, once
// the backend accepts it, updates that collection's projection and closes
// the save modal.
func (s *Store) SaveToCollection(ctx context.Context, collectionID string) error {
	user, err := s.requireUser("sign in to save items")
	if err != nil {
		return err
	}
	pending := s.Get().UI.PendingSave
	if pending == nil {
		return domainerrors.Validation("no item pending save")
	}
	item := *pending
	if err := s.validate.Validate(item); err != nil {
		return err
	}

	if err := s.backend.AddToCollection(ctx, user.ID, collectionID, item); err != nil {
		s.logger.Warn("save to collection failed",
			"user_id", user.ID,
			"collection_id", collectionID,
			"item_id", item.ID,
			"error", err)
		s.ShowToast("Couldn't save to collection", domain.SeverityError)
		return domainerrors.BackendRejected(err, "add to collection")
	}

	now := s.clock.Now()
	s.set("collections.save", func(st State) State {
		title := ""
		if sameUser(st, user.ID) {
			cols := slices.Clone(st.Session.Collections)
			if i := slices.IndexFunc(cols, func(c domain.Collection) bool { return c.ID == collectionID }); i >= 0 {
				cols[i] = cols[i].WithItem(item, now)
				title = cols[i].Title
				st.Session.Collections = cols
			}
		}
		st.UI.Modals.Save = false
		st.UI.PendingSave = nil
		msg := "Saved"
		if title != "" {
			msg = "Saved to " + title
		}
		st.UI.Toast = s.armToast(msg, domain.SeveritySuccess)
		return st
	}, slog.String("collection_id", collectionID), slog.String("item_id", item.ID))
	return nil
}

// CreateCollection creates a collection on the backend. If an item is
// pending save it is added to the new collection before the collection is
// inserted locally, so the UI never shows it empty.
func (s *Store) CreateCollection(ctx context.Context, title string, isPrivate bool) error {
	user, err := s.requireUser("sign in to create collections")
	if err != nil {
		return err
	}
	draft := domain.CollectionDraft{Title: title, IsPrivate: isPrivate}
	if err := s.validate.Validate(draft); err != nil {
		return err
	}

	col, err := s.backend.CreateCollection(ctx, user.ID, draft)
	if err != nil {
		s.logger.Warn("create collection failed", "user_id", user.ID, "error", err)
		s.ShowToast("Couldn't create collection", domain.SeverityError)
		return domainerrors.BackendRejected(err, "create collection")
	}
	col = normalizeCollection(col)

	s.logger.Info("collection created",
		"collection_id", col.ID,
		"user_id", user.ID,
		"private", col.IsPrivate)

	// Re-read: the pending item may have changed while the create was in flight.
	var (
		saved   *domain.SaveItem
		saveErr error
	)
	if pending := s.Get().UI.PendingSave; pending != nil {
		item := *pending
		if saveErr = s.backend.AddToCollection(ctx, user.ID, col.ID, item); saveErr == nil {
			col = col.WithItem(item, s.clock.Now())
			saved = &item
		} else {
			s.logger.Warn("save to new collection failed",
				"collection_id", col.ID,
				"item_id", item.ID,
				"error", saveErr)
		}
	}

	s.set("collections.create", func(st State) State {
		if sameUser(st, user.ID) {
			cols := slices.DeleteFunc(slices.Clone(st.Session.Collections), func(c domain.Collection) bool { return c.ID == col.ID })
			st.Session.Collections = append(cols, col)
		}
		st.UI.Modals.CreateCollection = false
		switch {
		case saved != nil:
			if st.UI.PendingSave != nil && st.UI.PendingSave.ID == saved.ID {
				st.UI.PendingSave = nil
			}
			st.UI.Modals.Save = false
			st.UI.Toast = s.armToast("Saved to "+col.Title, domain.SeveritySuccess)
		case saveErr != nil:
			st.UI.Toast = s.armToast("Collection created, but the item couldn't be saved", domain.SeverityError)
		default:
			st.UI.Toast = s.armToast("Collection created", domain.SeveritySuccess)
		}
		return st
	}, slog.String("collection_id", col.ID))

	if saveErr != nil {
		return domainerrors.BackendRejected(saveErr, "add to new collection")
	}
	return nil
}

// DeleteCollection deletes on the backend first and removes locally only on
// success.
func (s *Store) DeleteCollection(ctx context.Context, collectionID string) error {
	user, err := s.requireUser("sign in to manage collections")
	if err != nil {
		return err
	}

	if err := s.backend.DeleteCollection(ctx, user.ID, collectionID); err != nil {
		s.logger.Warn("delete collection failed",
			"user_id", user.ID,
			"collection_id", collectionID,
			"error", err)
		s.ShowToast("Couldn't delete collection", domain.SeverityError)
		return domainerrors.BackendRejected(err, "delete collection")
	}

	s.set("collections.delete", func(st State) State {
		if sameUser(st, user.ID) {
			st.Session.Collections = slices.DeleteFunc(slices.Clone(st.Session.Collections), func(c domain.Collection) bool {
				return c.ID == collectionID
			})
		}
		st.UI.Toast = s.armToast("Collection deleted", domain.SeveritySuccess)
		return st
	}, slog.String("collection_id", collectionID))
	return nil
}

func normalizeCollection(c domain.Collection) domain.Collection {
	if c.Items == nil {
		c.Items = []domain.CollectionItem{}
	}
	if c.Thumbnails == nil {
		c.Thumbnails = []string{}
	}
	return c
}
