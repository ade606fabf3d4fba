package store

import (
	"context"
	"log/slog"
	"slices"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// SubscribeNotifications opens the live notification feed for userID.
// Any active feed, for this or another user, is torn down first so at most
// one feed exists at any instant. Every delivery replaces the list.
func (s *Store) SubscribeNotifications(ctx context.Context, userID string) error {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.teardownLocked()
	gen := s.subGen.Add(1)

	s.set("notifications.subscribe", func(st State) State {
		st.Session.NotificationsLoading = true
		return st
	}, slog.String("user_id", userID))

	teardown, err := s.backend.SubscribeToNotifications(ctx, userID, func(list []domain.Notification) {
		s.deliverNotifications(gen, list)
	})
	if err != nil {
		s.update("notifications.subscribe.failed", func(st State) (State, bool) {
			if s.subGen.Load() != gen || !st.Session.NotificationsLoading {
				return st, false
			}
			st.Session.NotificationsLoading = false
			return st, true
		})
		return domainerrors.BackendRejected(err, "subscribe to notifications")
	}

	s.teardown = teardown
	return nil
}

// CleanupNotifications tears down the active feed, if any, and clears the
// list. A second call is a no-op.
func (s *Store) CleanupNotifications() {
	s.subMu.Lock()
	s.subGen.Add(1)
	s.teardownLocked()
	s.subMu.Unlock()

	s.update("notifications.cleanup", func(st State) (State, bool) {
		if len(st.Session.Notifications) == 0 && !st.Session.NotificationsLoading {
			return st, false
		}
		st.Session.Notifications = []domain.Notification{}
		st.Session.NotificationsLoading = false
		return st, true
	})
}

// HasActiveSubscription reports whether a teardown handle is held.
func (s *Store) HasActiveSubscription() bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.teardown != nil
}

func (s *Store) teardownLocked() {
	if s.teardown != nil {
		s.teardown()
		s.teardown = nil
	}
}

// deliverNotifications applies one feed snapshot unless the feed that
// produced it has since been replaced or cleaned up.
func (s *Store) deliverNotifications(gen uint64, list []domain.Notification) {
	applied := s.update("notifications.snapshot", func(st State) (State, bool) {
		if s.subGen.Load() != gen {
			return st, false
		}
		st.Session.Notifications = slices.Clone(list)
		if st.Session.Notifications == nil {
			st.Session.Notifications = []domain.Notification{}
		}
		st.Session.NotificationsLoading = false
		return st, true
	}, slog.Int("count", len(list)))
	if !applied {
		s.logger.Debug("dropped stale notification delivery", "generation", gen)
	}
}

// MarkNotificationRead flags id as read locally, then tells the backend.
// The backend call is best-effort.
func (s *Store) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return s.ApplyMarkNotificationRead(notificationID).Run(ctx)
}

// ApplyMarkNotificationRead flags id as read and returns the backend call.
func (s *Store) ApplyMarkNotificationRead(notificationID string) Effect {
	var userID string
	s.update("notifications.read", func(st State) (State, bool) {
		i := slices.IndexFunc(st.Session.Notifications, func(n domain.Notification) bool { return n.ID == notificationID })
		if i < 0 || st.Session.Notifications[i].Read {
			return st, false
		}
		list := slices.Clone(st.Session.Notifications)
		list[i].Read = true
		st.Session.Notifications = list
		if st.Session.User != nil {
			userID = st.Session.User.ID
		}
		return st, true
	}, slog.String("notification_id", notificationID))

	if userID == "" {
		return nil
	}
	return func(ctx context.Context) error {
		if err := s.backend.MarkNotificationRead(ctx, userID, notificationID); err != nil {
			s.logger.Warn("mark read failed", "user_id", userID, "notification_id", notificationID, "error", err)
			return domainerrors.BackendRejected(err, "mark notification read")
		}
		return nil
	}
}

// MarkAllNotificationsRead flags every notification as read. Local only.
func (s *Store) MarkAllNotificationsRead() {
	s.update("notifications.readAll", func(st State) (State, bool) {
		if domain.UnreadCount(st.Session.Notifications) == 0 {
			return st, false
		}
		list := slices.Clone(st.Session.Notifications)
		for i := range list {
			list[i].Read = true
		}
		st.Session.Notifications = list
		return st, true
	})
}

// DeleteNotification removes id locally, then deletes it on the backend.
// A failed backend delete is reported but the item is not restored; the
// next feed snapshot is authoritative.
func (s *Store) DeleteNotification(ctx context.Context, notificationID string) error {
	return s.ApplyDeleteNotification(notificationID).Run(ctx)
}

// ApplyDeleteNotification removes id from the list and returns the backend
// delete.
func (s *Store) ApplyDeleteNotification(notificationID string) Effect {
	var userID string
	s.update("notifications.delete", func(st State) (State, bool) {
		if !slices.ContainsFunc(st.Session.Notifications, func(n domain.Notification) bool { return n.ID == notificationID }) {
			return st, false
		}
		st.Session.Notifications = slices.DeleteFunc(slices.Clone(st.Session.Notifications), func(n domain.Notification) bool {
			return n.ID == notificationID
		})
		if st.Session.User != nil {
			userID = st.Session.User.ID
		}
		return st, true
	}, slog.String("notification_id", notificationID))

	if userID == "" {
		return nil
	}
	return func(ctx context.Context) error {
		if err := s.backend.DeleteNotification(ctx, userID, notificationID); err != nil {
			s.logger.Warn("notification delete failed", "user_id", userID, "notification_id", notificationID, "error", err)
			s.ShowToast("Couldn't delete notification", domain.SeverityError)
			return domainerrors.BackendRejected(err, "delete notification")
		}
		return nil
	}
}
