package store

import (
	"context"
	"log/slog"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// Login installs user as the session, opens the notification feed and
// loads the user's collections. Switching accounts drops the previous
// account's session-scoped data first. Feed and collection failures are
// logged; the session stays.
func (s *Store) Login(ctx context.Context, user domain.User) error {
	connect, err := s.ApplyLogin(user)
	if err != nil {
		return err
	}
	return connect.Run(ctx)
}

// ApplyLogin installs the session and returns the work that connects it to
// the backend: the live feed and the collection load.
func (s *Store) ApplyLogin(user domain.User) (Effect, error) {
	if err := s.validate.Validate(user); err != nil {
		return nil, err
	}
	u := user.Clone()
	u.Skills = domain.NormalizeSkills(u.Skills)

	s.set("session.login", func(st State) State {
		if st.Session.User == nil || st.Session.User.ID != u.ID {
			st.Session = emptySession(u)
		} else {
			st.Session.User = u
		}
		if st.UI.Module == domain.ModuleAuth {
			st.UI = withModule(st.UI, domain.ModuleHome)
		}
		st.UI.Modals.Auth = false
		return st
	}, slog.String("user_id", u.ID))

	s.logger.Info("user signed in", "user_id", u.ID)

	return func(ctx context.Context) error {
		s.connect(ctx, u.ID)
		return nil
	}, nil
}

// Resume restarts the live feed and reloads collections for a session
// restored from storage. Without a session it does nothing.
func (s *Store) Resume(ctx context.Context) {
	user := s.Get().Session.User
	if user == nil {
		return
	}
	s.connect(ctx, user.ID)
}

func (s *Store) connect(ctx context.Context, userID string) {
	if err := s.SubscribeNotifications(ctx, userID); err != nil {
		s.logger.Warn("notification feed unavailable", "user_id", userID, "error", err)
	}
	if err := s.LoadCollections(ctx); err != nil {
		s.logger.Warn("collections unavailable", "user_id", userID, "error", err)
	}
}

// Logout tears down the live feed and clears every session-scoped field.
func (s *Store) Logout() {
	s.CleanupNotifications()

	s.update("session.logout", func(st State) (State, bool) {
		if st.Session.User == nil {
			return st, false
		}
		st.Session = emptySession(nil)
		st.UI.PendingSave = nil
		st.UI.Modals = Modals{}
		switch st.UI.Module {
		case domain.ModuleCreate, domain.ModuleProfile, domain.ModuleSettings, domain.ModuleCart:
			st.UI = withModule(st.UI, domain.ModuleHome)
		}
		st.UI.Toast = s.armToast("Signed out", domain.SeverityInfo)
		return st, true
	})
}

// UpdateProfile applies patch to the session user. Skills are normalized.
func (s *Store) UpdateProfile(patch domain.ProfilePatch) error {
	if err := s.validate.Validate(patch); err != nil {
		return err
	}

	var updated bool
	s.update("session.profile", func(st State) (State, bool) {
		if st.Session.User == nil {
			return st, false
		}
		st.Session.User = patch.Apply(st.Session.User)
		st.UI.Toast = s.armToast("Profile updated", domain.SeveritySuccess)
		updated = true
		return st, true
	})
	if !updated {
		return domainerrors.NotAuthenticated("sign in to edit your profile")
	}
	return nil
}

// Follow follows another user. The following counter moves only after the
// backend confirms.
func (s *Store) Follow(ctx context.Context, targetID string) error {
	user, err := s.requireUser("sign in to follow creators")
	if err != nil {
		return err
	}
	if targetID == "" || targetID == user.ID {
		return domainerrors.Validation("cannot follow this user")
	}

	if err := s.backend.FollowUser(ctx, user.ID, targetID); err != nil {
		s.logger.Warn("follow failed", "user_id", user.ID, "target_id", targetID, "error", err)
		s.ShowToast("Couldn't follow this creator", domain.SeverityError)
		return domainerrors.BackendRejected(err, "follow user")
	}

	s.update("session.follow", func(st State) (State, bool) {
		if st.Session.User == nil || st.Session.User.ID != user.ID {
			return st, false
		}
		u := st.Session.User.Clone()
		u.Stats.Following++
		st.Session.User = u
		st.UI.Toast = s.armToast("Following", domain.SeveritySuccess)
		return st, true
	}, slog.String("target_id", targetID))
	return nil
}

// requireUser returns the session user or a NOT_AUTHENTICATED error.
func (s *Store) requireUser(reason string) (*domain.User, error) {
	u := s.Get().Session.User
	if u == nil {
		return nil, domainerrors.NotAuthenticated(reason)
	}
	return u, nil
}

// sameUser reports whether st still belongs to userID. Used after a
// suspension point before writing session data.
func sameUser(st State, userID string) bool {
	return st.Session.User != nil && st.Session.User.ID == userID
}
