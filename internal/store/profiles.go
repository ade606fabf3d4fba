package store

import (
	"context"
	"log/slog"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// CachedProfile returns the cached profile for id without fetching. ok is
// false on a miss; fresh is false once the entry outlived its TTL.
func (s *Store) CachedProfile(id string) (p domain.AuthorProfile, fresh, ok bool) {
	e, fresh, ok := s.profiles.Cached(id)
	if !ok {
		return domain.AuthorProfile{}, false, false
	}
	return e.Profile, fresh, true
}

// LookupProfile returns a fresh profile, fetching only on miss or expiry.
func (s *Store) LookupProfile(ctx context.Context, id string) (domain.AuthorProfile, error) {
	if id == "" {
		return domain.AuthorProfile{}, domainerrors.Validation("profile id is required")
	}
	if e, fresh, ok := s.profiles.Cached(id); ok && fresh {
		return e.Profile, nil
	}
	return s.RefreshProfile(ctx, id)
}

// RefreshProfile fetches id and bumps Profiles.Revision so bindings reading
// the cache re-render. On failure any stale entry stays in place.
func (s *Store) RefreshProfile(ctx context.Context, id string) (domain.AuthorProfile, error) {
	if id == "" {
		return domain.AuthorProfile{}, domainerrors.Validation("profile id is required")
	}
	e, err := s.profiles.Refresh(ctx, id)
	if err != nil {
		return e.Profile, domainerrors.BackendRejected(err, "fetch profile")
	}
	s.set("profiles.refreshed", func(st State) State {
		st.Profiles.Revision++
		return st
	}, slog.String("entity_id", id), slog.Bool("missing", e.Missing))
	return e.Profile, nil
}
