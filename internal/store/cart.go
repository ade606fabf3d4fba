package store

import (
	"context"
	"log/slog"
	"slices"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// AddToCart adds item unless an entry with its id is already present, in
// which case the cart is left alone and an "already in cart" toast shows.
// When signed in the add is mirrored to the backend after the local write.
// It reports whether the item was added.
func (s *Store) AddToCart(ctx context.Context, item domain.CartItem) (bool, error) {
	added, effect, err := s.ApplyAddToCart(item)
	if err != nil {
		return false, err
	}
	return added, effect.Run(ctx)
}

// ApplyAddToCart performs the local half of AddToCart and returns the
// backend sync, nil when there is nothing to mirror.
func (s *Store) ApplyAddToCart(item domain.CartItem) (bool, Effect, error) {
	if err := s.validate.Validate(item); err != nil {
		return false, nil, err
	}

	var (
		added  bool
		userID string
	)
	s.set("session.cart.add", func(st State) State {
		if st.InCart(item.ID) {
			st.UI.Toast = s.armToast("Already in your cart", domain.SeverityInfo)
			return st
		}
		st.Session.CartItems = append(slices.Clone(st.Session.CartItems), item)
		st.UI.Toast = s.armToast("Added to cart", domain.SeveritySuccess)
		if st.Session.User != nil {
			userID = st.Session.User.ID
		}
		added = true
		return st
	}, slog.String("item_id", item.ID))

	if !added || userID == "" {
		return added, nil, nil
	}
	return true, func(ctx context.Context) error {
		if err := s.backend.AddToCart(ctx, userID, item); err != nil {
			s.logger.Warn("cart sync failed", "user_id", userID, "item_id", item.ID, "error", err)
			return domainerrors.BackendRejected(err, "sync cart")
		}
		return nil
	}, nil
}

// RemoveFromCart drops the entry with id.
func (s *Store) RemoveFromCart(itemID string) {
	s.update("session.cart.remove", func(st State) (State, bool) {
		i := slices.IndexFunc(st.Session.CartItems, func(c domain.CartItem) bool { return c.ID == itemID })
		if i < 0 {
			return st, false
		}
		st.Session.CartItems = slices.Delete(slices.Clone(st.Session.CartItems), i, i+1)
		return st, true
	}, slog.String("item_id", itemID))
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.update("session.cart.clear", func(st State) (State, bool) {
		if len(st.Session.CartItems) == 0 {
			return st, false
		}
		st.Session.CartItems = []domain.CartItem{}
		return st, true
	})
}

// CartTotal sums the prices in the cart.
func CartTotal(items []domain.CartItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price
	}
	return total
}

// ToggleLike flips itemID in the liked set. When signed in the new value is
// sent to the backend after the local write; failures are not rolled back.
// It returns the new liked value.
func (s *Store) ToggleLike(ctx context.Context, itemID string) (bool, error) {
	liked, effect, err := s.ApplyToggleLike(itemID)
	if err != nil {
		return false, err
	}
	return liked, effect.Run(ctx)
}

// ApplyToggleLike performs the local half of ToggleLike.
func (s *Store) ApplyToggleLike(itemID string) (bool, Effect, error) {
	if itemID == "" {
		return false, nil, domainerrors.Validation("item id is required")
	}

	var (
		liked  bool
		userID string
	)
	s.set("session.like.toggle", func(st State) State {
		liked = !st.IsLiked(itemID)
		if liked {
			st.Session.LikedItems = append(slices.Clone(st.Session.LikedItems), itemID)
		} else {
			st.Session.LikedItems = slices.DeleteFunc(slices.Clone(st.Session.LikedItems), func(id string) bool { return id == itemID })
		}
		if st.Session.User != nil {
			userID = st.Session.User.ID
		}
		return st
	}, slog.String("item_id", itemID))

	if userID == "" {
		return liked, nil, nil
	}
	return liked, func(ctx context.Context) error {
		if err := s.backend.SetLiked(ctx, userID, itemID, liked); err != nil {
			s.logger.Warn("like sync failed", "user_id", userID, "item_id", itemID, "error", err)
			return domainerrors.BackendRejected(err, "sync like")
		}
		return nil
	}, nil
}

// AddCreatedItem records content the user published, newest first.
func (s *Store) AddCreatedItem(item domain.ContentItem) error {
	if err := s.validate.Validate(item); err != nil {
		return err
	}
	s.set("session.created.add", func(st State) State {
		rest := slices.DeleteFunc(slices.Clone(st.Session.CreatedItems), func(c domain.ContentItem) bool { return c.ID == item.ID })
		st.Session.CreatedItems = append([]domain.ContentItem{item}, rest...)
		return st
	}, slog.String("item_id", item.ID))
	return nil
}

// RemoveCreatedItem forgets a created item.
func (s *Store) RemoveCreatedItem(itemID string) {
	s.update("session.created.remove", func(st State) (State, bool) {
		if !slices.ContainsFunc(st.Session.CreatedItems, func(c domain.ContentItem) bool { return c.ID == itemID }) {
			return st, false
		}
		st.Session.CreatedItems = slices.DeleteFunc(slices.Clone(st.Session.CreatedItems), func(c domain.ContentItem) bool { return c.ID == itemID })
		return st, true
	}, slog.String("item_id", itemID))
}

// AddBlogPost records a post the user authored, newest first.
func (s *Store) AddBlogPost(post domain.BlogPost) error {
	if err := s.validate.Validate(post); err != nil {
		return err
	}
	s.set("session.blog.add", func(st State) State {
		rest := slices.DeleteFunc(slices.Clone(st.Session.BlogPosts), func(p domain.BlogPost) bool { return p.ID == post.ID })
		st.Session.BlogPosts = append([]domain.BlogPost{post}, rest...)
		return st
	}, slog.String("post_id", post.ID))
	return nil
}

// RemoveBlogPost forgets an authored post.
func (s *Store) RemoveBlogPost(postID string) {
	s.update("session.blog.remove", func(st State) (State, bool) {
		if !slices.ContainsFunc(st.Session.BlogPosts, func(p domain.BlogPost) bool { return p.ID == postID }) {
			return st, false
		}
		st.Session.BlogPosts = slices.DeleteFunc(slices.Clone(st.Session.BlogPosts), func(p domain.BlogPost) bool { return p.ID == postID })
		return st, true
	}, slog.String("post_id", postID))
}
