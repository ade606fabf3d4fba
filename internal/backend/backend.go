// Package backend defines the remote collaborator the store talks to and
// an HTTP implementation of it.
//
// Every method is a suspension point for the store: it may block on the
// network and may fail. Nothing here retries.
package backend

import (
	"context"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
)

// SnapshotFunc receives the full current notification list on every
// delivery. Deliveries replace, they never append.
type SnapshotFunc func([]domain.Notification)

// Teardown stops a live subscription. Calling it more than once is safe.
type Teardown func()

// Backend is the remote API consumed by the store.
type Backend interface {
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	SubscribeToNotifications(ctx context.Context, userID string, onSnapshot SnapshotFunc) (Teardown, error)
	DeleteNotification(ctx context.Context, userID, notificationID string) error

	GetUserCollections(ctx context.Context, userID string) ([]domain.Collection, error)
	AddToCollection(ctx context.Context, userID, collectionID string, item domain.SaveItem) error
	CreateCollection(ctx context.Context, userID string, draft domain.CollectionDraft) (domain.Collection, error)
	DeleteCollection(ctx context.Context, userID, collectionID string) error

	// GetUserProfile returns nil, nil when the entity has no profile.
	GetUserProfile(ctx context.Context, entityID string) (*domain.AuthorProfile, error)

	FetchContent(ctx context.Context, q domain.FeedQuery) (domain.Page, error)
	AddToCart(ctx context.Context, userID string, item domain.CartItem) error
	SetLiked(ctx context.Context, userID, itemID string, liked bool) error
	FollowUser(ctx context.Context, userID, targetID string) error
}
