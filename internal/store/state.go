package store

import (
	"github.com/vitrinaapp/vitrina-store/internal/domain"
)

// State is the whole client state. Each slice is owned by one file of this
// package; updaters never mutate slices or maps in place, they replace them.
type State struct {
	UI       UIState       `json:"ui"`
	Session  SessionState  `json:"session"`
	Feed     FeedState     `json:"feed"`
	Profiles ProfilesState `json:"profiles"`
}

// Modals are the visibility flags of the modal dialogs.
type Modals struct {
	Save             bool `json:"save"`
	Auth             bool `json:"auth"`
	CreateCollection bool `json:"createCollection"`
}

// UIState is transient interface state. Only ContentMode survives a restart.
type UIState struct {
	Toast        *domain.Toast      `json:"toast"`
	PendingSave  *domain.SaveItem   `json:"pendingSave"`
	Module       domain.Module      `json:"module"`
	Category     domain.Category    `json:"category"`
	ContentMode  domain.ContentMode `json:"contentMode"`
	CreateMode   domain.CreateMode  `json:"createMode"`
	SearchQuery  string             `json:"searchQuery"`
	ViewedAuthor string             `json:"viewedAuthor"`
	SearchHits   []string           `json:"searchHits"`
	Modals       Modals             `json:"modals"`
	SidebarOpen  bool               `json:"sidebarOpen"`
}

// SessionState is everything scoped to the signed-in user.
type SessionState struct {
	User                 *domain.User          `json:"user"`
	CartItems            []domain.CartItem     `json:"cartItems"`
	LikedItems           []string              `json:"likedItems"`
	CreatedItems         []domain.ContentItem  `json:"createdItems"`
	BlogPosts            []domain.BlogPost     `json:"blogPosts"`
	Notifications        []domain.Notification `json:"notifications"`
	Collections          []domain.Collection   `json:"collections"`
	NotificationsLoading bool                  `json:"notificationsLoading"`
}

// PageSnapshot is a page the user navigated away from.
type PageSnapshot struct {
	Items   []domain.ContentItem `json:"items"`
	Cursor  string               `json:"cursor"`
	HasMore bool                 `json:"hasMore"`
}

// FeedState is the paginated content stream.
type FeedState struct {
	Items     []domain.ContentItem `json:"items"`
	PageStack []PageSnapshot       `json:"-"`
	Sort      domain.SortOption    `json:"sort"`
	Cursor    string               `json:"cursor"`
	Page      int                  `json:"page"`
	HasMore   bool                 `json:"hasMore"`
	Loading   bool                 `json:"loading"`

	// request identifies the fetch in flight; bumped on every reset so
	// late results of an abandoned fetch are discarded.
	request uint64
}

// ProfilesState tracks the ephemeral profile cache. Revision is bumped on
// every successful refresh so bindings re-read the cache.
type ProfilesState struct {
	Revision uint64 `json:"revision"`
}

// InitialState is the state of a fresh start before hydration.
func InitialState() State {
	return State{
		UI: UIState{
			Module:      domain.ModuleHome,
			Category:    domain.DefaultCategory,
			ContentMode: domain.ModeCreative,
			SearchHits:  []string{},
		},
		Session: emptySession(nil),
		Feed:    emptyFeed(domain.DefaultSortOption, 0),
	}
}

func emptySession(user *domain.User) SessionState {
	return SessionState{
		User:          user,
		CartItems:     []domain.CartItem{},
		LikedItems:    []string{},
		CreatedItems:  []domain.ContentItem{},
		BlogPosts:     []domain.BlogPost{},
		Notifications: []domain.Notification{},
		Collections:   []domain.Collection{},
	}
}

// emptyFeed resets pagination. request is the id of the last issued fetch.
func emptyFeed(sort domain.SortOption, request uint64) FeedState {
	return FeedState{
		Items:   []domain.ContentItem{},
		Sort:    sort,
		Page:    1,
		HasMore: true,
		request: request + 1,
	}
}

// IsAuthenticated reports whether a session exists.
func (s State) IsAuthenticated() bool {
	return s.Session.User != nil
}

// InCart reports whether an item with id is in the cart.
func (s State) InCart(id string) bool {
	for _, it := range s.Session.CartItems {
		if it.ID == id {
			return true
		}
	}
	return false
}

// IsLiked reports whether id is in the liked set.
func (s State) IsLiked(id string) bool {
	for _, l := range s.Session.LikedItems {
		if l == id {
			return true
		}
	}
	return false
}

// CanGoBack reports whether PrevPage has a page to return to.
func (s State) CanGoBack() bool {
	return len(s.Feed.PageStack) > 0
}
