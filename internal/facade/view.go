package facade

import (
	"github.com/vitrinaapp/vitrina-store/internal/domain"
	"github.com/vitrinaapp/vitrina-store/internal/store"
)

// Modals mirrors store.Modals for the view.
type Modals = store.Modals

// ExcerptLength is the rune limit of BlogPostView.Excerpt.
const ExcerptLength = 160

// BlogPostView is a blog post with its plain-text preview.
type BlogPostView struct {
	domain.BlogPost
	Excerpt string `json:"excerpt"`
}

// FeedView is the visible page of the content feed.
type FeedView struct {
	Items     []domain.ContentItem `json:"items"`
	Page      int                  `json:"page"`
	HasMore   bool                 `json:"hasMore"`
	Loading   bool                 `json:"loading"`
	CanGoBack bool                 `json:"canGoBack"`
}

// View is the flattened read-only projection the UI binds to.
type View struct {
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`

	Module       domain.Module      `json:"module"`
	Category     domain.Category    `json:"category"`
	Sort         domain.SortOption  `json:"sort"`
	ContentMode  domain.ContentMode `json:"contentMode"`
	CreateMode   domain.CreateMode  `json:"createMode"`
	SearchQuery  string             `json:"searchQuery"`
	SearchHits   []string           `json:"searchHits"`
	ViewedAuthor string             `json:"viewedAuthor,omitempty"`
	Toast        *domain.Toast      `json:"toast"`
	PendingSave  *domain.SaveItem   `json:"pendingSave"`
	Modals       Modals             `json:"modals"`
	SidebarOpen  bool               `json:"sidebarOpen"`

	Cart                 []domain.CartItem     `json:"cart"`
	CartTotal            float64               `json:"cartTotal"`
	Liked                []string              `json:"liked"`
	Created              []domain.ContentItem  `json:"created"`
	BlogPosts            []BlogPostView        `json:"blogPosts"`
	Notifications        []domain.Notification `json:"notifications"`
	UnreadCount          int                   `json:"unreadCount"`
	NotificationsLoading bool                  `json:"notificationsLoading"`
	Collections          []domain.Collection   `json:"collections"`

	Feed             FeedView `json:"feed"`
	ProfilesRevision uint64   `json:"profilesRevision"`
	Version          uint64   `json:"version"`
}

// NewView projects st. version is the store version st was read at.
func NewView(st store.State, version uint64) View {
	return View{
		User:            st.Session.User,
		IsAuthenticated: st.IsAuthenticated(),

		Module:       st.UI.Module,
		Category:     st.UI.Category,
		Sort:         st.Feed.Sort,
		ContentMode:  st.UI.ContentMode,
		CreateMode:   st.UI.CreateMode,
		SearchQuery:  st.UI.SearchQuery,
		SearchHits:   st.UI.SearchHits,
		ViewedAuthor: st.UI.ViewedAuthor,
		Toast:        st.UI.Toast,
		PendingSave:  st.UI.PendingSave,
		Modals:       st.UI.Modals,
		SidebarOpen:  st.UI.SidebarOpen,

		Cart:                 st.Session.CartItems,
		CartTotal:            store.CartTotal(st.Session.CartItems),
		Liked:                st.Session.LikedItems,
		Created:              st.Session.CreatedItems,
		BlogPosts:            blogPostViews(st.Session.BlogPosts),
		Notifications:        st.Session.Notifications,
		UnreadCount:          domain.UnreadCount(st.Session.Notifications),
		NotificationsLoading: st.Session.NotificationsLoading,
		Collections:          st.Session.Collections,

		Feed: FeedView{
			Items:     st.Feed.Items,
			Page:      st.Feed.Page,
			HasMore:   st.Feed.HasMore,
			Loading:   st.Feed.Loading,
			CanGoBack: st.CanGoBack(),
		},
		ProfilesRevision: st.Profiles.Revision,
		Version:          version,
	}
}

func blogPostViews(posts []domain.BlogPost) []BlogPostView {
	if posts == nil {
		return nil
	}
	out := make([]BlogPostView, len(posts))
	for i, p := range posts {
		out[i] = BlogPostView{BlogPost: p, Excerpt: p.Excerpt(ExcerptLength)}
	}
	return out
}
