// Package facade is the only sanctioned entry point into the store for UI
// code: a flattened read-only View plus named actions.
//
// Actions that touch the backend run on a tracked goroutine and return
// immediately; their failures are already surfaced by the store as toasts
// and are only logged here. Nothing an action does returns a backend error
// to the caller.
package facade

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
	"github.com/vitrinaapp/vitrina-store/internal/store"
	"github.com/vitrinaapp/vitrina-store/internal/validation"
)

// Guard messages shown when an action needs a session.
const (
	msgSignInToCreate  = "Sign in to start creating"
	msgSignInToSave    = "Sign in to save to collections"
	msgSignInToFollow  = "Sign in to follow creators"
	msgSignInToCollect = "Sign in to manage collections"
)

// Facade wraps a store for UI consumption.
type Facade struct {
	store  *store.Store
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	validate *validation.Validator
	actions  map[string]Action
}

// New creates a facade over s.
func New(s *store.Store, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	f := &Facade{
		store:    s,
		logger:   logger.With("component", "facade"),
		ctx:      ctx,
		cancel:   cancel,
		validate: validation.New(),
	}
	f.actions = f.buildActions()
	return f
}

// State returns the current view.
func (f *Facade) State() View {
	return NewView(f.store.Get(), f.store.Version())
}

// Subscribe calls fn with a fresh view after every applied mutation.
func (f *Facade) Subscribe(fn func(View)) func() {
	return f.store.Subscribe(func(next, _ store.State) {
		fn(NewView(next, f.store.Version()))
	})
}

// Wait blocks until every background action has finished.
func (f *Facade) Wait() {
	f.wg.Wait()
}

// Close cancels background actions, waits for them and closes the store.
func (f *Facade) Close() {
	f.cancel()
	f.wg.Wait()
	f.store.Close()
}

// Resume reconnects a hydrated session to the live feed and reloads its
// collections in the background.
func (f *Facade) Resume() {
	f.wg.Go(func() {
		f.store.Resume(f.ctx)
	})
}

// async runs fn in the background. Errors are logged, never returned.
func (f *Facade) async(name string, fn func(ctx context.Context) error) {
	f.wg.Go(func() {
		if err := fn(f.ctx); err != nil {
			f.logFailure(name, err)
		}
	})
}

// send hands the backend half of an action to async. The local half has
// already been applied by the caller.
func (f *Facade) send(name string, effect store.Effect) {
	if effect == nil {
		return
	}
	f.async(name, effect)
}

func (f *Facade) logFailure(name string, err error) {
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeValidation, domainerrors.CodeNotAuthenticated:
		f.logger.Debug("action rejected", "action", name, "error", err)
	default:
		f.logger.Warn("action failed", "action", name, "error", err)
	}
}

// authenticated reports whether a session exists. Without one the user is
// routed to the auth gate with reason.
func (f *Facade) authenticated(reason string) bool {
	if f.store.Get().IsAuthenticated() {
		return true
	}
	f.store.RequireAuth(reason)
	return false
}

// UI

func (f *Facade) ToggleSidebar() {
	f.store.ToggleSidebar()
}

func (f *Facade) SetSidebarOpen(open bool) {
	f.store.SetSidebarOpen(open)
}

func (f *Facade) SetModule(m domain.Module) {
	f.store.SetModule(m)
}

func (f *Facade) ViewAuthor(id string) {
	f.store.ViewAuthor(id)
}

func (f *Facade) CloseAuthor() {
	f.store.CloseAuthor()
}

func (f *Facade) DismissToast() {
	f.store.DismissToast()
}

func (f *Facade) SetActiveCategory(c domain.Category) {
	f.store.SetActiveCategory(c)
}

func (f *Facade) ShowToast(msg string, severity domain.Severity) {
	f.store.ShowToast(msg, severity)
}

func (f *Facade) SetContentMode(mode domain.ContentMode) error {
	return f.store.SetContentMode(mode)
}

func (f *Facade) SetCreateMode(mode domain.CreateMode) error {
	return f.store.SetCreateMode(mode)
}

func (f *Facade) OpenModal(m domain.Modal) error {
	return f.store.OpenModal(m)
}

func (f *Facade) CloseModal(m domain.Modal) error {
	return f.store.CloseModal(m)
}

// SetSearchQuery runs the local search synchronously; it never leaves the process.
func (f *Facade) SetSearchQuery(query string) {
	f.store.SetSearchQuery(f.ctx, query)
}

// HandleCreateAction opens the composer for kind, or the auth gate when
// nobody is signed in.
func (f *Facade) HandleCreateAction(kind domain.CreateMode) error {
	if !kind.Valid() {
		return domainerrors.Validationf("unknown create mode %q", kind)
	}
	if !f.authenticated(msgSignInToCreate) {
		return nil
	}
	return f.store.StartCreate(kind)
}

// Session

// Login signs user in. The session is installed before Login returns; the
// live feed and collections load in the background.
func (f *Facade) Login(user domain.User) error {
	connect, err := f.store.ApplyLogin(user)
	if err != nil {
		return err
	}
	f.send("login", connect)
	return nil
}

func (f *Facade) Logout() {
	f.store.Logout()
}

func (f *Facade) UpdateProfile(patch domain.ProfilePatch) error {
	return f.store.UpdateProfile(patch)
}

// Follow follows targetID, or routes to the auth gate.
func (f *Facade) Follow(targetID string) {
	if !f.authenticated(msgSignInToFollow) {
		return
	}
	f.async("follow", func(ctx context.Context) error {
		return f.store.Follow(ctx, targetID)
	})
}

// Cart, likes, authored content

// AddToCart adds item and mirrors it to the backend when signed in.
func (f *Facade) AddToCart(item domain.CartItem) error {
	_, effect, err := f.store.ApplyAddToCart(item)
	if err != nil {
		return err
	}
	f.send("cart.add", effect)
	return nil
}

// HandleBuyNow adds item unless it is already in the cart, then opens the cart.
func (f *Facade) HandleBuyNow(item domain.CartItem) error {
	if !f.store.Get().InCart(item.ID) {
		if err := f.AddToCart(item); err != nil {
			return err
		}
	}
	f.store.SetModule(domain.ModuleCart)
	return nil
}

func (f *Facade) RemoveFromCart(id string) {
	f.store.RemoveFromCart(id)
}

func (f *Facade) ClearCart() {
	f.store.ClearCart()
}

func (f *Facade) ToggleLike(itemID string) error {
	_, effect, err := f.store.ApplyToggleLike(itemID)
	if err != nil {
		return err
	}
	f.send("like.toggle", effect)
	return nil
}

func (f *Facade) AddCreatedItem(item domain.ContentItem) error {
	return f.store.AddCreatedItem(item)
}

func (f *Facade) RemoveCreatedItem(id string) {
	f.store.RemoveCreatedItem(id)
}

func (f *Facade) AddBlogPost(post domain.BlogPost) error {
	return f.store.AddBlogPost(post)
}

func (f *Facade) RemoveBlogPost(id string) {
	f.store.RemoveBlogPost(id)
}

// Notifications

func (f *Facade) MarkNotificationRead(id string) {
	f.send("notifications.read", f.store.ApplyMarkNotificationRead(id))
}

func (f *Facade) MarkAllNotificationsRead() {
	f.store.MarkAllNotificationsRead()
}

func (f *Facade) DeleteNotification(id string) {
	f.send("notifications.delete", f.store.ApplyDeleteNotification(id))
}

// Collections

// OpenSaveModal starts saving item to a collection, or routes to the auth gate.
func (f *Facade) OpenSaveModal(item domain.ContentItem) error {
	if !f.authenticated(msgSignInToSave) {
		return nil
	}
	return f.store.BeginSave(domain.SaveItemFrom(item))
}

// SaveToCollection saves the pending item into collectionID.
func (f *Facade) SaveToCollection(collectionID string) error {
	if !f.authenticated(msgSignInToSave) {
		return nil
	}
	if f.store.Get().UI.PendingSave == nil {
		return domainerrors.Validation("no item pending save")
	}
	f.async("collections.save", func(ctx context.Context) error {
		return f.store.SaveToCollection(ctx, collectionID)
	})
	return nil
}

// CreateCollection creates a collection, saving any pending item into it.
func (f *Facade) CreateCollection(title string, isPrivate bool) error {
	if !f.authenticated(msgSignInToCollect) {
		return nil
	}
	if err := f.validate.Validate(domain.CollectionDraft{Title: title, IsPrivate: isPrivate}); err != nil {
		return err
	}
	f.async("collections.create", func(ctx context.Context) error {
		return f.store.CreateCollection(ctx, title, isPrivate)
	})
	return nil
}

// DeleteCollection deletes collectionID once the backend confirms.
func (f *Facade) DeleteCollection(collectionID string) {
	if !f.authenticated(msgSignInToCollect) {
		return
	}
	f.async("collections.delete", func(ctx context.Context) error {
		return f.store.DeleteCollection(ctx, collectionID)
	})
}

// Feed

func (f *Facade) LoadFeed() {
	f.async("feed.load", f.store.LoadFeed)
}

func (f *Facade) NextPage() {
	f.async("feed.next", f.store.NextPage)
}

func (f *Facade) PrevPage() {
	f.store.PrevPage()
}

func (f *Facade) SetSort(sort domain.SortOption) error {
	return f.store.SetSort(sort)
}

// Profiles

// AuthorProfile returns whatever the cache holds for id right now and, when
// that is missing or stale, refreshes it in the background. The view's
// ProfilesRevision changes once the refresh lands.
func (f *Facade) AuthorProfile(id string) (domain.AuthorProfile, bool) {
	if id == "" {
		return domain.AuthorProfile{}, false
	}
	p, fresh, ok := f.store.CachedProfile(id)
	if !fresh {
		f.async("profiles.refresh", func(ctx context.Context) error {
			_, err := f.store.RefreshProfile(ctx, id)
			return err
		})
	}
	return p, ok
}
