// Package backendtest provides a scriptable in-memory backend.Backend.
package backendtest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/vitrinaapp/vitrina-store/internal/backend"
	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// Method names used with FailOn, Gate and Calls.
const (
	MarkNotificationRead     = "MarkNotificationRead"
	SubscribeToNotifications = "SubscribeToNotifications"
	DeleteNotification       = "DeleteNotification"
	GetUserCollections       = "GetUserCollections"
	AddToCollection          = "AddToCollection"
	CreateCollection         = "CreateCollection"
	DeleteCollection         = "DeleteCollection"
	GetUserProfile           = "GetUserProfile"
	FetchContent             = "FetchContent"
	AddToCart                = "AddToCart"
	SetLiked                 = "SetLiked"
	FollowUser               = "FollowUser"
)

// Call is one recorded invocation.
type Call struct {
	Method string
	Args   []any
}

type subscription struct {
	id     int
	userID string
	fn     backend.SnapshotFunc
}

// Fake is an in-memory backend. The zero value is not usable; call New.
type Fake struct {
	mu sync.Mutex

	collections map[string][]domain.Collection
	profiles    map[string]*domain.AuthorProfile
	content     []domain.ContentItem

	failures map[string]error
	gates    map[string]chan struct{}
	calls    []Call

	subs      map[int]*subscription
	nextSub   int
	teardowns int
	nextID    int
}

var _ backend.Backend = (*Fake)(nil)

// New creates an empty fake backend.
func New() *Fake {
	return &Fake{
		collections: make(map[string][]domain.Collection),
		profiles:    make(map[string]*domain.AuthorProfile),
		failures:    make(map[string]error),
		gates:       make(map[string]chan struct{}),
		subs:        make(map[int]*subscription),
	}
}

// FailOn makes every later call to method return err. A nil err clears it.
func (f *Fake) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, method)
		return
	}
	f.failures[method] = err
}

// Gate makes calls to method block after being recorded until the returned
// release func runs (or the call's context ends).
func (f *Fake) Gate(method string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[method] = ch
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gates[method] == ch {
				delete(f.gates, method)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns the recorded calls to method, in order.
func (f *Fake) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Methods returns the method names of all recorded calls, in order.
func (f *Fake) Methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Method
	}
	return out
}

// SetCollections seeds the collections the backend holds for userID.
func (f *Fake) SetCollections(userID string, cols []domain.Collection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[userID] = slices.Clone(cols)
}

// Collections returns what the backend holds for userID.
func (f *Fake) Collections(userID string) []domain.Collection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.collections[userID])
}

// SetProfile seeds a profile. A nil profile means "no such entity".
func (f *Fake) SetProfile(entityID string, p *domain.AuthorProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[entityID] = p
}

// SetContent seeds the feed. FetchContent pages through it with numeric cursors.
func (f *Fake) SetContent(items []domain.ContentItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = slices.Clone(items)
}

// Push delivers list to every live subscription for userID.
func (f *Fake) Push(userID string, list []domain.Notification) {
	f.mu.Lock()
	var targets []backend.SnapshotFunc
	for _, s := range f.subs {
		if s.userID == userID {
			targets = append(targets, s.fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range targets {
		fn(slices.Clone(list))
	}
}

// PushStale delivers list through previously captured delivery funcs even
// if their feeds were torn down, like frames already in flight at teardown.
func (f *Fake) PushStale(fns []backend.SnapshotFunc, list []domain.Notification) {
	for _, fn := range fns {
		fn(slices.Clone(list))
	}
}

// Snapshotters returns the delivery funcs of the live subscriptions.
func (f *Fake) Snapshotters() []backend.SnapshotFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.subs))
	for id := range f.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]backend.SnapshotFunc, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.subs[id].fn)
	}
	return out
}

// ActiveSubscriptions returns the number of open live feeds.
func (f *Fake) ActiveSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Teardowns returns how many feeds have been torn down.
func (f *Fake) Teardowns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.teardowns
}

// enter records the call, waits on any gate and returns the scripted failure.
func (f *Fake) enter(ctx context.Context, method string, args ...any) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
	gate := f.gates[method]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[method]
}

// MarkNotificationRead implements backend.Backend.
func (f *Fake) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return f.enter(ctx, MarkNotificationRead, userID, notificationID)
}

// SubscribeToNotifications implements backend.Backend.
func (f *Fake) SubscribeToNotifications(ctx context.Context, userID string, onSnapshot backend.SnapshotFunc) (backend.Teardown, error) {
	if err := f.enter(ctx, SubscribeToNotifications, userID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.nextSub++
	id := f.nextSub
	f.subs[id] = &subscription{id: id, userID: userID, fn: onSnapshot}
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.teardowns++
			f.mu.Unlock()
		})
	}, nil
}

// DeleteNotification implements backend.Backend.
func (f *Fake) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return f.enter(ctx, DeleteNotification, userID, notificationID)
}

// GetUserCollections implements backend.Backend.
func (f *Fake) GetUserCollections(ctx context.Context, userID string) ([]domain.Collection, error) {
	if err := f.enter(ctx, GetUserCollections, userID); err != nil {
		return nil, err
	}
	return f.Collections(userID), nil
}

// AddToCollection implements backend.Backend.
func (f *Fake) AddToCollection(ctx context.Context, userID, collectionID string, item domain.SaveItem) error {
	if err := f.enter(ctx, AddToCollection, userID, collectionID, item); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	cols := f.collections[userID]
	i := slices.IndexFunc(cols, func(c domain.Collection) bool { return c.ID == collectionID })
	if i < 0 {
		return domainerrors.NotFoundf("collection %s", collectionID)
	}
	cols[i] = cols[i].WithItem(item, time.Now())
	return nil
}

// CreateCollection implements backend.Backend.
func (f *Fake) CreateCollection(ctx context.Context, userID string, draft domain.CollectionDraft) (domain.Collection, error) {
	if err := f.enter(ctx, CreateCollection, userID, draft); err != nil {
		return domain.Collection{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	col := domain.Collection{
		ID:         fmt.Sprintf("col-%d", f.nextID),
		Title:      draft.Title,
		IsPrivate:  draft.IsPrivate,
		Thumbnails: []string{},
		Items:      []domain.CollectionItem{},
		CreatedAt:  time.Now().UTC(),
	}
	f.collections[userID] = append(f.collections[userID], col)
	return col, nil
}

// DeleteCollection implements backend.Backend.
func (f *Fake) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	if err := f.enter(ctx, DeleteCollection, userID, collectionID); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[userID] = slices.DeleteFunc(f.collections[userID], func(c domain.Collection) bool {
		return c.ID == collectionID
	})
	return nil
}

// GetUserProfile implements backend.Backend.
func (f *Fake) GetUserProfile(ctx context.Context, entityID string) (*domain.AuthorProfile, error) {
	if err := f.enter(ctx, GetUserProfile, entityID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[entityID]
	if p == nil {
		return nil, nil
	}
	out := *p
	return &out, nil
}

// FetchContent implements backend.Backend. Items are ordered by q.Sort and
// the cursor is the decimal offset of the next item.
func (f *Fake) FetchContent(ctx context.Context, q domain.FeedQuery) (domain.Page, error) {
	if err := f.enter(ctx, FetchContent, q); err != nil {
		return domain.Page{}, err
	}

	f.mu.Lock()
	items := slices.Clone(f.content)
	f.mu.Unlock()

	switch q.Sort {
	case domain.SortOldest:
		slices.SortStableFunc(items, func(a, b domain.ContentItem) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case domain.SortPopular:
		slices.SortStableFunc(items, func(a, b domain.ContentItem) int { return cmp.Compare(b.Likes, a.Likes) })
	default:
		slices.SortStableFunc(items, func(a, b domain.ContentItem) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}

	offset := 0
	if q.Cursor != "" {
		n, err := strconv.Atoi(q.Cursor)
		if err != nil || n < 0 {
			return domain.Page{}, domainerrors.Validationf("bad cursor %q", q.Cursor)
		}
		offset = min(n, len(items))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = len(items)
	}
	end := min(offset+limit, len(items))

	page := domain.Page{Items: items[offset:end], HasMore: end < len(items)}
	if page.HasMore {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// AddToCart implements backend.Backend.
func (f *Fake) AddToCart(ctx context.Context, userID string, item domain.CartItem) error {
	return f.enter(ctx, AddToCart, userID, item)
}

// SetLiked implements backend.Backend.
func (f *Fake) SetLiked(ctx context.Context, userID, itemID string, liked bool) error {
	return f.enter(ctx, SetLiked, userID, itemID, liked)
}

// FollowUser implements backend.Backend.
func (f *Fake) FollowUser(ctx context.Context, userID, targetID string) error {
	return f.enter(ctx, FollowUser, userID, targetID)
}
