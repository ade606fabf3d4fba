package facade

import (
	"bytes"
	"context"
	"encoding/json"
	"maps"
	"slices"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// Action is a named facade operation callable with JSON arguments.
// It returns only argument and guard errors; backend work is asynchronous.
type Action func(ctx context.Context, args json.RawMessage) error

type (
	moduleArgs struct {
		Module domain.Module `json:"module"`
	}
	modeArgs struct {
		Mode domain.ContentMode `json:"mode"`
	}
	createArgs struct {
		Kind domain.CreateMode `json:"kind"`
	}
	categoryArgs struct {
		Category domain.Category `json:"category"`
	}
	sortArgs struct {
		Sort domain.SortOption `json:"sort"`
	}
	modalArgs struct {
		Modal domain.Modal `json:"modal"`
	}
	idArgs struct {
		ID string `json:"id"`
	}
	openArgs struct {
		Open bool `json:"open"`
	}
	queryArgs struct {
		Query string `json:"query"`
	}
	toastArgs struct {
		Message  string          `json:"message"`
		Severity domain.Severity `json:"severity"`
	}
	createCollectionArgs struct {
		Title     string `json:"title"`
		IsPrivate bool   `json:"isPrivate"`
	}
)

// Actions returns the action table keyed by name.
func (f *Facade) Actions() map[string]Action {
	return maps.Clone(f.actions)
}

// ActionNames returns the sorted action names.
func (f *Facade) ActionNames() []string {
	return slices.Sorted(maps.Keys(f.actions))
}

// Dispatch runs the named action. Unknown names are NOT_FOUND.
func (f *Facade) Dispatch(ctx context.Context, name string, args json.RawMessage) error {
	action, ok := f.actions[name]
	if !ok {
		return domainerrors.NotFoundf("unknown action %q", name)
	}
	return action(ctx, args)
}

// decode parses args into v. Empty args decode as an empty object.
func decode[T any](args json.RawMessage) (T, error) {
	var v T
	if len(bytes.TrimSpace(args)) == 0 {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, domainerrors.Validationf("invalid arguments: %v", err)
	}
	return v, nil
}

// bind adapts a typed handler into an Action.
func bind[T any](fn func(T) error) Action {
	return func(_ context.Context, args json.RawMessage) error {
		v, err := decode[T](args)
		if err != nil {
			return err
		}
		return fn(v)
	}
}

// nullary adapts a handler that takes no arguments.
func nullary(fn func()) Action {
	return func(context.Context, json.RawMessage) error {
		fn()
		return nil
	}
}

func requireID(id string) error {
	if id == "" {
		return domainerrors.Validation("id is required")
	}
	return nil
}

func (f *Facade) buildActions() map[string]Action {
	return map[string]Action{
		// UI
		"toggleSidebar": nullary(f.ToggleSidebar),
		"setSidebarOpen": bind(func(a openArgs) error {
			f.SetSidebarOpen(a.Open)
			return nil
		}),
		"setModule": bind(func(a moduleArgs) error {
			if a.Module == "" {
				return domainerrors.Validation("module is required")
			}
			f.SetModule(a.Module)
			return nil
		}),
		"setContentMode": bind(func(a modeArgs) error { return f.SetContentMode(a.Mode) }),
		"setCreateMode":  bind(func(a createArgs) error { return f.SetCreateMode(a.Kind) }),
		"setActiveCategory": bind(func(a categoryArgs) error {
			if a.Category == "" {
				return domainerrors.Validation("category is required")
			}
			f.SetActiveCategory(a.Category)
			return nil
		}),
		"setSearchQuery": bind(func(a queryArgs) error {
			f.SetSearchQuery(a.Query)
			return nil
		}),
		"viewAuthor": bind(func(a idArgs) error {
			if err := requireID(a.ID); err != nil {
				return err
			}
			f.ViewAuthor(a.ID)
			return nil
		}),
		"closeAuthor": nullary(f.CloseAuthor),
		"openModal":   bind(func(a modalArgs) error { return f.OpenModal(a.Modal) }),
		"closeModal":  bind(func(a modalArgs) error { return f.CloseModal(a.Modal) }),
		"showToast": bind(func(a toastArgs) error {
			if a.Message == "" {
				return domainerrors.Validation("message is required")
			}
			if a.Severity == "" {
				a.Severity = domain.SeverityInfo
			}
			f.ShowToast(a.Message, a.Severity)
			return nil
		}),
		"dismissToast":       nullary(f.DismissToast),
		"handleCreateAction": bind(func(a createArgs) error { return f.HandleCreateAction(a.Kind) }),

		// Session
		"login":         bind(f.Login),
		"logout":        nullary(f.Logout),
		"updateProfile": bind(f.UpdateProfile),
		"follow": bind(func(a idArgs) error {
			if err := requireID(a.ID); err != nil {
				return err
			}
			f.Follow(a.ID)
			return nil
		}),

		// Cart and content
		"addToCart":    bind(f.AddToCart),
		"handleBuyNow": bind(f.HandleBuyNow),
		"removeFromCart": bind(func(a idArgs) error {
			f.RemoveFromCart(a.ID)
			return nil
		}),
		"clearCart":      nullary(f.ClearCart),
		"toggleLike":     bind(func(a idArgs) error { return f.ToggleLike(a.ID) }),
		"addCreatedItem": bind(f.AddCreatedItem),
		"removeCreatedItem": bind(func(a idArgs) error {
			f.RemoveCreatedItem(a.ID)
			return nil
		}),
		"addBlogPost": bind(f.AddBlogPost),
		"removeBlogPost": bind(func(a idArgs) error {
			f.RemoveBlogPost(a.ID)
			return nil
		}),

		// Notifications
		"markNotificationRead": bind(func(a idArgs) error {
			if err := requireID(a.ID); err != nil {
				return err
			}
			f.MarkNotificationRead(a.ID)
			return nil
		}),
		"markAllNotificationsRead": nullary(f.MarkAllNotificationsRead),
		"deleteNotification": bind(func(a idArgs) error {
			if err := requireID(a.ID); err != nil {
				return err
			}
			f.DeleteNotification(a.ID)
			return nil
		}),

		// Collections
		"openSaveModal": bind(func(item domain.ContentItem) error {
			if err := requireID(item.ID); err != nil {
				return err
			}
			return f.OpenSaveModal(item)
		}),
		"saveToCollection": bind(func(a idArgs) error {
			if err := requireID(a.ID); err != nil {
				return err
			}
			return f.SaveToCollection(a.ID)
		}),
		"createCollection": bind(func(a createCollectionArgs) error {
			return f.CreateCollection(a.Title, a.IsPrivate)
		}),
		"deleteCollection": bind(func(a idArgs) error {
			if err := requireID(a.ID); err != nil {
				return err
			}
			f.DeleteCollection(a.ID)
			return nil
		}),

		// Feed
		"loadFeed": nullary(f.LoadFeed),
		"nextPage": nullary(f.NextPage),
		"prevPage": nullary(f.PrevPage),
		"setSort":  bind(func(a sortArgs) error { return f.SetSort(a.Sort) }),

		// Profiles
		"lookupProfile": bind(func(a idArgs) error {
			if err := requireID(a.ID); err != nil {
				return err
			}
			f.AuthorProfile(a.ID)
			return nil
		}),
	}
}
