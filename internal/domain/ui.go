// Package domain holds the entities and pure rules of the Vitrina client:
// navigation, content, users, collections and notifications.
package domain

// Module is a top-level section of the platform.
type Module string

const (
	ModuleHome      Module = "home"
	ModulePortfolio Module = "portfolio"
	ModuleCourses   Module = "courses"
	ModuleAssets    Module = "assets"
	ModuleBlog      Module = "blog"
	ModuleForum     Module = "forum"
	ModuleCommunity Module = "community"
	ModuleProfile   Module = "profile"
	ModuleCart      Module = "cart"
	ModuleCreate    Module = "create"
	ModuleAuth      Module = "auth"
	ModuleSettings  Module = "settings"
)

// ContentMode is the audience the feed is tuned for. Modes are mutually exclusive.
type ContentMode string

const (
	ModeCreative ContentMode = "creative"
	ModeDev      ContentMode = "dev"
)

// Valid reports whether m is a known content mode.
func (m ContentMode) Valid() bool {
	return m == ModeCreative || m == ModeDev
}

// Label is the human name used in toasts.
func (m ContentMode) Label() string {
	switch m {
	case ModeDev:
		return "Dev"
	case ModeCreative:
		return "Creative"
	default:
		return string(m)
	}
}

// CreateMode is what the user is currently composing.
type CreateMode string

const (
	CreateNone    CreateMode = ""
	CreateProject CreateMode = "project"
	CreateArticle CreateMode = "article"
	CreateCourse  CreateMode = "course"
	CreateAsset   CreateMode = "asset"
	CreatePost    CreateMode = "post"
)

// Valid reports whether c names something that can be composed.
func (c CreateMode) Valid() bool {
	switch c {
	case CreateProject, CreateArticle, CreateCourse, CreateAsset, CreatePost:
		return true
	default:
		return false
	}
}

// Category is the active feed filter. Categories outside the known set are
// free-form tags.
type Category string

const (
	CategoryHome      Category = "Home"
	CategoryTrending  Category = "Tendencias"
	CategoryRecent    Category = "Recientes"
	CategoryOldest    Category = "Antiguos"
	CategoryPopular   Category = "Populares"
	DefaultCategory            = CategoryHome
	DefaultSortOption          = SortRecent
)

// SortOption orders the feed.
type SortOption string

const (
	SortRecent  SortOption = "recent"
	SortOldest  SortOption = "oldest"
	SortPopular SortOption = "popular"
)

// Valid reports whether s is a known sort option.
func (s SortOption) Valid() bool {
	return s == SortRecent || s == SortOldest || s == SortPopular
}

// SortForCategory derives the sort option implied by a category. The
// coupling is one-directional: categories drive sort, never the reverse.
// ok is false for categories that do not imply a sort.
func SortForCategory(c Category) (sort SortOption, ok bool) {
	switch c {
	case CategoryHome, CategoryRecent:
		return SortRecent, true
	case CategoryTrending, CategoryPopular:
		return SortPopular, true
	case CategoryOldest:
		return SortOldest, true
	default:
		return "", false
	}
}

// Severity tags a toast.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Toast is the single visible notification slot.
type Toast struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Modal names a modal dialog the UI can show.
type Modal string

const (
	ModalSave             Modal = "save"
	ModalAuth             Modal = "auth"
	ModalCreateCollection Modal = "createCollection"
)
