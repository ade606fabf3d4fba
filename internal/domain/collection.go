package domain

import (
	"slices"
	"time"
)

// MaxThumbnails is the number of preview images kept on a collection.
const MaxThumbnails = 4

// SaveKind is the subset of content kinds that can be saved to a collection.
type SaveKind string

const (
	SaveProject SaveKind = "project"
	SaveArticle SaveKind = "article"
)

// SaveItem is the sanitized record sent to the backend when saving to a collection.
type SaveItem struct {
	ID    string   `json:"id" validate:"required"`
	Type  SaveKind `json:"type" validate:"required,oneof=project article"`
	Image string   `json:"image"`
}

// SaveItemFrom sanitizes a content item. Anything that is not an article is saved as a project.
func SaveItemFrom(item ContentItem) SaveItem {
	kind := SaveProject
	if item.Kind == KindArticle || item.Kind == KindPost {
		kind = SaveArticle
	}
	return SaveItem{ID: item.ID, Type: kind, Image: item.Image}
}

// CollectionItem is one saved entry inside a collection.
type CollectionItem struct {
	AddedAt time.Time `json:"addedAt"`
	ID      string    `json:"id"`
	Type    SaveKind  `json:"type"`
	Image   string    `json:"image"`
}

// Collection is a user-curated board. ItemCount and Thumbnails are
// client-side projections of Items and must stay consistent with it.
type Collection struct {
	CreatedAt  time.Time        `json:"createdAt"`
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Thumbnails []string         `json:"thumbnails"`
	Items      []CollectionItem `json:"items"`
	ItemCount  int              `json:"itemCount"`
	IsPrivate  bool             `json:"isPrivate"`
}

// CollectionDraft is the input for creating a collection.
type CollectionDraft struct {
	Title     string `json:"title" validate:"notblank,max=80"`
	IsPrivate bool   `json:"isPrivate"`
}

// WithItem returns a copy of c with item appended: count incremented,
// thumbnail prepended and previews capped at MaxThumbnails.
func (c Collection) WithItem(item SaveItem, at time.Time) Collection {
	next := c
	next.Items = append(slices.Clone(c.Items), CollectionItem{
		AddedAt: at,
		ID:      item.ID,
		Type:    item.Type,
		Image:   item.Image,
	})
	next.ItemCount = c.ItemCount + 1

	thumbs := make([]string, 0, MaxThumbnails)
	if item.Image != "" {
		thumbs = append(thumbs, item.Image)
	}
	for _, t := range c.Thumbnails {
		if len(thumbs) == MaxThumbnails {
			break
		}
		thumbs = append(thumbs, t)
	}
	next.Thumbnails = thumbs
	return next
}

// Recount rebuilds ItemCount and Thumbnails from Items (newest first).
// Used when collections arrive from the backend.
func (c Collection) Recount() Collection {
	next := c
	next.ItemCount = len(c.Items)
	thumbs := make([]string, 0, MaxThumbnails)
	for i := len(c.Items) - 1; i >= 0 && len(thumbs) < MaxThumbnails; i-- {
		if img := c.Items[i].Image; img != "" {
			thumbs = append(thumbs, img)
		}
	}
	next.Thumbnails = thumbs
	return next
}

// Contains reports whether an item with the given ID is already saved.
func (c Collection) Contains(itemID string) bool {
	return slices.ContainsFunc(c.Items, func(it CollectionItem) bool { return it.ID == itemID })
}
