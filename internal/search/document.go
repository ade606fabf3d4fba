// Package search keeps an in-memory full-text index over the content items
// currently loaded into the feed, so the search box can filter them
// without a backend round trip.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
)

// Document is the indexed form of a content item.
type Document struct {
	ID        string
	Kind      string
	Title     string
	Author    string
	Tags      []string
	Likes     int
	CreatedAt int64
}

// DocumentFrom converts a content item.
func DocumentFrom(item domain.ContentItem) Document {
	tags := make([]string, 0, len(item.Tags))
	for _, t := range item.Tags {
		if f := Fold(t); f != "" {
			tags = append(tags, f)
		}
	}
	return Document{
		ID:        item.ID,
		Kind:      string(item.Kind),
		Title:     item.Title,
		Author:    item.AuthorID,
		Tags:      tags,
		Likes:     item.Likes,
		CreatedAt: item.CreatedAt.Unix(),
	}
}

// ToMap converts the document to the field names the mapping expects.
// Titles are folded so "Diseño" and "diseno" match.
func (d Document) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"kind":       d.Kind,
		"title":      Fold(d.Title),
		"title_raw":  d.Title,
		"author":     d.Author,
		"tags":       d.Tags,
		"likes":      float64(d.Likes),
		"created_at": float64(d.CreatedAt),
	}
}

// Fold lowercases s and strips combining marks.
func Fold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.TrimSpace(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
