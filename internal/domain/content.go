package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ContentKind identifies what a content item is.
type ContentKind string

const (
	KindProject ContentKind = "project"
	KindArticle ContentKind = "article"
	KindCourse  ContentKind = "course"
	KindAsset   ContentKind = "asset"
	KindPost    ContentKind = "post"
)

// ContentItem is a card in a feed, a created item, or a marketplace listing.
type ContentItem struct {
	CreatedAt time.Time   `json:"createdAt"`
	ID        string      `json:"id" validate:"required"`
	Kind      ContentKind `json:"kind" validate:"required,oneof=project article course asset post"`
	Title     string      `json:"title" validate:"required,max=140"`
	Image     string      `json:"image,omitempty"`
	AuthorID  string      `json:"authorId,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	Price     float64     `json:"price,omitempty" validate:"gte=0"`
	Likes     int         `json:"likes"`
}

// CartItem is an entry in the shopping cart. Cart entries are keyed by ID.
type CartItem struct {
	ID    string      `json:"id" validate:"required"`
	Title string      `json:"title" validate:"required"`
	Image string      `json:"image,omitempty"`
	Kind  ContentKind `json:"kind,omitempty"`
	Price float64     `json:"price" validate:"gte=0"`
}

// CartItemFrom projects a content item into a cart entry.
func CartItemFrom(item ContentItem) CartItem {
	return CartItem{ID: item.ID, Title: item.Title, Image: item.Image, Kind: item.Kind, Price: item.Price}
}

// BlogPost is an article authored by the signed-in user.
type BlogPost struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id" validate:"required"`
	Title     string    `json:"title" validate:"required,max=140"`
	HTML      string    `json:"html"`
	Cover     string    `json:"cover,omitempty"`
}

var (
	htmlTagPattern    = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|img|code|pre)[\s>/]`)
	markdownNoise     = regexp.MustCompile("[#*_`>\\[\\]]+|\\(https?://[^)]*\\)")
	whitespaceRunning = regexp.MustCompile(`\s+`)
)

// Excerpt renders the post body as plain text truncated to at most n runes.
func (p BlogPost) Excerpt(n int) string {
	text := p.HTML
	if htmlTagPattern.MatchString(strings.ToLower(text)) {
		if md, err := htmltomarkdown.ConvertString(text); err == nil {
			text = md
		}
	}
	text = markdownNoise.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespaceRunning.ReplaceAllString(text, " "))

	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
