package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlogPost_Excerpt(t *testing.T) {
	post := BlogPost{HTML: "<h1>Hola</h1><p>Un <strong>gran</strong> <a href=\"https://x.dev\">proyecto</a> nuevo.</p>"}

	assert.Equal(t, "Hola Un gran proyecto nuevo.", post.Excerpt(0))
	assert.Equal(t, "Hola Un…", post.Excerpt(7))
}

func TestBlogPost_ExcerptPlainText(t *testing.T) {
	post := BlogPost{HTML: "  plain   text body "}
	assert.Equal(t, "plain text body", post.Excerpt(100))
}

func TestCartItemFrom(t *testing.T) {
	item := ContentItem{ID: "a1", Title: "Icon pack", Kind: KindAsset, Price: 12.5, Likes: 3}
	assert.Equal(t, CartItem{ID: "a1", Title: "Icon pack", Kind: KindAsset, Price: 12.5}, CartItemFrom(item))
}

func TestUnreadCount(t *testing.T) {
	assert.Equal(t, 2, UnreadCount([]Notification{{Read: false}, {Read: true}, {Read: false}}))
}
