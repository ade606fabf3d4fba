package persist

import (
	"encoding/json"
	"fmt"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
)

// SchemaVersion is the version of the snapshot layout. A stored record with
// any other version is ignored on load.
const SchemaVersion uint8 = 1

// DefaultKey is the logical storage key the snapshot lives under.
const DefaultKey = "app-storage"

// Snapshot is the durable subset of store state. Its JSON form has exactly
// these eight top-level fields; everything else in the store is ephemeral.
type Snapshot struct {
	User          *domain.User          `json:"user"`
	ContentMode   domain.ContentMode    `json:"contentMode"`
	CreatedItems  []domain.ContentItem  `json:"createdItems"`
	BlogPosts     []domain.BlogPost     `json:"blogPosts"`
	CartItems     []domain.CartItem     `json:"cartItems"`
	LikedItems    []string              `json:"likedItems"`
	Collections   []domain.Collection   `json:"collections"`
	Notifications []domain.Notification `json:"notifications"`
}

// DefaultSnapshot is what a fresh install starts from.
func DefaultSnapshot() Snapshot {
	return Snapshot{ContentMode: domain.ModeCreative}.Normalize()
}

// Normalize replaces absent fields with their empty defaults.
func (s Snapshot) Normalize() Snapshot {
	if !s.ContentMode.Valid() {
		s.ContentMode = domain.ModeCreative
	}
	if s.CreatedItems == nil {
		s.CreatedItems = []domain.ContentItem{}
	}
	if s.BlogPosts == nil {
		s.BlogPosts = []domain.BlogPost{}
	}
	if s.CartItems == nil {
		s.CartItems = []domain.CartItem{}
	}
	if s.LikedItems == nil {
		s.LikedItems = []string{}
	}
	if s.Collections == nil {
		s.Collections = []domain.Collection{}
	}
	if s.Notifications == nil {
		s.Notifications = []domain.Notification{}
	}
	return s
}

// Encode serializes a snapshot.
func Encode(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s.Normalize())
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot. Unknown fields are ignored.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s.Normalize(), nil
}
