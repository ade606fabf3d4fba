package domain

// FeedQuery describes one page request against the content feed.
type FeedQuery struct {
	Category Category    `json:"category"`
	Sort     SortOption  `json:"sort"`
	Mode     ContentMode `json:"mode"`
	Cursor   string      `json:"cursor,omitempty"`
	Limit    int         `json:"limit"`
}

// SameStream reports whether two queries address the same ordered stream,
// ignoring the cursor.
func (q FeedQuery) SameStream(other FeedQuery) bool {
	return q.Category == other.Category && q.Sort == other.Sort && q.Mode == other.Mode
}

// Page is one page of feed results.
type Page struct {
	Items      []ContentItem `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
	HasMore    bool          `json:"hasMore"`
}
