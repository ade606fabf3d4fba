package domain

// AuthorProfile is the display projection of another user, used to render
// bylines without denormalizing names and avatars into every content item.
type AuthorProfile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
