package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Role represents the user's role on the platform.
type Role string

const (
	// RoleCreator publishes portfolios, courses and assets.
	RoleCreator Role = "creator"
	// RoleMember browses, buys and collects.
	RoleMember Role = "member"
	// RoleAdmin moderates the platform.
	RoleAdmin Role = "admin"
)

// UserStats holds the public counters shown on a profile.
type UserStats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
	Projects  int `json:"projects"`
	Likes     int `json:"likes"`
}

// User is the authenticated session identity. At most one exists in the
// store at a time; nil means "not authenticated".
type User struct {
	CreatedAt   time.Time         `json:"createdAt"`
	Social      map[string]string `json:"social,omitempty"`
	ID          string            `json:"id" validate:"required"`
	DisplayName string            `json:"displayName" validate:"required,max=80"`
	Avatar      string            `json:"avatar,omitempty"`
	Role        Role              `json:"role"`
	Location    string            `json:"location,omitempty"`
	Bio         string            `json:"bio,omitempty" validate:"max=500"`
	Skills      []string          `json:"skills,omitempty"`
	Stats       UserStats         `json:"stats"`
	IsAdmin     bool              `json:"isAdmin"`
}

// Clone returns a deep copy so callers can patch without aliasing store state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Skills != nil {
		c.Skills = append([]string(nil), u.Skills...)
	}
	if u.Social != nil {
		c.Social = make(map[string]string, len(u.Social))
		for k, v := range u.Social {
			c.Social[k] = v
		}
	}
	return &c
}

// ProfilePatch carries an explicit profile update. Nil fields are left untouched.
type ProfilePatch struct {
	DisplayName *string           `json:"displayName,omitempty" validate:"omitempty,min=1,max=80"`
	Avatar      *string           `json:"avatar,omitempty"`
	Location    *string           `json:"location,omitempty"`
	Bio         *string           `json:"bio,omitempty" validate:"omitempty,max=500"`
	Skills      []string          `json:"skills,omitempty"`
	Social      map[string]string `json:"social,omitempty"`
}

// Apply returns a patched copy of u.
func (p ProfilePatch) Apply(u *User) *User {
	next := u.Clone()
	if p.DisplayName != nil {
		next.DisplayName = *p.DisplayName
	}
	if p.Avatar != nil {
		next.Avatar = *p.Avatar
	}
	if p.Location != nil {
		next.Location = *p.Location
	}
	if p.Bio != nil {
		next.Bio = *p.Bio
	}
	if p.Skills != nil {
		next.Skills = NormalizeSkills(p.Skills)
	}
	if p.Social != nil {
		next.Social = make(map[string]string, len(p.Social))
		for k, v := range p.Social {
			if v = strings.TrimSpace(v); v != "" {
				next.Social[k] = v
			}
		}
	}
	return next
}

// NormalizeSkills trims skills, drops blanks and removes duplicates that
// differ only in case or accents. The first spelling wins and order is kept.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := foldKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// foldKey lowercases and strips combining marks: "Diseño" and "diseno" fold together.
func foldKey(s string) string {
	decomposed := norm.NFKD.String(strings.ToLower(s))
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, decomposed)
}
