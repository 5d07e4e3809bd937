package announcement

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

type Announcement struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Body        string         `db:"body" json:"body"`
	Audience    pq.StringArray `db:"audience" json:"audience"`
	Pinned      bool           `db:"pinned" json:"pinned"`
	AuthorID    null.String    `db:"author_id" json:"author_id"`
	PublishedAt time.Time      `db:"published_at" json:"published_at"`
	ExpiresAt   null.Time      `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type NewAnnouncement struct {
	Title       string     `json:"title" validate:"required"`
	Body        string     `json:"body" validate:"required"`
	Audience    []string   `json:"audience" validate:"omitempty,allroles"`
	Pinned      bool       `json:"pinned"`
	PublishedAt *time.Time `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (na *NewAnnouncement) clean() {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	na.Audience = core.CleanStrings(na.Audience, true /* lower */)
}

type UpdateAnnouncement struct {
	Title     *string    `json:"title"`
	Body      *string    `json:"body"`
	Audience  []string   `json:"audience" validate:"omitempty,allroles"`
	Pinned    *bool      `json:"pinned"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (ua UpdateAnnouncement) apply(a *Announcement) {
	if ua.Title != nil {
		if title := core.CleanString(*ua.Title); title != "" {
			a.Title = title
		}
	}
	if ua.Body != nil {
		if body := core.CleanString(*ua.Body); body != "" {
			a.Body = body
		}
	}
	if ua.Audience != nil {
		a.Audience = core.CleanStrings(ua.Audience, true /* lower */)
	}
	if ua.Pinned != nil {
		a.Pinned = *ua.Pinned
	}
	if ua.ExpiresAt != nil {
		a.ExpiresAt = null.NewTime(ua.ExpiresAt.UTC(), !ua.ExpiresAt.IsZero())
	}
}

type QueryFilter struct {
	Search         string `query:"search"`
	IncludeExpired bool   `query:"include_expired"`

	// set by the service
	Audience []string  `query:"-"`
	Now      time.Time `query:"-"`
}
