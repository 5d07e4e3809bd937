package feed

import "time"

// Post mirrors a post of the school's Instagram account.
type Post struct {
	ID         string    `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	Caption    string    `db:"caption" json:"caption"`
	MediaURL   string    `db:"media_url" json:"media_url"`
	Permalink  string    `db:"permalink" json:"permalink"`
	MediaType  string    `db:"media_type" json:"media_type"`
	PostedAt   time.Time `db:"posted_at" json:"posted_at"`
	SyncedAt   time.Time `db:"synced_at" json:"synced_at"`
}

type QueryFilter struct {
	Limit int `query:"limit"`
}
