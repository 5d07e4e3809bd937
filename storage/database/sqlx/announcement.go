package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/yuva/core/announcement"
)

const announcementTable = "announcement"

var announcementColumns = columns{
	"id", "title", "body", "audience", "pinned", "author_id", "published_at", "expires_at", "created_at", "updated_at",
}

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) announcement.Repository {
	return &announcementRepository{db: db}
}

// audienceWhere keeps rows addressed to everyone or to a role prefix of one of `roles`.
func audienceWhere(w *where, roles []string) {
	if roles == nil {
		return
	}
	w.and(`(cardinality(audience) = 0 OR EXISTS (
		SELECT 1 FROM UNNEST(audience) a, UNNEST(?::text[]) r WHERE r LIKE a || '%'))`, pq.Array(roles))
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	a.ID = newID()
	if a.Audience == nil {
		a.Audience = pq.StringArray{}
	}
	if err := insertRow(ctx, repo.db, announcementColumns, announcementTable, a); err != nil {
		return announcement.Announcement{}, err
	}
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, id string) (announcement.Announcement, error) {
	return getByID[announcement.Announcement](ctx, repo.db, announcementColumns, announcementTable, id, announcement.ErrNotFound)
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context, filter *announcement.QueryFilter) ([]announcement.Announcement, error) {
	w := new(where)
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.and("(title ILIKE ? OR body ILIKE ?)", val, val)
		}
		if !filter.IncludeExpired && !filter.Now.IsZero() {
			w.and("published_at <= ?", filter.Now)
			w.and("(expires_at IS NULL OR expires_at > ?)", filter.Now)
		}
		audienceWhere(w, filter.Audience)
	}
	return selectWhere[announcement.Announcement](ctx, repo.db, w, announcementColumns.selectFrom(announcementTable),
		"ORDER BY pinned DESC, published_at DESC", "querying announcements")
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	if a.Audience == nil {
		a.Audience = pq.StringArray{}
	}
	if err := updateRow(ctx, repo.db, announcementColumns, announcementTable, a, announcement.ErrNotFound); err != nil {
		return announcement.Announcement{}, err
	}
	return a, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, announcementTable, id, announcement.ErrNotFound)
}
