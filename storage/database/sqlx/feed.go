package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/feed"
)

const feedTable = "feed_post"

var feedColumns = columns{
	"id", "external_id", "caption", "media_url", "permalink", "media_type", "posted_at", "synced_at",
}

type feedRepository struct {
	db *sqlx.DB
}

var _ feed.Repository = (*feedRepository)(nil) // interface compliance check

func NewFeedRepository(db *sqlx.DB) feed.Repository {
	return &feedRepository{db: db}
}

// UpsertPosts counts new posts with the `xmax = 0` trick: only freshly inserted rows have no xmax.
func (repo *feedRepository) UpsertPosts(ctx context.Context, posts []feed.Post) (created int, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareNamedContext(ctx, feedColumns.insert(feedTable)+`
		ON CONFLICT (external_id) DO UPDATE SET
			caption = EXCLUDED.caption, media_url = EXCLUDED.media_url, permalink = EXCLUDED.permalink,
			media_type = EXCLUDED.media_type, posted_at = EXCLUDED.posted_at, synced_at = EXCLUDED.synced_at
		RETURNING (xmax = 0) AS inserted`)
	if err != nil {
		return 0, errors.Wrap(err, "preparing post upsert")
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range posts {
		p.ID = newID()
		var inserted bool
		if err = stmt.GetContext(ctx, &inserted, p); err != nil {
			return 0, errors.Wrap(err, "upserting post")
		}
		if inserted {
			created++
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing posts")
	}
	return created, nil
}

func (repo *feedRepository) QueryPosts(ctx context.Context, filter *feed.QueryFilter) ([]feed.Post, error) {
	w := new(where)
	suffix := "ORDER BY posted_at DESC"
	if filter.Limit > 0 {
		suffix += " LIMIT ?"
		w.args = append(w.args, filter.Limit)
	}
	return selectWhere[feed.Post](ctx, repo.db, w, feedColumns.selectFrom(feedTable), suffix, "querying posts")
}

func (repo *feedRepository) DeletePost(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, feedTable, id, feed.ErrNotFound)
}
