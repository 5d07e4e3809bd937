package inmemdb

import (
	"context"

	"github.com/trezcool/yuva/core/feed"
)

type feedRepository struct {
	db *table[feed.Post]
}

var _ feed.Repository = (*feedRepository)(nil) // interface compliance check

func NewFeedRepository(db *DB) feed.Repository {
	return &feedRepository{db: db.feedPosts}
}

func (repo *feedRepository) UpsertPosts(_ context.Context, posts []feed.Post) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	byExternalID := make(map[string]string)
	for _, p := range repo.db.filterLocked(nil) {
		byExternalID[p.ExternalID] = p.ID
	}

	var created int
	for _, p := range posts {
		if id, ok := byExternalID[p.ExternalID]; ok {
			p.ID = id
		} else {
			p.ID = newID()
			byExternalID[p.ExternalID] = p.ID
			created++
		}
		repo.db.insertLocked(p.ID, p)
	}
	return created, nil
}

func (repo *feedRepository) QueryPosts(_ context.Context, filter *feed.QueryFilter) ([]feed.Post, error) {
	rows := sorted(repo.db.filter(nil), func(a, b feed.Post) bool { return a.PostedAt.After(b.PostedAt) })
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

func (repo *feedRepository) DeletePost(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return feed.ErrNotFound
	}
	return nil
}
