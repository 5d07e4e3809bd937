package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/yuva/core/announcement"
)

type announcementRepository struct {
	db *table[announcement.Announcement]
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcements}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	a.ID = newID()
	repo.db.insert(a.ID, a)
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(_ context.Context, id string) (announcement.Announcement, error) {
	if a, ok := repo.db.get(id); ok {
		return a, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(_ context.Context, filter *announcement.QueryFilter) ([]announcement.Announcement, error) {
	rows := repo.db.filter(func(a announcement.Announcement) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !(strings.Contains(strings.ToLower(a.Title), s) || strings.Contains(strings.ToLower(a.Body), s)) {
				return false
			}
		}
		if !filter.IncludeExpired && !filter.Now.IsZero() {
			if a.PublishedAt.After(filter.Now) || (a.ExpiresAt.Valid && !a.ExpiresAt.Time.After(filter.Now)) {
				return false
			}
		}
		return audienceMatch(a.Audience, filter.Audience)
	})
	return sorted(rows, func(a, b announcement.Announcement) bool {
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		return a.PublishedAt.After(b.PublishedAt)
	}), nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	if !repo.db.update(a.ID, a) {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return a, nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return announcement.ErrNotFound
	}
	return nil
}
