package inmemdb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core/message"
)

type messageRepository struct {
	db *table[message.Message]
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db.messages}
}

func (repo *messageRepository) CreateMessage(_ context.Context, m message.Message) (message.Message, error) {
	m.ID = newID()
	repo.db.insert(m.ID, m)
	return m, nil
}

func (repo *messageRepository) GetMessage(_ context.Context, id string) (message.Message, error) {
	if m, ok := repo.db.get(id); ok {
		return m, nil
	}
	return message.Message{}, message.ErrNotFound
}

func (repo *messageRepository) QueryMessages(_ context.Context, filter *message.QueryFilter) ([]message.Message, error) {
	rows := repo.db.filter(func(m message.Message) bool {
		switch filter.Box {
		case message.BoxInbox:
			if m.RecipientID != filter.UserID {
				return false
			}
		case message.BoxSent:
			if m.SenderID != filter.UserID {
				return false
			}
		default:
			if !m.Involves(filter.UserID) {
				return false
			}
		}
		if filter.Unread && (m.ReadAt.Valid || m.RecipientID != filter.UserID) {
			return false
		}
		if filter.With != "" && !m.Involves(filter.With) {
			return false
		}
		return true
	})
	return sorted(rows, func(a, b message.Message) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (repo *messageRepository) CountUnread(_ context.Context, recipientID string) (int, error) {
	rows := repo.db.filter(func(m message.Message) bool { return m.RecipientID == recipientID && !m.ReadAt.Valid })
	return len(rows), nil
}

func (repo *messageRepository) MarkRead(_ context.Context, id string, at time.Time) (message.Message, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m, ok := repo.db.rows[id]
	if !ok {
		return message.Message{}, message.ErrNotFound
	}
	if !m.ReadAt.Valid {
		m.ReadAt = null.TimeFrom(at)
		repo.db.rows[id] = m
	}
	return m, nil
}

func (repo *messageRepository) DeleteMessage(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return message.ErrNotFound
	}
	return nil
}
