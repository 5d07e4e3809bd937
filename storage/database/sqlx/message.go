package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/message"
)

const messageTable = "message"

var messageColumns = columns{"id", "sender_id", "recipient_id", "subject", "body", "read_at", "created_at"}

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) message.Repository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	m.ID = newID()
	if err := insertRow(ctx, repo.db, messageColumns, messageTable, m); err != nil {
		return message.Message{}, err
	}
	return m, nil
}

func (repo *messageRepository) GetMessage(ctx context.Context, id string) (message.Message, error) {
	return getByID[message.Message](ctx, repo.db, messageColumns, messageTable, id, message.ErrNotFound)
}

func (repo *messageRepository) QueryMessages(ctx context.Context, filter *message.QueryFilter) ([]message.Message, error) {
	w := new(where)
	switch filter.Box {
	case message.BoxInbox:
		w.and("recipient_id::text = ?", filter.UserID)
	case message.BoxSent:
		w.and("sender_id::text = ?", filter.UserID)
	default:
		w.and("(sender_id::text = ? OR recipient_id::text = ?)", filter.UserID, filter.UserID)
	}
	if filter.Unread {
		w.and("read_at IS NULL AND recipient_id::text = ?", filter.UserID)
	}
	if filter.With != "" {
		w.and("(sender_id::text = ? OR recipient_id::text = ?)", filter.With, filter.With)
	}
	return selectWhere[message.Message](ctx, repo.db, w, messageColumns.selectFrom(messageTable),
		"ORDER BY created_at DESC", "querying messages")
}

func (repo *messageRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM message WHERE recipient_id::text = $1 AND read_at IS NULL", recipientID)
	if err != nil {
		return 0, errors.Wrap(err, "counting unread messages")
	}
	return n, nil
}

// MarkRead sets read_at once; reading an already read message keeps the first timestamp.
func (repo *messageRepository) MarkRead(ctx context.Context, id string, at time.Time) (message.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return message.Message{}, message.ErrNotFound
	}
	var m message.Message
	err := repo.db.GetContext(ctx, &m,
		"UPDATE message SET read_at = COALESCE(read_at, $2) WHERE id = $1 RETURNING "+messageColumns.String(), id, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.Message{}, message.ErrNotFound
		}
		return message.Message{}, errors.Wrap(err, "marking message read")
	}
	return m, nil
}

func (repo *messageRepository) DeleteMessage(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, messageTable, id, message.ErrNotFound)
}
