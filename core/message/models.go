package message

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	BoxInbox = "inbox"
	BoxSent  = "sent"
)

type Message struct {
	ID          string    `db:"id" json:"id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Subject     string    `db:"subject" json:"subject"`
	Body        string    `db:"body" json:"body"`
	ReadAt      null.Time `db:"read_at" json:"read_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

type NewMessage struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
	Subject     string `json:"subject"`
	Body        string `json:"body" validate:"required"`
}

func (nm *NewMessage) clean() {
	nm.RecipientID = core.CleanString(nm.RecipientID)
	nm.Subject = core.CleanString(nm.Subject)
	nm.Body = core.CleanString(nm.Body)
}

type QueryFilter struct {
	Box    string `query:"box" validate:"omitempty,oneof=inbox sent"`
	Unread bool   `query:"unread"`
	With   string `query:"with"` // the other party of a conversation

	// set by the service
	UserID string `query:"-"`
}
