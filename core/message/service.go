package message

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrNotFound         = core.NewNotFoundError("message")
	ErrMessageYourself  = core.NewFieldError("recipient_id", "you cannot message yourself")
	ErrUnknownRecipient = core.NewFieldError("recipient_id", "unknown recipient")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, m Message) (Message, error)
		GetMessage(ctx context.Context, id string) (Message, error)
		// QueryMessages returns the messages sent or received by Filter.UserID, newest first.
		QueryMessages(ctx context.Context, filter *QueryFilter) ([]Message, error)
		CountUnread(ctx context.Context, recipientID string) (int, error)
		MarkRead(ctx context.Context, id string, at time.Time) (Message, error)
		DeleteMessage(ctx context.Context, id string) error
	}

	// Directory looks up profiles.
	Directory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo      Repository
		users     Directory
		publisher core.Publisher
		validate  *validator.Validate
		now       func() time.Time
	}
)

func NewService(repo Repository, users Directory, publisher core.Publisher, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, publisher: publisher, validate: validate, now: time.Now}
}

func (svc *Service) publish(action string, m Message) {
	svc.publisher.Publish(core.Event{
		Topic:   core.TopicMessages,
		Action:  action,
		ID:      m.ID,
		UserIDs: []string{m.SenderID, m.RecipientID},
	})
}

func (svc *Service) Send(ctx context.Context, actor user.User, nm NewMessage) (Message, error) {
	nm.clean()
	if err := svc.validate.Struct(nm); err != nil {
		return Message{}, err
	}
	if nm.RecipientID == actor.ID {
		return Message{}, ErrMessageYourself
	}
	recipient, err := svc.users.GetByID(ctx, nm.RecipientID)
	if err != nil {
		if core.IsNotFound(err) {
			return Message{}, ErrUnknownRecipient
		}
		return Message{}, errors.Wrap(err, "finding recipient")
	}
	if !recipient.IsActive {
		return Message{}, ErrUnknownRecipient
	}

	m, err := svc.repo.CreateMessage(ctx, Message{
		SenderID:    actor.ID,
		RecipientID: recipient.ID,
		Subject:     nm.Subject,
		Body:        nm.Body,
		CreatedAt:   svc.now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}
	svc.publish(core.ActionInsert, m)
	return m, nil
}

// Query lists the actor's own conversations.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Message, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Box = core.CleanString(filter.Box, true /* lower */)
	filter.With = core.CleanString(filter.With)
	if err := svc.validate.Struct(filter); err != nil {
		return nil, err
	}
	filter.UserID = actor.ID
	return svc.repo.QueryMessages(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Message, error) {
	m, err := svc.repo.GetMessage(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if !m.Involves(actor.ID) {
		return Message{}, ErrNotFound
	}
	return m, nil
}

func (svc *Service) UnreadCount(ctx context.Context, actor user.User) (int, error) {
	return svc.repo.CountUnread(ctx, actor.ID)
}

// MarkRead sets the read receipt of a received message. Marking twice keeps the first receipt.
func (svc *Service) MarkRead(ctx context.Context, actor user.User, id string) (Message, error) {
	m, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Message{}, err
	}
	if m.RecipientID != actor.ID {
		return Message{}, core.ErrPermissionDenied
	}
	if m.ReadAt.Valid {
		return m, nil
	}

	if m, err = svc.repo.MarkRead(ctx, id, svc.now().UTC()); err != nil {
		return Message{}, err
	}
	svc.publish(core.ActionUpdate, m)
	return m, nil
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	m, err := svc.repo.GetMessage(ctx, id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || m.Involves(actor.ID)) {
		return ErrNotFound
	}
	if err = svc.repo.DeleteMessage(ctx, id); err != nil {
		return err
	}
	svc.publish(core.ActionDelete, m)
	return nil
}
