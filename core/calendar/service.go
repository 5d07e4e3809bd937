package calendar

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrNotFound  = core.NewNotFoundError("calendar event")
	ErrEndsEarly = core.NewFieldError("ends_at", "event cannot end before it starts")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, e Event) (Event, error)
		GetEvent(ctx context.Context, id string) (Event, error)
		// QueryEvents returns the events overlapping the filter's range, by start time.
		QueryEvents(ctx context.Context, filter *QueryFilter) ([]Event, error)
		UpdateEvent(ctx context.Context, e Event) (Event, error)
		DeleteEvent(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate, now: time.Now}
}

func canPlan(actor user.User) bool {
	return actor.IsAdmin() || actor.IsTeacher()
}

func (svc *Service) validateData(ed *EventData) error {
	ed.clean()
	if err := svc.validate.Struct(ed); err != nil {
		return err
	}
	if ed.EndsAt.Before(ed.StartsAt) {
		return ErrEndsEarly
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, actor user.User, ed EventData) (Event, error) {
	if !canPlan(actor) {
		return Event{}, core.ErrPermissionDenied
	}
	if err := svc.validateData(&ed); err != nil {
		return Event{}, err
	}

	now := svc.now().UTC()
	e := Event{CreatedBy: null.StringFrom(actor.ID), CreatedAt: now, UpdatedAt: now}
	ed.apply(&e)
	return svc.repo.CreateEvent(ctx, e)
}

// Query lists the events of a period visible to the actor. The period defaults to the current month.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Event, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if filter.From.IsZero() {
		y, m, _ := svc.now().UTC().Date()
		filter.From = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
	if filter.To.IsZero() {
		filter.To = filter.From.AddDate(0, 1, 0)
	}
	if !actor.IsAdmin() {
		filter.Audience = actor.Roles
		if filter.Audience == nil {
			filter.Audience = []string{}
		}
	}
	return svc.repo.QueryEvents(ctx, filter)
}

func (svc *Service) editable(ctx context.Context, actor user.User, id string) (Event, error) {
	e, err := svc.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if !(actor.IsAdmin() || (canPlan(actor) && e.CreatedBy.String == actor.ID)) {
		return Event{}, core.ErrPermissionDenied
	}
	return e, nil
}

func (svc *Service) Update(ctx context.Context, actor user.User, id string, ed EventData) (Event, error) {
	e, err := svc.editable(ctx, actor, id)
	if err != nil {
		return Event{}, err
	}
	if err = svc.validateData(&ed); err != nil {
		return Event{}, err
	}
	ed.apply(&e)
	e.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateEvent(ctx, e)
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if _, err := svc.editable(ctx, actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteEvent(ctx, id)
}
