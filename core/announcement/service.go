package announcement

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

var ErrNotFound = core.NewNotFoundError("announcement")

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncement(ctx context.Context, id string) (Announcement, error)
		// QueryAnnouncements returns pinned announcements first, then the most recent.
		// Filter.Audience keeps announcements addressed to everyone or to one of its roles.
		QueryAnnouncements(ctx context.Context, filter *QueryFilter) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string) error
	}

	Service struct {
		repo      Repository
		publisher core.Publisher
		validate  *validator.Validate
		now       func() time.Time
	}
)

func NewService(repo Repository, publisher core.Publisher, validate *validator.Validate) *Service {
	return &Service{repo: repo, publisher: publisher, validate: validate, now: time.Now}
}

func canPublish(actor user.User) bool {
	return actor.IsAdmin() || actor.IsTeacher()
}

func (svc *Service) Create(ctx context.Context, actor user.User, na NewAnnouncement) (Announcement, error) {
	if !canPublish(actor) {
		return Announcement{}, core.ErrPermissionDenied
	}
	na.clean()
	if err := svc.validate.Struct(na); err != nil {
		return Announcement{}, err
	}

	now := svc.now().UTC()
	a := Announcement{
		Title:       na.Title,
		Body:        na.Body,
		Audience:    na.Audience,
		Pinned:      na.Pinned,
		AuthorID:    null.StringFrom(actor.ID),
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.Audience == nil {
		a.Audience = []string{}
	}
	if na.PublishedAt != nil && !na.PublishedAt.IsZero() {
		a.PublishedAt = na.PublishedAt.UTC()
	}
	if na.ExpiresAt != nil && !na.ExpiresAt.IsZero() {
		if na.ExpiresAt.Before(a.PublishedAt) {
			return Announcement{}, core.NewFieldError("expires_at", "expiry must come after publication")
		}
		a.ExpiresAt = null.TimeFrom(na.ExpiresAt.UTC())
	}

	a, err := svc.repo.CreateAnnouncement(ctx, a)
	if err != nil {
		return Announcement{}, err
	}
	svc.publisher.Publish(core.Event{Topic: core.TopicAnnouncements, Action: core.ActionInsert, ID: a.ID})
	return a, nil
}

// Query lists the live announcements addressed to `actor`.
// Admins see everything and may include expired or scheduled ones.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Announcement, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Search = core.CleanString(filter.Search)
	filter.Now = svc.now().UTC()
	if !actor.IsAdmin() {
		filter.IncludeExpired = false
		filter.Audience = actor.Roles
		if len(filter.Audience) == 0 {
			filter.Audience = []string{}
		}
	}
	return svc.repo.QueryAnnouncements(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Announcement, error) {
	a, err := svc.repo.GetAnnouncement(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if !actor.InAudience(a.Audience) {
		return Announcement{}, ErrNotFound
	}
	return a, nil
}

func (svc *Service) editable(ctx context.Context, actor user.User, id string) (Announcement, error) {
	a, err := svc.repo.GetAnnouncement(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if !(actor.IsAdmin() || (canPublish(actor) && a.AuthorID.String == actor.ID)) {
		return Announcement{}, core.ErrPermissionDenied
	}
	return a, nil
}

func (svc *Service) Update(ctx context.Context, actor user.User, id string, ua UpdateAnnouncement) (Announcement, error) {
	a, err := svc.editable(ctx, actor, id)
	if err != nil {
		return Announcement{}, err
	}
	if err = svc.validate.Struct(ua); err != nil {
		return Announcement{}, err
	}
	ua.apply(&a)
	a.UpdatedAt = svc.now().UTC()

	if a, err = svc.repo.UpdateAnnouncement(ctx, a); err != nil {
		return Announcement{}, err
	}
	svc.publisher.Publish(core.Event{Topic: core.TopicAnnouncements, Action: core.ActionUpdate, ID: a.ID})
	return a, nil
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if _, err := svc.editable(ctx, actor, id); err != nil {
		return err
	}
	if err := svc.repo.DeleteAnnouncement(ctx, id); err != nil {
		return err
	}
	svc.publisher.Publish(core.Event{Topic: core.TopicAnnouncements, Action: core.ActionDelete, ID: id})
	return nil
}
