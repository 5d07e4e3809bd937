package appointment

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrNotFound         = core.NewNotFoundError("appointment")
	ErrReminderNotFound = core.NewNotFoundError("reminder")
	ErrUnknownRecipient = core.NewFieldError("recipient_id", "unknown recipient")
	ErrSelfAppointment  = core.NewFieldError("recipient_id", "you cannot book an appointment with yourself")
	ErrInThePast        = core.NewFieldError("scheduled_at", "appointment must be scheduled in the future")
	ErrLateReminder     = core.NewFieldError("remind_at", "reminder must come before the appointment")
	ErrNotAParty        = core.NewFieldError("recipient_id", "reminders go to the parties of the appointment")
	ErrClosed           = core.NewFieldError("status", "appointment is closed")
)

type (
	Repository interface {
		CreateAppointment(ctx context.Context, a Appointment) (Appointment, error)
		GetAppointment(ctx context.Context, id string) (Appointment, error)
		// QueryAppointments returns the appointments of Filter.UserID (all when empty) by schedule.
		QueryAppointments(ctx context.Context, filter *QueryFilter) ([]Appointment, error)
		UpdateAppointment(ctx context.Context, a Appointment) (Appointment, error)
		DeleteAppointment(ctx context.Context, id string) error

		CreateReminder(ctx context.Context, r Reminder) (Reminder, error)
		QueryReminders(ctx context.Context, appointmentID string) ([]Reminder, error)
		// QueryDueReminders returns the unsent reminders whose RemindAt is not after `now`.
		QueryDueReminders(ctx context.Context, now time.Time) ([]Reminder, error)
		MarkReminderSent(ctx context.Context, id string, at time.Time) error
	}

	// Directory looks up profiles.
	Directory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo     Repository
		users    Directory
		children child.Guard
		mailSvc  core.EmailService
		validate *validator.Validate
		async    bool
		now      func() time.Time
	}
)

func NewService(
	repo Repository,
	users Directory,
	children child.Guard,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		children: children,
		mailSvc:  mailSvc,
		validate: validate,
		async:    !conf.TestMode,
		now:      time.Now,
	}
}

func (svc *Service) activeUser(ctx context.Context, id string) (user.User, error) {
	usr, err := svc.users.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return user.User{}, ErrUnknownRecipient
		}
		return user.User{}, errors.Wrap(err, "finding recipient")
	}
	if !usr.IsActive {
		return user.User{}, ErrUnknownRecipient
	}
	return usr, nil
}

func (svc *Service) Create(ctx context.Context, actor user.User, na NewAppointment) (Appointment, error) {
	na.clean()
	if err := svc.validate.Struct(na); err != nil {
		return Appointment{}, err
	}
	if na.RecipientID == actor.ID {
		return Appointment{}, ErrSelfAppointment
	}
	now := svc.now().UTC()
	if !na.ScheduledAt.After(now) {
		return Appointment{}, ErrInThePast
	}

	recipient, err := svc.activeUser(ctx, na.RecipientID)
	if err != nil {
		return Appointment{}, err
	}
	// parents book school personnel only
	if !actor.IsEmployee() && !recipient.IsEmployee() {
		return Appointment{}, ErrUnknownRecipient
	}
	if na.ChildID != "" {
		if _, err = svc.children.Authorize(ctx, actor, na.ChildID); err != nil {
			return Appointment{}, err
		}
	}

	return svc.repo.CreateAppointment(ctx, Appointment{
		RequesterID:     actor.ID,
		RecipientID:     recipient.ID,
		ChildID:         null.NewString(na.ChildID, na.ChildID != ""),
		Subject:         na.Subject,
		Description:     na.Description,
		ScheduledAt:     na.ScheduledAt.UTC(),
		DurationMinutes: na.DurationMinutes,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Appointment, error) {
	a, err := svc.repo.GetAppointment(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !(actor.IsAdmin() || a.Involves(actor.ID)) {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

// Query lists the actor's appointments (every appointment for admins).
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Appointment, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Status = core.CleanString(filter.Status, true /* lower */)
	filter.UserID = ""
	if !actor.IsAdmin() {
		filter.UserID = actor.ID
	}
	return svc.repo.QueryAppointments(ctx, filter)
}

// Transition applies a status change allowed by the transition table.
func (svc *Service) Transition(ctx context.Context, actor user.User, id string, tr Transition) (Appointment, error) {
	tr.Status = core.CleanString(tr.Status, true /* lower */)
	if err := svc.validate.Struct(tr); err != nil {
		return Appointment{}, err
	}
	a, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Appointment{}, err
	}
	if err = checkTransition(a, tr.Status, actor); err != nil {
		return Appointment{}, err
	}

	a.Status = tr.Status
	if note := core.CleanString(tr.Note); note != "" {
		a.ResponseNote = note
	}
	a.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateAppointment(ctx, a)
}

// Delete removes an appointment. Requesters may only withdraw pending ones.
func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	a, err := svc.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || (a.RequesterID == actor.ID && a.Status == StatusPending)) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteAppointment(ctx, id)
}
