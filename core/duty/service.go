package duty

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrDescriptionNotFound = core.NewNotFoundError("duty description")
	ErrScheduleNotFound    = core.NewNotFoundError("duty schedule")
	ErrUnknownStaff        = core.NewFieldError("staff_id", "duties are assigned to active personnel")
	ErrUnknownDescription  = core.NewFieldError("description_id", "unknown duty description")
	ErrDoubleBooked        = core.NewFieldError("shift", "staff member already has a duty during this shift")
)

type (
	Repository interface {
		CreateDescription(ctx context.Context, d Description) (Description, error)
		GetDescription(ctx context.Context, id string) (Description, error)
		QueryDescriptions(ctx context.Context) ([]Description, error)
		UpdateDescription(ctx context.Context, d Description) (Description, error)
		DeleteDescription(ctx context.Context, id string) error

		CreateSchedule(ctx context.Context, s Schedule) (Schedule, error)
		GetSchedule(ctx context.Context, id string) (Schedule, error)
		// QuerySchedules returns schedules by date.
		QuerySchedules(ctx context.Context, filter *ScheduleFilter) ([]Schedule, error)
		UpdateSchedule(ctx context.Context, s Schedule) (Schedule, error)
		DeleteSchedule(ctx context.Context, id string) error
	}

	Directory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo     Repository
		users    Directory
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, users Directory, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, validate: validate, now: time.Now}
}

func (svc *Service) CreateDescription(ctx context.Context, actor user.User, dd DescriptionData) (Description, error) {
	if !actor.IsAdmin() {
		return Description{}, core.ErrPermissionDenied
	}
	dd.clean()
	if err := svc.validate.Struct(dd); err != nil {
		return Description{}, err
	}
	now := svc.now().UTC()
	return svc.repo.CreateDescription(ctx, Description{Title: dd.Title, Details: dd.Details, CreatedAt: now, UpdatedAt: now})
}

func (svc *Service) QueryDescriptions(ctx context.Context, actor user.User) ([]Description, error) {
	if !actor.IsEmployee() {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.QueryDescriptions(ctx)
}

func (svc *Service) UpdateDescription(ctx context.Context, actor user.User, id string, dd DescriptionData) (Description, error) {
	if !actor.IsAdmin() {
		return Description{}, core.ErrPermissionDenied
	}
	dd.clean()
	if err := svc.validate.Struct(dd); err != nil {
		return Description{}, err
	}
	d, err := svc.repo.GetDescription(ctx, id)
	if err != nil {
		return Description{}, err
	}
	d.Title = dd.Title
	d.Details = dd.Details
	d.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateDescription(ctx, d)
}

// DeleteDescription removes a description; schedules referring to it keep their other fields.
func (svc *Service) DeleteDescription(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteDescription(ctx, id)
}

func (svc *Service) validateSchedule(ctx context.Context, sd *ScheduleData, exclID string) error {
	sd.clean()
	if err := svc.validate.Struct(sd); err != nil {
		return err
	}

	staff, err := svc.users.GetByID(ctx, sd.StaffID)
	if err != nil {
		if core.IsNotFound(err) {
			return ErrUnknownStaff
		}
		return errors.Wrap(err, "finding staff member")
	}
	if !staff.IsActive || !staff.IsEmployee() {
		return ErrUnknownStaff
	}

	if sd.DescriptionID != "" {
		if _, err = svc.repo.GetDescription(ctx, sd.DescriptionID); err != nil {
			if core.IsNotFound(err) {
				return ErrUnknownDescription
			}
			return err
		}
	}

	sameDay, err := svc.repo.QuerySchedules(ctx, &ScheduleFilter{StaffID: sd.StaffID, From: sd.Date, To: sd.Date})
	if err != nil {
		return err
	}
	for _, s := range sameDay {
		if s.ID != exclID && overlaps(s.Shift, sd.Shift) {
			return ErrDoubleBooked
		}
	}
	return nil
}

func overlaps(a, b string) bool {
	return a == b || a == ShiftFullDay || b == ShiftFullDay
}

func (svc *Service) CreateSchedule(ctx context.Context, actor user.User, sd ScheduleData) (Schedule, error) {
	if !actor.IsAdmin() {
		return Schedule{}, core.ErrPermissionDenied
	}
	if err := svc.validateSchedule(ctx, &sd, ""); err != nil {
		return Schedule{}, err
	}
	now := svc.now().UTC()
	s := Schedule{CreatedAt: now, UpdatedAt: now}
	sd.apply(&s)
	return svc.repo.CreateSchedule(ctx, s)
}

// QuerySchedules lists duty schedules. Admins see every schedule, other personnel their own.
func (svc *Service) QuerySchedules(ctx context.Context, actor user.User, filter *ScheduleFilter) ([]Schedule, error) {
	if !actor.IsEmployee() {
		return nil, core.ErrPermissionDenied
	}
	if filter == nil {
		filter = new(ScheduleFilter)
	}
	if !actor.IsAdmin() {
		filter.StaffID = actor.ID
	}
	return svc.repo.QuerySchedules(ctx, filter)
}

func (svc *Service) UpdateSchedule(ctx context.Context, actor user.User, id string, sd ScheduleData) (Schedule, error) {
	if !actor.IsAdmin() {
		return Schedule{}, core.ErrPermissionDenied
	}
	s, err := svc.repo.GetSchedule(ctx, id)
	if err != nil {
		return Schedule{}, err
	}
	if err = svc.validateSchedule(ctx, &sd, s.ID); err != nil {
		return Schedule{}, err
	}
	sd.apply(&s)
	s.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateSchedule(ctx, s)
}

func (svc *Service) DeleteSchedule(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteSchedule(ctx, id)
}
