package attendance

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
	ErrNotFound      = core.NewNotFoundError("attendance")
	ErrNotArrived    = core.NewFieldError("arrival_time", "child has not been marked as arrived")
	ErrDepartedTwice = core.NewFieldError("departure_time", "child has already been checked out")
)

type (
	Repository interface {
		// UpsertAttendance inserts or replaces the row of (ChildID, Date).
		// A replaced row takes the departure time of a, usually clearing it.
		UpsertAttendance(ctx context.Context, a Attendance) (Attendance, error)
		GetAttendance(ctx context.Context, id string) (Attendance, error)
		QueryAttendance(ctx context.Context, filter *QueryFilter) ([]Attendance, error)
		UpdateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		DeleteAttendance(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		children child.Guard
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, children child.Guard, validate *validator.Validate) *Service {
	return &Service{repo: repo, children: children, validate: validate, now: time.Now}
}

// canMark reports whether `actor` may take the roll: admins, educators and security staff.
func canMark(actor user.User) bool {
	return actor.IsAdmin() || actor.IsEducator() || actor.HasRole(user.RoleStaffSecurity)
}

// Mark upserts the attendance of a child for a day.
// Arrival time is stamped for present and late children, and cleared otherwise.
func (svc *Service) Mark(ctx context.Context, actor user.User, m Mark) (Attendance, error) {
	if !canMark(actor) {
		return Attendance{}, core.ErrPermissionDenied
	}
	m.clean()
	if err := svc.validate.Struct(m); err != nil {
		return Attendance{}, err
	}
	if _, err := svc.children.Authorize(ctx, actor, m.ChildID); err != nil {
		return Attendance{}, err
	}

	now := svc.now().UTC()
	if m.Date.IsZero() {
		m.Date = core.DateOf(now)
	}
	a := Attendance{
		ChildID:   m.ChildID,
		Date:      m.Date,
		Status:    m.Status,
		Note:      m.Note,
		MarkedBy:  null.StringFrom(actor.ID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if m.Status == StatusPresent || m.Status == StatusLate {
		a.ArrivalTime = null.TimeFrom(now)
	}
	return svc.repo.UpsertAttendance(ctx, a)
}

// CheckOut stamps the departure time of an arrived child.
func (svc *Service) CheckOut(ctx context.Context, actor user.User, id string) (Attendance, error) {
	if !canMark(actor) {
		return Attendance{}, core.ErrPermissionDenied
	}
	a, err := svc.repo.GetAttendance(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	if !a.ArrivalTime.Valid {
		return Attendance{}, ErrNotArrived
	}
	if a.DepartureTime.Valid {
		return Attendance{}, ErrDepartedTwice
	}

	now := svc.now().UTC()
	a.DepartureTime = null.TimeFrom(now)
	a.UpdatedAt = now
	return svc.repo.UpdateAttendance(ctx, a)
}

// Query lists attendance rows; parents only see their children's.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Attendance, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	ids, all, err := svc.children.VisibleIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !all {
		filter.ChildIDs = core.RestrictIDs(filter.ChildIDs, ids)
		if len(filter.ChildIDs) == 0 {
			return []Attendance{}, nil
		}
	}
	return svc.repo.QueryAttendance(ctx, filter)
}

// Summarize counts the attendance statuses of a child between `from` and `to` (inclusive).
func (svc *Service) Summarize(ctx context.Context, actor user.User, childID string, from, to core.Date) (Summary, error) {
	if _, err := svc.children.Authorize(ctx, actor, childID); err != nil {
		return Summary{}, err
	}
	rows, err := svc.repo.QueryAttendance(ctx, &QueryFilter{ChildIDs: []string{childID}, From: from, To: to})
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying attendance")
	}

	sum := Summary{ChildID: childID, From: from, To: to, Total: len(rows), Counts: make(map[string]int, len(Statuses))}
	for _, s := range Statuses {
		sum.Counts[s] = 0
	}
	for _, a := range rows {
		sum.Counts[a.Status]++
	}
	return sum, nil
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteAttendance(ctx, id)
}
