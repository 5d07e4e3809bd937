package carelog

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrMealLogNotFound     = core.NewNotFoundError("meal log")
	ErrSleepLogNotFound    = core.NewNotFoundError("sleep log")
	ErrDailyReportNotFound = core.NewNotFoundError("daily report")
	ErrReportExists        = core.NewFieldError("date", "a daily report already exists for this child and date")
	ErrSleepEnded          = core.NewFieldError("ended_at", "sleep has already ended")
	ErrSleepEndsEarly      = core.NewFieldError("ended_at", "sleep cannot end before it started")
)

type (
	Repository interface {
		CreateMealLog(ctx context.Context, ml MealLog) (MealLog, error)
		GetMealLog(ctx context.Context, id string) (MealLog, error)
		QueryMealLogs(ctx context.Context, filter *QueryFilter) ([]MealLog, error)
		DeleteMealLog(ctx context.Context, id string) error

		CreateSleepLog(ctx context.Context, sl SleepLog) (SleepLog, error)
		GetSleepLog(ctx context.Context, id string) (SleepLog, error)
		QuerySleepLogs(ctx context.Context, filter *QueryFilter) ([]SleepLog, error)
		UpdateSleepLog(ctx context.Context, sl SleepLog) (SleepLog, error)
		DeleteSleepLog(ctx context.Context, id string) error

		// CreateDailyReport returns ErrReportExists when the child already has a report that day.
		CreateDailyReport(ctx context.Context, r DailyReport) (DailyReport, error)
		GetDailyReport(ctx context.Context, id string) (DailyReport, error)
		QueryDailyReports(ctx context.Context, filter *QueryFilter) ([]DailyReport, error)
		UpdateDailyReport(ctx context.Context, r DailyReport) (DailyReport, error)
		DeleteDailyReport(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		children child.Guard
		files    core.FileStore
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, children child.Guard, files core.FileStore, validate *validator.Validate) *Service {
	return &Service{repo: repo, children: children, files: files, validate: validate, now: time.Now}
}

// canLogMeals: educators, admins and the kitchen.
func canLogMeals(actor user.User) bool {
	return actor.IsAdmin() || actor.IsEducator() || actor.IsChef() || actor.HasRole(user.RoleStaffCook)
}

func canLogSleep(actor user.User) bool {
	return actor.IsAdmin() || actor.IsEducator()
}

// scope narrows the filter's children to the ones `actor` may see.
// It returns false when nothing is visible.
func (svc *Service) scope(ctx context.Context, actor user.User, filter *QueryFilter) (bool, error) {
	ids, all, err := svc.children.VisibleIDs(ctx, actor)
	if err != nil {
		return false, err
	}
	if !all {
		filter.ChildIDs = core.RestrictIDs(filter.ChildIDs, ids)
		return len(filter.ChildIDs) > 0, nil
	}
	return true, nil
}

func (svc *Service) today() core.Date {
	return core.DateOf(svc.now().UTC())
}

// Meals

func (svc *Service) RecordMeal(ctx context.Context, actor user.User, nm NewMealLog) (MealLog, error) {
	if !canLogMeals(actor) {
		return MealLog{}, core.ErrPermissionDenied
	}
	nm.ChildID = core.CleanString(nm.ChildID)
	nm.Meal = core.CleanString(nm.Meal, true /* lower */)
	nm.Amount = core.CleanString(nm.Amount, true /* lower */)
	if err := svc.validate.Struct(nm); err != nil {
		return MealLog{}, err
	}
	if _, err := svc.children.Authorize(ctx, actor, nm.ChildID); err != nil {
		return MealLog{}, err
	}
	if nm.Date.IsZero() {
		nm.Date = svc.today()
	}

	return svc.repo.CreateMealLog(ctx, MealLog{
		ChildID:    nm.ChildID,
		Date:       nm.Date,
		Meal:       nm.Meal,
		Amount:     nm.Amount,
		Note:       core.CleanString(nm.Note),
		RecordedBy: null.StringFrom(actor.ID),
		CreatedAt:  svc.now().UTC(),
	})
}

func (svc *Service) QueryMeals(ctx context.Context, actor user.User, filter *QueryFilter) ([]MealLog, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if ok, err := svc.scope(ctx, actor, filter); err != nil || !ok {
		return []MealLog{}, err
	}
	return svc.repo.QueryMealLogs(ctx, filter)
}

func (svc *Service) DeleteMeal(ctx context.Context, actor user.User, id string) error {
	ml, err := svc.repo.GetMealLog(ctx, id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || ml.RecordedBy.String == actor.ID) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteMealLog(ctx, id)
}

// Sleep

func (svc *Service) RecordSleep(ctx context.Context, actor user.User, ns NewSleepLog) (SleepLog, error) {
	if !canLogSleep(actor) {
		return SleepLog{}, core.ErrPermissionDenied
	}
	ns.ChildID = core.CleanString(ns.ChildID)
	ns.Quality = core.CleanString(ns.Quality, true /* lower */)
	if err := svc.validate.Struct(ns); err != nil {
		return SleepLog{}, err
	}
	if ns.EndedAt != nil && ns.EndedAt.Before(ns.StartedAt) {
		return SleepLog{}, ErrSleepEndsEarly
	}
	if _, err := svc.children.Authorize(ctx, actor, ns.ChildID); err != nil {
		return SleepLog{}, err
	}
	if ns.Date.IsZero() {
		ns.Date = core.DateOf(ns.StartedAt.UTC())
	}

	sl := SleepLog{
		ChildID:    ns.ChildID,
		Date:       ns.Date,
		StartedAt:  ns.StartedAt.UTC(),
		Quality:    ns.Quality,
		Note:       core.CleanString(ns.Note),
		RecordedBy: null.StringFrom(actor.ID),
		CreatedAt:  svc.now().UTC(),
	}
	if ns.EndedAt != nil {
		sl.EndedAt = null.TimeFrom(ns.EndedAt.UTC())
	}
	return svc.repo.CreateSleepLog(ctx, sl)
}

// EndSleep closes an open sleep log; EndedAt defaults to now.
func (svc *Service) EndSleep(ctx context.Context, actor user.User, id string, es EndSleep) (SleepLog, error) {
	if !canLogSleep(actor) {
		return SleepLog{}, core.ErrPermissionDenied
	}
	es.Quality = core.CleanString(es.Quality, true /* lower */)
	if err := svc.validate.Struct(es); err != nil {
		return SleepLog{}, err
	}
	sl, err := svc.repo.GetSleepLog(ctx, id)
	if err != nil {
		return SleepLog{}, err
	}
	if sl.EndedAt.Valid {
		return SleepLog{}, ErrSleepEnded
	}

	end := es.EndedAt.UTC()
	if es.EndedAt.IsZero() {
		end = svc.now().UTC()
	}
	if end.Before(sl.StartedAt) {
		return SleepLog{}, ErrSleepEndsEarly
	}
	sl.EndedAt = null.TimeFrom(end)
	if es.Quality != "" {
		sl.Quality = es.Quality
	}
	if es.Note != nil {
		sl.Note = core.CleanString(*es.Note)
	}
	return svc.repo.UpdateSleepLog(ctx, sl)
}

func (svc *Service) QuerySleep(ctx context.Context, actor user.User, filter *QueryFilter) ([]SleepLog, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if ok, err := svc.scope(ctx, actor, filter); err != nil || !ok {
		return []SleepLog{}, err
	}
	return svc.repo.QuerySleepLogs(ctx, filter)
}

func (svc *Service) DeleteSleep(ctx context.Context, actor user.User, id string) error {
	sl, err := svc.repo.GetSleepLog(ctx, id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || sl.RecordedBy.String == actor.ID) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteSleepLog(ctx, id)
}
