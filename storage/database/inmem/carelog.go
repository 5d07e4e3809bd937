package inmemdb

import (
	"context"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/carelog"
)

type carelogRepository struct {
	meals   *table[carelog.MealLog]
	sleeps  *table[carelog.SleepLog]
	reports *table[carelog.DailyReport]
}

var _ carelog.Repository = (*carelogRepository)(nil) // interface compliance check

func NewCarelogRepository(db *DB) carelog.Repository {
	return &carelogRepository{meals: db.mealLogs, sleeps: db.sleepLogs, reports: db.dailyReports}
}

// matchDay applies the child/date part of a carelog filter.
func matchDay(filter *carelog.QueryFilter, childID string, date core.Date) bool {
	if filter == nil {
		return true
	}
	if filter.ChildIDs != nil && !in(childID, filter.ChildIDs) {
		return false
	}
	if !filter.Date.IsZero() && !date.Equal(filter.Date) {
		return false
	}
	if !filter.From.IsZero() && date.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && date.After(filter.To) {
		return false
	}
	return true
}

func (repo *carelogRepository) CreateMealLog(_ context.Context, ml carelog.MealLog) (carelog.MealLog, error) {
	ml.ID = newID()
	repo.meals.insert(ml.ID, ml)
	return ml, nil
}

func (repo *carelogRepository) GetMealLog(_ context.Context, id string) (carelog.MealLog, error) {
	if ml, ok := repo.meals.get(id); ok {
		return ml, nil
	}
	return carelog.MealLog{}, carelog.ErrMealLogNotFound
}

func (repo *carelogRepository) QueryMealLogs(_ context.Context, filter *carelog.QueryFilter) ([]carelog.MealLog, error) {
	rows := repo.meals.filter(func(ml carelog.MealLog) bool { return matchDay(filter, ml.ChildID, ml.Date) })
	return sorted(rows, func(a, b carelog.MealLog) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (repo *carelogRepository) DeleteMealLog(_ context.Context, id string) error {
	if repo.meals.delete(id) == 0 {
		return carelog.ErrMealLogNotFound
	}
	return nil
}

func (repo *carelogRepository) CreateSleepLog(_ context.Context, sl carelog.SleepLog) (carelog.SleepLog, error) {
	sl.ID = newID()
	repo.sleeps.insert(sl.ID, sl)
	return sl, nil
}

func (repo *carelogRepository) GetSleepLog(_ context.Context, id string) (carelog.SleepLog, error) {
	if sl, ok := repo.sleeps.get(id); ok {
		return sl, nil
	}
	return carelog.SleepLog{}, carelog.ErrSleepLogNotFound
}

func (repo *carelogRepository) QuerySleepLogs(_ context.Context, filter *carelog.QueryFilter) ([]carelog.SleepLog, error) {
	rows := repo.sleeps.filter(func(sl carelog.SleepLog) bool { return matchDay(filter, sl.ChildID, sl.Date) })
	return sorted(rows, func(a, b carelog.SleepLog) bool { return a.StartedAt.After(b.StartedAt) }), nil
}

func (repo *carelogRepository) UpdateSleepLog(_ context.Context, sl carelog.SleepLog) (carelog.SleepLog, error) {
	if !repo.sleeps.update(sl.ID, sl) {
		return carelog.SleepLog{}, carelog.ErrSleepLogNotFound
	}
	return sl, nil
}

func (repo *carelogRepository) DeleteSleepLog(_ context.Context, id string) error {
	if repo.sleeps.delete(id) == 0 {
		return carelog.ErrSleepLogNotFound
	}
	return nil
}

func (repo *carelogRepository) CreateDailyReport(_ context.Context, r carelog.DailyReport) (carelog.DailyReport, error) {
	repo.reports.mu.Lock()
	defer repo.reports.mu.Unlock()

	for _, row := range repo.reports.rows {
		if row.ChildID == r.ChildID && row.Date.Equal(r.Date) {
			return carelog.DailyReport{}, carelog.ErrReportExists
		}
	}
	r.ID = newID()
	repo.reports.insertLocked(r.ID, r)
	return r, nil
}

func (repo *carelogRepository) GetDailyReport(_ context.Context, id string) (carelog.DailyReport, error) {
	if r, ok := repo.reports.get(id); ok {
		return r, nil
	}
	return carelog.DailyReport{}, carelog.ErrDailyReportNotFound
}

func (repo *carelogRepository) QueryDailyReports(_ context.Context, filter *carelog.QueryFilter) ([]carelog.DailyReport, error) {
	rows := repo.reports.filter(func(r carelog.DailyReport) bool { return matchDay(filter, r.ChildID, r.Date) })
	return sorted(rows, func(a, b carelog.DailyReport) bool { return a.Date.After(b.Date) }), nil
}

func (repo *carelogRepository) UpdateDailyReport(_ context.Context, r carelog.DailyReport) (carelog.DailyReport, error) {
	if !repo.reports.update(r.ID, r) {
		return carelog.DailyReport{}, carelog.ErrDailyReportNotFound
	}
	return r, nil
}

func (repo *carelogRepository) DeleteDailyReport(_ context.Context, id string) error {
	if repo.reports.delete(id) == 0 {
		return carelog.ErrDailyReportNotFound
	}
	return nil
}
