package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/yuva/core/carelog"
)

const (
	mealLogTable     = "meal_log"
	sleepLogTable    = "sleep_log"
	dailyReportTable = "daily_report"
)

var (
	mealLogColumns  = columns{"id", "child_id", "date", "meal", "amount", "note", "recorded_by", "created_at"}
	sleepLogColumns = columns{"id", "child_id", "date", "started_at", "ended_at", "quality", "note", "recorded_by", "created_at"}

	dailyReportColumns = columns{
		"id", "child_id", "date", "mood", "practical_life", "sensorial", "language", "mathematics", "culture", "notes",
		"media_urls", "teacher_id", "created_at", "updated_at",
	}
)

type carelogRepository struct {
	db *sqlx.DB
}

var _ carelog.Repository = (*carelogRepository)(nil) // interface compliance check

func NewCarelogRepository(db *sqlx.DB) carelog.Repository {
	return &carelogRepository{db: db}
}

func dayWhere(filter *carelog.QueryFilter) *where {
	w := new(where)
	if filter == nil {
		return w
	}
	if filter.ChildIDs != nil {
		w.in("child_id", filter.ChildIDs)
	}
	if !filter.Date.IsZero() {
		w.and("date = ?", filter.Date)
	}
	if !filter.From.IsZero() {
		w.and("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		w.and("date <= ?", filter.To)
	}
	return w
}

func (repo *carelogRepository) CreateMealLog(ctx context.Context, ml carelog.MealLog) (carelog.MealLog, error) {
	ml.ID = newID()
	if err := insertRow(ctx, repo.db, mealLogColumns, mealLogTable, ml); err != nil {
		return carelog.MealLog{}, err
	}
	return ml, nil
}

func (repo *carelogRepository) GetMealLog(ctx context.Context, id string) (carelog.MealLog, error) {
	return getByID[carelog.MealLog](ctx, repo.db, mealLogColumns, mealLogTable, id, carelog.ErrMealLogNotFound)
}

func (repo *carelogRepository) QueryMealLogs(ctx context.Context, filter *carelog.QueryFilter) ([]carelog.MealLog, error) {
	return selectWhere[carelog.MealLog](ctx, repo.db, dayWhere(filter), mealLogColumns.selectFrom(mealLogTable),
		"ORDER BY created_at DESC", "querying meal logs")
}

func (repo *carelogRepository) DeleteMealLog(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, mealLogTable, id, carelog.ErrMealLogNotFound)
}

func (repo *carelogRepository) CreateSleepLog(ctx context.Context, sl carelog.SleepLog) (carelog.SleepLog, error) {
	sl.ID = newID()
	if err := insertRow(ctx, repo.db, sleepLogColumns, sleepLogTable, sl); err != nil {
		return carelog.SleepLog{}, err
	}
	return sl, nil
}

func (repo *carelogRepository) GetSleepLog(ctx context.Context, id string) (carelog.SleepLog, error) {
	return getByID[carelog.SleepLog](ctx, repo.db, sleepLogColumns, sleepLogTable, id, carelog.ErrSleepLogNotFound)
}

func (repo *carelogRepository) QuerySleepLogs(ctx context.Context, filter *carelog.QueryFilter) ([]carelog.SleepLog, error) {
	return selectWhere[carelog.SleepLog](ctx, repo.db, dayWhere(filter), sleepLogColumns.selectFrom(sleepLogTable),
		"ORDER BY started_at DESC", "querying sleep logs")
}

func (repo *carelogRepository) UpdateSleepLog(ctx context.Context, sl carelog.SleepLog) (carelog.SleepLog, error) {
	if err := updateRow(ctx, repo.db, sleepLogColumns, sleepLogTable, sl, carelog.ErrSleepLogNotFound); err != nil {
		return carelog.SleepLog{}, err
	}
	return sl, nil
}

func (repo *carelogRepository) DeleteSleepLog(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, sleepLogTable, id, carelog.ErrSleepLogNotFound)
}

func (repo *carelogRepository) CreateDailyReport(ctx context.Context, r carelog.DailyReport) (carelog.DailyReport, error) {
	r.ID = newID()
	if r.MediaURLs == nil {
		r.MediaURLs = pq.StringArray{}
	}
	if err := insertRow(ctx, repo.db, dailyReportColumns, dailyReportTable, r); err != nil {
		if isUniqueViolation(err) {
			return carelog.DailyReport{}, carelog.ErrReportExists
		}
		return carelog.DailyReport{}, err
	}
	return r, nil
}

func (repo *carelogRepository) GetDailyReport(ctx context.Context, id string) (carelog.DailyReport, error) {
	return getByID[carelog.DailyReport](ctx, repo.db, dailyReportColumns, dailyReportTable, id, carelog.ErrDailyReportNotFound)
}

func (repo *carelogRepository) QueryDailyReports(ctx context.Context, filter *carelog.QueryFilter) ([]carelog.DailyReport, error) {
	return selectWhere[carelog.DailyReport](ctx, repo.db, dayWhere(filter), dailyReportColumns.selectFrom(dailyReportTable),
		"ORDER BY date DESC", "querying daily reports")
}

func (repo *carelogRepository) UpdateDailyReport(ctx context.Context, r carelog.DailyReport) (carelog.DailyReport, error) {
	if r.MediaURLs == nil {
		r.MediaURLs = pq.StringArray{}
	}
	if err := updateRow(ctx, repo.db, dailyReportColumns, dailyReportTable, r, carelog.ErrDailyReportNotFound); err != nil {
		if isUniqueViolation(err) {
			return carelog.DailyReport{}, carelog.ErrReportExists
		}
		return carelog.DailyReport{}, err
	}
	return r, nil
}

func (repo *carelogRepository) DeleteDailyReport(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, dailyReportTable, id, carelog.ErrDailyReportNotFound)
}
