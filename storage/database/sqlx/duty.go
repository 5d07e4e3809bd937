package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/yuva/core/duty"
)

const (
	dutyDescriptionTable = "duty_description"
	dutyScheduleTable    = "duty_schedule"
)

var (
	dutyDescriptionColumns = columns{"id", "title", "details", "created_at", "updated_at"}
	dutyScheduleColumns    = columns{
		"id", "staff_id", "date", "shift", "location", "description_id", "note", "created_at", "updated_at",
	}
)

type dutyRepository struct {
	db *sqlx.DB
}

var _ duty.Repository = (*dutyRepository)(nil) // interface compliance check

func NewDutyRepository(db *sqlx.DB) duty.Repository {
	return &dutyRepository{db: db}
}

func (repo *dutyRepository) CreateDescription(ctx context.Context, d duty.Description) (duty.Description, error) {
	d.ID = newID()
	if err := insertRow(ctx, repo.db, dutyDescriptionColumns, dutyDescriptionTable, d); err != nil {
		return duty.Description{}, err
	}
	return d, nil
}

func (repo *dutyRepository) GetDescription(ctx context.Context, id string) (duty.Description, error) {
	return getByID[duty.Description](ctx, repo.db, dutyDescriptionColumns, dutyDescriptionTable, id, duty.ErrDescriptionNotFound)
}

func (repo *dutyRepository) QueryDescriptions(ctx context.Context) ([]duty.Description, error) {
	return selectWhere[duty.Description](ctx, repo.db, new(where), dutyDescriptionColumns.selectFrom(dutyDescriptionTable),
		"ORDER BY LOWER(title)", "querying duty descriptions")
}

func (repo *dutyRepository) UpdateDescription(ctx context.Context, d duty.Description) (duty.Description, error) {
	if err := updateRow(ctx, repo.db, dutyDescriptionColumns, dutyDescriptionTable, d, duty.ErrDescriptionNotFound); err != nil {
		return duty.Description{}, err
	}
	return d, nil
}

// DeleteDescription detaches the schedules referring to it (ON DELETE SET NULL).
func (repo *dutyRepository) DeleteDescription(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, dutyDescriptionTable, id, duty.ErrDescriptionNotFound)
}

func (repo *dutyRepository) CreateSchedule(ctx context.Context, s duty.Schedule) (duty.Schedule, error) {
	s.ID = newID()
	if err := insertRow(ctx, repo.db, dutyScheduleColumns, dutyScheduleTable, s); err != nil {
		return duty.Schedule{}, err
	}
	return s, nil
}

func (repo *dutyRepository) GetSchedule(ctx context.Context, id string) (duty.Schedule, error) {
	return getByID[duty.Schedule](ctx, repo.db, dutyScheduleColumns, dutyScheduleTable, id, duty.ErrScheduleNotFound)
}

func (repo *dutyRepository) QuerySchedules(ctx context.Context, filter *duty.ScheduleFilter) ([]duty.Schedule, error) {
	w := new(where)
	if filter.StaffID != "" {
		w.and("staff_id::text = ?", filter.StaffID)
	}
	if !filter.From.IsZero() {
		w.and("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		w.and("date <= ?", filter.To)
	}
	suffix := "ORDER BY date, CASE shift WHEN 'full_day' THEN 0 WHEN 'morning' THEN 1 ELSE 2 END"
	return selectWhere[duty.Schedule](ctx, repo.db, w, dutyScheduleColumns.selectFrom(dutyScheduleTable), suffix, "querying duty schedules")
}

func (repo *dutyRepository) UpdateSchedule(ctx context.Context, s duty.Schedule) (duty.Schedule, error) {
	if err := updateRow(ctx, repo.db, dutyScheduleColumns, dutyScheduleTable, s, duty.ErrScheduleNotFound); err != nil {
		return duty.Schedule{}, err
	}
	return s, nil
}

func (repo *dutyRepository) DeleteSchedule(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, dutyScheduleTable, id, duty.ErrScheduleNotFound)
}
