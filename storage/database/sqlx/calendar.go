package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/yuva/core/calendar"
)

const calendarTable = "calendar_event"

var calendarColumns = columns{
	"id", "title", "description", "location", "starts_at", "ends_at", "all_day", "audience", "created_by",
	"created_at", "updated_at",
}

type calendarRepository struct {
	db *sqlx.DB
}

var _ calendar.Repository = (*calendarRepository)(nil) // interface compliance check

func NewCalendarRepository(db *sqlx.DB) calendar.Repository {
	return &calendarRepository{db: db}
}

func (repo *calendarRepository) CreateEvent(ctx context.Context, e calendar.Event) (calendar.Event, error) {
	e.ID = newID()
	if e.Audience == nil {
		e.Audience = pq.StringArray{}
	}
	if err := insertRow(ctx, repo.db, calendarColumns, calendarTable, e); err != nil {
		return calendar.Event{}, err
	}
	return e, nil
}

func (repo *calendarRepository) GetEvent(ctx context.Context, id string) (calendar.Event, error) {
	return getByID[calendar.Event](ctx, repo.db, calendarColumns, calendarTable, id, calendar.ErrNotFound)
}

func (repo *calendarRepository) QueryEvents(ctx context.Context, filter *calendar.QueryFilter) ([]calendar.Event, error) {
	w := new(where)
	if filter != nil {
		if !filter.From.IsZero() {
			w.and("ends_at >= ?", filter.From)
		}
		if !filter.To.IsZero() {
			w.and("starts_at <= ?", filter.To)
		}
		audienceWhere(w, filter.Audience)
	}
	return selectWhere[calendar.Event](ctx, repo.db, w, calendarColumns.selectFrom(calendarTable),
		"ORDER BY starts_at", "querying calendar events")
}

func (repo *calendarRepository) UpdateEvent(ctx context.Context, e calendar.Event) (calendar.Event, error) {
	if e.Audience == nil {
		e.Audience = pq.StringArray{}
	}
	if err := updateRow(ctx, repo.db, calendarColumns, calendarTable, e, calendar.ErrNotFound); err != nil {
		return calendar.Event{}, err
	}
	return e, nil
}

func (repo *calendarRepository) DeleteEvent(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, calendarTable, id, calendar.ErrNotFound)
}
