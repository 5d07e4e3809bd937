package inmemdb

import (
	"context"

	"github.com/trezcool/yuva/core/calendar"
)

type calendarRepository struct {
	db *table[calendar.Event]
}

var _ calendar.Repository = (*calendarRepository)(nil) // interface compliance check

func NewCalendarRepository(db *DB) calendar.Repository {
	return &calendarRepository{db: db.calendarEvents}
}

func (repo *calendarRepository) CreateEvent(_ context.Context, e calendar.Event) (calendar.Event, error) {
	e.ID = newID()
	repo.db.insert(e.ID, e)
	return e, nil
}

func (repo *calendarRepository) GetEvent(_ context.Context, id string) (calendar.Event, error) {
	if e, ok := repo.db.get(id); ok {
		return e, nil
	}
	return calendar.Event{}, calendar.ErrNotFound
}

func (repo *calendarRepository) QueryEvents(_ context.Context, filter *calendar.QueryFilter) ([]calendar.Event, error) {
	rows := repo.db.filter(func(e calendar.Event) bool {
		if filter == nil {
			return true
		}
		if !filter.From.IsZero() && e.EndsAt.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && e.StartsAt.After(filter.To) {
			return false
		}
		return audienceMatch(e.Audience, filter.Audience)
	})
	return sorted(rows, func(a, b calendar.Event) bool { return a.StartsAt.Before(b.StartsAt) }), nil
}

func (repo *calendarRepository) UpdateEvent(_ context.Context, e calendar.Event) (calendar.Event, error) {
	if !repo.db.update(e.ID, e) {
		return calendar.Event{}, calendar.ErrNotFound
	}
	return e, nil
}

func (repo *calendarRepository) DeleteEvent(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return calendar.ErrNotFound
	}
	return nil
}
