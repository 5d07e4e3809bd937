package inmemdb

import (
	"context"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core/duty"
)

var shiftRank = map[string]int{duty.ShiftFullDay: 0, duty.ShiftMorning: 1, duty.ShiftAfternoon: 2}

type dutyRepository struct {
	descriptions *table[duty.Description]
	schedules    *table[duty.Schedule]
}

var _ duty.Repository = (*dutyRepository)(nil) // interface compliance check

func NewDutyRepository(db *DB) duty.Repository {
	return &dutyRepository{descriptions: db.dutyDescriptions, schedules: db.dutySchedules}
}

func (repo *dutyRepository) CreateDescription(_ context.Context, d duty.Description) (duty.Description, error) {
	d.ID = newID()
	repo.descriptions.insert(d.ID, d)
	return d, nil
}

func (repo *dutyRepository) GetDescription(_ context.Context, id string) (duty.Description, error) {
	if d, ok := repo.descriptions.get(id); ok {
		return d, nil
	}
	return duty.Description{}, duty.ErrDescriptionNotFound
}

func (repo *dutyRepository) QueryDescriptions(context.Context) ([]duty.Description, error) {
	return sorted(repo.descriptions.filter(nil), func(a, b duty.Description) bool {
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	}), nil
}

func (repo *dutyRepository) UpdateDescription(_ context.Context, d duty.Description) (duty.Description, error) {
	if !repo.descriptions.update(d.ID, d) {
		return duty.Description{}, duty.ErrDescriptionNotFound
	}
	return d, nil
}

func (repo *dutyRepository) DeleteDescription(_ context.Context, id string) error {
	if repo.descriptions.delete(id) == 0 {
		return duty.ErrDescriptionNotFound
	}

	// ON DELETE SET NULL
	repo.schedules.mu.Lock()
	defer repo.schedules.mu.Unlock()
	for _, s := range repo.schedules.filterLocked(func(s duty.Schedule) bool { return s.DescriptionID.String == id }) {
		s.DescriptionID = null.String{}
		repo.schedules.insertLocked(s.ID, s)
	}
	return nil
}

func (repo *dutyRepository) CreateSchedule(_ context.Context, s duty.Schedule) (duty.Schedule, error) {
	s.ID = newID()
	repo.schedules.insert(s.ID, s)
	return s, nil
}

func (repo *dutyRepository) GetSchedule(_ context.Context, id string) (duty.Schedule, error) {
	if s, ok := repo.schedules.get(id); ok {
		return s, nil
	}
	return duty.Schedule{}, duty.ErrScheduleNotFound
}

func (repo *dutyRepository) QuerySchedules(_ context.Context, filter *duty.ScheduleFilter) ([]duty.Schedule, error) {
	rows := repo.schedules.filter(func(s duty.Schedule) bool {
		if filter.StaffID != "" && s.StaffID != filter.StaffID {
			return false
		}
		if !filter.From.IsZero() && s.Date.Before(filter.From) {
			return false
		}
		return filter.To.IsZero() || !s.Date.After(filter.To)
	})
	return sorted(rows, func(a, b duty.Schedule) bool {
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return shiftRank[a.Shift] < shiftRank[b.Shift]
	}), nil
}

func (repo *dutyRepository) UpdateSchedule(_ context.Context, s duty.Schedule) (duty.Schedule, error) {
	if !repo.schedules.update(s.ID, s) {
		return duty.Schedule{}, duty.ErrScheduleNotFound
	}
	return s, nil
}

func (repo *dutyRepository) DeleteSchedule(_ context.Context, id string) error {
	if repo.schedules.delete(id) == 0 {
		return duty.ErrScheduleNotFound
	}
	return nil
}
