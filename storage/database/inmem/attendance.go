package inmemdb

import (
	"context"

	"github.com/trezcool/yuva/core/attendance"
)

type attendanceRepository struct {
	db *table[attendance.Attendance]
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) UpsertAttendance(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, row := range repo.db.rows {
		if row.ChildID == a.ChildID && row.Date.Equal(a.Date) {
			a.ID = row.ID
			a.CreatedAt = row.CreatedAt
			repo.db.rows[a.ID] = a
			return a, nil
		}
	}
	a.ID = newID()
	repo.db.insertLocked(a.ID, a)
	return a, nil
}

func (repo *attendanceRepository) GetAttendance(_ context.Context, id string) (attendance.Attendance, error) {
	if a, ok := repo.db.get(id); ok {
		return a, nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryAttendance(_ context.Context, filter *attendance.QueryFilter) ([]attendance.Attendance, error) {
	rows := repo.db.filter(func(a attendance.Attendance) bool {
		if filter == nil {
			return true
		}
		if filter.ChildIDs != nil && !in(a.ChildID, filter.ChildIDs) {
			return false
		}
		if !filter.Date.IsZero() && !a.Date.Equal(filter.Date) {
			return false
		}
		if !filter.From.IsZero() && a.Date.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && a.Date.After(filter.To) {
			return false
		}
		if filter.Status != "" && a.Status != filter.Status {
			return false
		}
		return true
	})
	return sorted(rows, func(a, b attendance.Attendance) bool { return a.Date.After(b.Date) }), nil
}

func (repo *attendanceRepository) UpdateAttendance(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if !repo.db.update(a.ID, a) {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	return a, nil
}

func (repo *attendanceRepository) DeleteAttendance(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return attendance.ErrNotFound
	}
	return nil
}
