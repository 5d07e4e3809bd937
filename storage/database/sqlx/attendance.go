package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/attendance"
)

const attendanceTable = "attendance"

var attendanceColumns = columns{
	"id", "child_id", "date", "status", "arrival_time", "departure_time", "note", "marked_by", "created_at", "updated_at",
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) UpsertAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	a.ID = newID()
	q := attendanceColumns.insert(attendanceTable) + `
		ON CONFLICT (child_id, date) DO UPDATE SET
			status = EXCLUDED.status, arrival_time = EXCLUDED.arrival_time, departure_time = EXCLUDED.departure_time,
			note = EXCLUDED.note, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at
		RETURNING ` + attendanceColumns.String()

	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "preparing attendance upsert")
	}
	defer func() { _ = stmt.Close() }()

	var saved attendance.Attendance
	if err = stmt.GetContext(ctx, &saved, a); err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "upserting attendance")
	}
	return saved, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, id string) (attendance.Attendance, error) {
	return getByID[attendance.Attendance](ctx, repo.db, attendanceColumns, attendanceTable, id, attendance.ErrNotFound)
}

func (repo *attendanceRepository) QueryAttendance(ctx context.Context, filter *attendance.QueryFilter) ([]attendance.Attendance, error) {
	w := new(where)
	if filter != nil {
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
		if filter.Status != "" {
			w.and("status = ?", filter.Status)
		}
	}
	return selectWhere[attendance.Attendance](ctx, repo.db, w, attendanceColumns.selectFrom(attendanceTable),
		"ORDER BY date DESC, created_at", "querying attendance")
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if err := updateRow(ctx, repo.db, attendanceColumns, attendanceTable, a, attendance.ErrNotFound); err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, attendanceTable, id, attendance.ErrNotFound)
}
