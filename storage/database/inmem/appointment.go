package inmemdb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core/appointment"
)

type appointmentRepository struct {
	db        *table[appointment.Appointment]
	reminders *table[appointment.Reminder]
}

var _ appointment.Repository = (*appointmentRepository)(nil) // interface compliance check

func NewAppointmentRepository(db *DB) appointment.Repository {
	return &appointmentRepository{db: db.appointments, reminders: db.reminders}
}

func (repo *appointmentRepository) CreateAppointment(_ context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	a.ID = newID()
	repo.db.insert(a.ID, a)
	return a, nil
}

func (repo *appointmentRepository) GetAppointment(_ context.Context, id string) (appointment.Appointment, error) {
	if a, ok := repo.db.get(id); ok {
		return a, nil
	}
	return appointment.Appointment{}, appointment.ErrNotFound
}

func (repo *appointmentRepository) QueryAppointments(_ context.Context, filter *appointment.QueryFilter) ([]appointment.Appointment, error) {
	rows := repo.db.filter(func(a appointment.Appointment) bool {
		if filter.UserID != "" && !a.Involves(filter.UserID) {
			return false
		}
		if filter.Status != "" && a.Status != filter.Status {
			return false
		}
		if !filter.From.IsZero() && a.ScheduledAt.Before(filter.From.Time) {
			return false
		}
		if !filter.To.IsZero() && !a.ScheduledAt.Before(filter.To.AddDate(0, 0, 1)) {
			return false
		}
		return true
	})
	return sorted(rows, func(a, b appointment.Appointment) bool { return a.ScheduledAt.Before(b.ScheduledAt) }), nil
}

func (repo *appointmentRepository) UpdateAppointment(_ context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	if !repo.db.update(a.ID, a) {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	return a, nil
}

func (repo *appointmentRepository) DeleteAppointment(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return appointment.ErrNotFound
	}
	// ON DELETE CASCADE
	repo.reminders.mu.Lock()
	defer repo.reminders.mu.Unlock()
	var ids []string
	for rid, r := range repo.reminders.rows {
		if r.AppointmentID.String == id {
			ids = append(ids, rid)
		}
	}
	repo.reminders.deleteLocked(ids...)
	return nil
}

func (repo *appointmentRepository) CreateReminder(_ context.Context, r appointment.Reminder) (appointment.Reminder, error) {
	r.ID = newID()
	repo.reminders.insert(r.ID, r)
	return r, nil
}

func (repo *appointmentRepository) QueryReminders(_ context.Context, appointmentID string) ([]appointment.Reminder, error) {
	rows := repo.reminders.filter(func(r appointment.Reminder) bool { return r.AppointmentID.String == appointmentID })
	return sorted(rows, func(a, b appointment.Reminder) bool { return a.RemindAt.Before(b.RemindAt) }), nil
}

func (repo *appointmentRepository) QueryDueReminders(_ context.Context, now time.Time) ([]appointment.Reminder, error) {
	rows := repo.reminders.filter(func(r appointment.Reminder) bool { return !r.SentAt.Valid && !r.RemindAt.After(now) })
	return sorted(rows, func(a, b appointment.Reminder) bool { return a.RemindAt.Before(b.RemindAt) }), nil
}

func (repo *appointmentRepository) MarkReminderSent(_ context.Context, id string, at time.Time) error {
	repo.reminders.mu.Lock()
	defer repo.reminders.mu.Unlock()

	r, ok := repo.reminders.rows[id]
	if !ok {
		return appointment.ErrReminderNotFound
	}
	r.SentAt = null.TimeFrom(at)
	repo.reminders.rows[id] = r
	return nil
}
