package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/appointment"
)

const (
	appointmentTable = "appointment"
	reminderTable    = "appointment_reminder"
)

var (
	appointmentColumns = columns{
		"id", "requester_id", "recipient_id", "child_id", "subject", "description", "scheduled_at", "duration_minutes",
		"status", "response_note", "created_at", "updated_at",
	}
	reminderColumns = columns{
		"id", "appointment_id", "recipient_id", "subject", "message", "appointment_date", "remind_at", "sent_at", "created_at",
	}
)

type appointmentRepository struct {
	db *sqlx.DB
}

var _ appointment.Repository = (*appointmentRepository)(nil) // interface compliance check

func NewAppointmentRepository(db *sqlx.DB) appointment.Repository {
	return &appointmentRepository{db: db}
}

func (repo *appointmentRepository) CreateAppointment(ctx context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	a.ID = newID()
	if err := insertRow(ctx, repo.db, appointmentColumns, appointmentTable, a); err != nil {
		return appointment.Appointment{}, err
	}
	return a, nil
}

func (repo *appointmentRepository) GetAppointment(ctx context.Context, id string) (appointment.Appointment, error) {
	return getByID[appointment.Appointment](ctx, repo.db, appointmentColumns, appointmentTable, id, appointment.ErrNotFound)
}

func (repo *appointmentRepository) QueryAppointments(ctx context.Context, filter *appointment.QueryFilter) ([]appointment.Appointment, error) {
	w := new(where)
	if filter.UserID != "" {
		w.and("(requester_id::text = ? OR recipient_id::text = ?)", filter.UserID, filter.UserID)
	}
	if filter.Status != "" {
		w.and("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		w.and("scheduled_at >= ?", filter.From.Time)
	}
	if !filter.To.IsZero() {
		w.and("scheduled_at < ?", filter.To.AddDate(0, 0, 1))
	}
	return selectWhere[appointment.Appointment](ctx, repo.db, w, appointmentColumns.selectFrom(appointmentTable),
		"ORDER BY scheduled_at", "querying appointments")
}

func (repo *appointmentRepository) UpdateAppointment(ctx context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	if err := updateRow(ctx, repo.db, appointmentColumns, appointmentTable, a, appointment.ErrNotFound); err != nil {
		return appointment.Appointment{}, err
	}
	return a, nil
}

// DeleteAppointment also removes its reminders (ON DELETE CASCADE).
func (repo *appointmentRepository) DeleteAppointment(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, appointmentTable, id, appointment.ErrNotFound)
}

func (repo *appointmentRepository) CreateReminder(ctx context.Context, r appointment.Reminder) (appointment.Reminder, error) {
	r.ID = newID()
	if err := insertRow(ctx, repo.db, reminderColumns, reminderTable, r); err != nil {
		return appointment.Reminder{}, err
	}
	return r, nil
}

func (repo *appointmentRepository) QueryReminders(ctx context.Context, appointmentID string) ([]appointment.Reminder, error) {
	w := new(where)
	w.and("appointment_id::text = ?", appointmentID)
	return selectWhere[appointment.Reminder](ctx, repo.db, w, reminderColumns.selectFrom(reminderTable),
		"ORDER BY remind_at", "querying reminders")
}

func (repo *appointmentRepository) QueryDueReminders(ctx context.Context, now time.Time) ([]appointment.Reminder, error) {
	w := new(where)
	w.and("sent_at IS NULL")
	w.and("remind_at <= ?", now)
	return selectWhere[appointment.Reminder](ctx, repo.db, w, reminderColumns.selectFrom(reminderTable),
		"ORDER BY remind_at", "querying due reminders")
}

func (repo *appointmentRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return appointment.ErrReminderNotFound
	}
	res, err := repo.db.ExecContext(ctx, "UPDATE appointment_reminder SET sent_at = $2 WHERE id = $1", id, at)
	if err != nil {
		return errors.Wrap(err, "marking reminder sent")
	}
	return checkAffected(res, appointment.ErrReminderNotFound)
}
