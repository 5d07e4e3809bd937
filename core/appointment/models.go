package appointment

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	defaultDuration = 30 // minutes
)

type Appointment struct {
	ID              string      `db:"id" json:"id"`
	RequesterID     string      `db:"requester_id" json:"requester_id"`
	RecipientID     string      `db:"recipient_id" json:"recipient_id"`
	ChildID         null.String `db:"child_id" json:"child_id"`
	Subject         string      `db:"subject" json:"subject"`
	Description     string      `db:"description" json:"description"`
	ScheduledAt     time.Time   `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int         `db:"duration_minutes" json:"duration_minutes"`
	Status          string      `db:"status" json:"status"`
	ResponseNote    string      `db:"response_note" json:"response_note"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

func (a Appointment) Involves(userID string) bool {
	return a.RequesterID == userID || a.RecipientID == userID
}

// Reminder is an appointment reminder email waiting to be sent (or already sent).
type Reminder struct {
	ID              string      `db:"id" json:"id"`
	AppointmentID   null.String `db:"appointment_id" json:"appointment_id"`
	RecipientID     string      `db:"recipient_id" json:"recipient_id"`
	Subject         string      `db:"subject" json:"subject"`
	Message         string      `db:"message" json:"message"`
	AppointmentDate time.Time   `db:"appointment_date" json:"appointment_date"`
	RemindAt        time.Time   `db:"remind_at" json:"remind_at"`
	SentAt          null.Time   `db:"sent_at" json:"sent_at"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

type NewAppointment struct {
	RecipientID     string    `json:"recipient_id" validate:"required,uuid"`
	ChildID         string    `json:"child_id" validate:"omitempty,uuid"`
	Subject         string    `json:"subject" validate:"required"`
	Description     string    `json:"description"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,min=5,max=480"`
}

func (na *NewAppointment) clean() {
	na.RecipientID = core.CleanString(na.RecipientID)
	na.ChildID = core.CleanString(na.ChildID)
	na.Subject = core.CleanString(na.Subject)
	na.Description = core.CleanString(na.Description)
	if na.DurationMinutes == 0 {
		na.DurationMinutes = defaultDuration
	}
}

// Transition moves an appointment to another status.
type Transition struct {
	Status string `json:"status" validate:"required,oneof=approved rejected completed cancelled"`
	Note   string `json:"note"`
}

// NewReminder schedules a reminder for one of the parties of an appointment.
type NewReminder struct {
	RecipientID string    `json:"recipient_id" validate:"omitempty,uuid"`
	Message     string    `json:"message"`
	RemindAt    time.Time `json:"remind_at" validate:"required"`
}

// ReminderRequest is the payload of the send-appointment-reminder function.
type ReminderRequest struct {
	RecipientID        string    `json:"recipientId" validate:"required,uuid"`
	AppointmentSubject string    `json:"appointmentSubject" validate:"required"`
	Message            string    `json:"message"`
	AppointmentDate    time.Time `json:"appointmentDate" validate:"required"`
}

type QueryFilter struct {
	Status string    `query:"status"`
	From   core.Date `query:"from"`
	To     core.Date `query:"to"`

	// set by the service; empty means every appointment
	UserID string `query:"-"`
}
