package appointment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

const reminderDateLayout = "Monday 2 January 2006, 15:04"

// ScheduleReminder stores a reminder that the scheduler sends at RemindAt.
// The reminder goes to the actor unless another party of the appointment is named.
func (svc *Service) ScheduleReminder(ctx context.Context, actor user.User, appointmentID string, nr NewReminder) (Reminder, error) {
	nr.RecipientID = core.CleanString(nr.RecipientID)
	if err := svc.validate.Struct(nr); err != nil {
		return Reminder{}, err
	}
	a, err := svc.Get(ctx, actor, appointmentID)
	if err != nil {
		return Reminder{}, err
	}
	if !(a.Status == StatusPending || a.Status == StatusApproved) {
		return Reminder{}, ErrClosed
	}
	if nr.RecipientID == "" {
		nr.RecipientID = actor.ID
	}
	if !a.Involves(nr.RecipientID) {
		return Reminder{}, ErrNotAParty
	}
	if !nr.RemindAt.Before(a.ScheduledAt) {
		return Reminder{}, ErrLateReminder
	}

	return svc.repo.CreateReminder(ctx, Reminder{
		AppointmentID:   null.StringFrom(a.ID),
		RecipientID:     nr.RecipientID,
		Subject:         a.Subject,
		Message:         core.CleanString(nr.Message),
		AppointmentDate: a.ScheduledAt,
		RemindAt:        nr.RemindAt.UTC(),
		CreatedAt:       svc.now().UTC(),
	})
}

func (svc *Service) QueryReminders(ctx context.Context, actor user.User, appointmentID string) ([]Reminder, error) {
	if _, err := svc.Get(ctx, actor, appointmentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryReminders(ctx, appointmentID)
}

// SendReminder composes the appointment reminder email of the recipient's profile and hands it
// to the email service. Parents may only remind school personnel.
func (svc *Service) SendReminder(ctx context.Context, actor user.User, req ReminderRequest) error {
	req.RecipientID = core.CleanString(req.RecipientID)
	req.AppointmentSubject = core.CleanString(req.AppointmentSubject)
	req.Message = core.CleanString(req.Message)
	if err := svc.validate.Struct(req); err != nil {
		return err
	}

	recipient, err := svc.activeUser(ctx, req.RecipientID)
	if err != nil {
		return err
	}
	if !actor.IsEmployee() && !recipient.IsEmployee() {
		return core.ErrPermissionDenied
	}
	if recipient.Email == "" {
		return core.NewFieldError("recipientId", "recipient has no email address")
	}

	svc.send(reminderMessage(recipient, req.AppointmentSubject, req.Message, req.AppointmentDate))
	return nil
}

// DispatchDueReminders sends every due reminder and marks it sent. It returns how many were sent.
func (svc *Service) DispatchDueReminders(ctx context.Context) (int, error) {
	now := svc.now().UTC()
	due, err := svc.repo.QueryDueReminders(ctx, now)
	if err != nil {
		return 0, errors.Wrap(err, "querying due reminders")
	}

	var sent int
	for _, r := range due {
		recipient, err := svc.users.GetByID(ctx, r.RecipientID)
		switch {
		case err == nil && recipient.IsActive && recipient.Email != "":
			svc.send(reminderMessage(recipient, r.Subject, r.Message, r.AppointmentDate))
			sent++
		case err != nil && !core.IsNotFound(err):
			return sent, errors.Wrap(err, "finding reminder recipient")
		}
		// unreachable recipients are marked too, so they are not retried forever
		if err = svc.repo.MarkReminderSent(ctx, r.ID, now); err != nil {
			return sent, errors.Wrap(err, "marking reminder sent")
		}
	}
	return sent, nil
}

func (svc *Service) send(msg *core.EmailMessage) {
	if svc.async {
		go svc.mailSvc.SendMessages(msg)
		return
	}
	svc.mailSvc.SendMessages(msg)
}

func reminderMessage(recipient user.User, subject, message string, date time.Time) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: recipient.DisplayName(), Address: recipient.Email}},
		Subject:      fmt.Sprintf("Appointment reminder: %s", subject),
		TemplateName: "appointment_reminder",
		TemplateData: map[string]interface{}{
			"RecipientName": recipient.DisplayName(),
			"Subject":       subject,
			"Date":          date.UTC().Format(reminderDateLayout),
			"Message":       message,
		},
	}
}
