package fee

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
)

// SendPaymentReminder emails the child's parents about an open fee and records one reminder per parent.
func (svc *Service) SendPaymentReminder(ctx context.Context, actor user.User, feeID string, npr NewPaymentReminder) ([]PaymentReminder, error) {
	if !actor.IsAdmin() {
		return nil, core.ErrPermissionDenied
	}
	npr.Message = core.CleanString(npr.Message)
	if err := svc.validate.Struct(npr); err != nil {
		return nil, err
	}
	f, err := svc.repo.GetFee(ctx, feeID)
	if err != nil {
		return nil, err
	}
	if !f.Open() {
		return nil, ErrClosed
	}
	c, err := svc.children.Authorize(ctx, actor, f.ChildID)
	if err != nil {
		return nil, err
	}

	parents, err := svc.reachableParents(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, ErrNoParent
	}

	now := svc.now().UTC()
	reminders := make([]PaymentReminder, 0, len(parents))
	messages := make([]*core.EmailMessage, 0, len(parents))
	for _, p := range parents {
		reminders = append(reminders, PaymentReminder{
			FeeID:     f.ID,
			ParentID:  p.ID,
			Message:   npr.Message,
			SentAt:    now,
			CreatedBy: null.StringFrom(actor.ID),
		})
		messages = append(messages, paymentReminderMessage(p, c, f, npr.Message))
	}

	if reminders, err = svc.repo.CreatePaymentReminders(ctx, reminders...); err != nil {
		return nil, err
	}
	if svc.async {
		go svc.mailSvc.SendMessages(messages...)
	} else {
		svc.mailSvc.SendMessages(messages...)
	}
	return reminders, nil
}

func (svc *Service) QueryPaymentReminders(ctx context.Context, actor user.User, feeID string) ([]PaymentReminder, error) {
	if _, err := svc.Get(ctx, actor, feeID); err != nil {
		return nil, err
	}
	return svc.repo.QueryPaymentReminders(ctx, feeID)
}

func (svc *Service) reachableParents(ctx context.Context, c child.Child) ([]user.User, error) {
	parents := make([]user.User, 0, len(c.ParentIDs))
	for _, id := range c.ParentIDs {
		p, err := svc.users.GetByID(ctx, id)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, errors.Wrap(err, "finding parent")
		}
		if p.IsActive && p.Email != "" {
			parents = append(parents, p)
		}
	}
	return parents, nil
}

func paymentReminderMessage(parent user.User, c child.Child, f Fee, message string) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: parent.DisplayName(), Address: parent.Email}},
		Subject:      fmt.Sprintf("Payment reminder: %s", c.Name),
		TemplateName: "payment_reminder",
		TemplateData: map[string]interface{}{
			"ParentName":  parent.DisplayName(),
			"ChildName":   c.Name,
			"PaymentType": f.PaymentType,
			"Month":       f.Month,
			"Amount":      fmt.Sprintf("%.2f", f.Amount),
			"DueDate":     f.DueDate.String(),
			"Message":     message,
		},
	}
}
