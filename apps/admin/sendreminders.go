package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// sendReminders runs the reminder and overdue jobs once, for cron setups without the API scheduler.
func (cli *commandLine) sendReminders() error {
	ctx := context.Background()

	sent, err := cli.appointmentSvc.DispatchDueReminders(ctx)
	if err != nil {
		return errors.Wrap(err, "dispatching appointment reminders")
	}
	fmt.Fprintf(cli.out, "%d appointment reminder(s) sent\n", sent)

	overdue, err := cli.feeSvc.SweepOverdue(ctx)
	if err != nil {
		return errors.Wrap(err, "flagging overdue fees")
	}
	fmt.Fprintf(cli.out, "%d fee(s) flagged overdue\n", overdue)
	return nil
}
