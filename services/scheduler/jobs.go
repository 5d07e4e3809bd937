package scheduler

import (
	"context"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/appointment"
	"github.com/trezcool/yuva/core/fee"
	"github.com/trezcool/yuva/core/feed"
	"github.com/trezcool/yuva/core/transport"
)

// Jobs returns the application's background jobs, configured by conf.Scheduler.
func Jobs(
	conf *core.Config,
	appointmentSvc *appointment.Service,
	feeSvc *fee.Service,
	transportSvc *transport.Service,
	feedSvc *feed.Service,
) []Job {
	retention := conf.Tracking.HistoryRetention
	jobs := []Job{
		{Name: "appointment reminders", Interval: conf.Scheduler.ReminderInterval, Run: appointmentSvc.DispatchDueReminders},
		{Name: "overdue fees", Interval: conf.Scheduler.OverdueSweepInterval, Run: feeSvc.SweepOverdue},
		{Name: "location history prune", Interval: conf.Scheduler.PruneInterval, Run: func(ctx context.Context) (int, error) {
			if retention <= 0 {
				return 0, nil
			}
			return transportSvc.Prune(ctx, retention)
		}},
	}
	if conf.Instagram.UserID != "" && conf.Instagram.AccessToken != "" {
		jobs = append(jobs, Job{Name: "feed sync", Interval: conf.Scheduler.FeedSyncInterval, Run: feedSvc.Sync})
	}
	return jobs
}
