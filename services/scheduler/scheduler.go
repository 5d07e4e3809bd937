// Package scheduler runs the periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trezcool/yuva/core"
)

// runTimeout bounds a single job run.
const runTimeout = 5 * time.Minute

// Job is run once per Interval. Run returns how many rows it handled.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (int, error)
}

type Scheduler struct {
	logger core.Logger
	jobs   []Job
	cron   *cron.Cron
	done   chan struct{}
}

// cronLogger reports cron's own messages (skipped runs, recovered panics) through core.Logger.
type cronLogger struct {
	logger core.Logger
}

// Info drops cron's per-tick chatter (start, wake, run).
func (l cronLogger) Info(string, ...interface{}) {}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(fmt.Sprintf("scheduler: %s %v", msg, keysAndValues), err)
}

func New(logger core.Logger, jobs ...Job) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		logger: logger,
		jobs:   jobs,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Start schedules every job and starts the cron runner; it stops when ctx is cancelled.
// Jobs with no interval are skipped.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		job := job
		if job.Interval <= 0 {
			s.logger.Warn(fmt.Sprintf("scheduler: %s disabled (no interval)", job.Name))
			continue
		}
		if _, err := s.cron.AddFunc("@every "+job.Interval.String(), func() { s.RunOnce(ctx, job) }); err != nil {
			s.logger.Error(fmt.Sprintf("scheduler: scheduling %s", job.Name), err)
		}
	}

	s.done = make(chan struct{})
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		close(s.done)
	}()
}

// Wait blocks until the runner is stopped and running jobs have returned.
func (s *Scheduler) Wait() {
	if s.done == nil {
		return
	}
	<-s.done
}

// RunOnce runs `job` now, logging its outcome.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	n, err := job.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error(fmt.Sprintf("scheduler: %s failed", job.Name), err)
		}
		return
	}
	if n > 0 {
		s.logger.Info(fmt.Sprintf("scheduler: %s handled %d", job.Name, n))
	}
}
