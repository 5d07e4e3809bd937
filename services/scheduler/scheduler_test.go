package scheduler

import (
	"context"
	"errors"
	"log"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logsvc "github.com/trezcool/yuva/services/logger"
)

func TestScheduler(t *testing.T) {
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", 0))

	var reminders, sweeps, disabled int32
	s := New(logger,
		Job{Name: "reminders", Interval: time.Second, Run: func(context.Context) (int, error) {
			atomic.AddInt32(&reminders, 1)
			return 2, nil
		}},
		Job{Name: "sweep", Interval: time.Hour, Run: func(context.Context) (int, error) {
			atomic.AddInt32(&sweeps, 1)
			return 0, errors.New("db down")
		}},
		Job{Name: "disabled", Run: func(context.Context) (int, error) {
			atomic.AddInt32(&disabled, 1)
			return 0, nil
		}},
	)
	assert.Len(t, s.cron.Entries(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	// nothing runs before the first interval has elapsed
	assert.Zero(t, atomic.LoadInt32(&reminders))
	assert.Len(t, s.cron.Entries(), 2)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&reminders) >= 2
	}, 4*time.Second, 20*time.Millisecond)

	cancel()
	s.Wait()
	ran := atomic.LoadInt32(&reminders)
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, ran, atomic.LoadInt32(&reminders), "no run after stop")
	assert.Zero(t, atomic.LoadInt32(&sweeps))
	assert.Zero(t, atomic.LoadInt32(&disabled))
}

func TestScheduler_WaitWithoutStart(t *testing.T) {
	s := New(logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", 0)))
	s.Wait()
}

func TestScheduler_RunOnce(t *testing.T) {
	s := New(logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", 0)))

	var deadline time.Time
	s.RunOnce(context.Background(), Job{Name: "prune", Run: func(ctx context.Context) (int, error) {
		deadline, _ = ctx.Deadline()
		return 0, nil
	}})
	assert.WithinDuration(t, time.Now().Add(runTimeout), deadline, time.Second)
}
