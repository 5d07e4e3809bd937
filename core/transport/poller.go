package transport

import (
	"context"
	"time"
)

const DefaultPollInterval = 10 * time.Second

// FetchFunc reads the current state being followed (eg. a vehicle's latest location).
type FetchFunc func(ctx context.Context) (LatestLocation, error)

// Poller re-reads a vehicle's latest location at a fixed interval.
// With AutoRefresh off it reads exactly once.
type Poller struct {
	Interval    time.Duration
	AutoRefresh bool

	fetch     FetchFunc
	newTicker func(d time.Duration) (<-chan time.Time, func())
}

func NewPoller(fetch FetchFunc, interval time.Duration, autoRefresh bool) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		Interval:    interval,
		AutoRefresh: autoRefresh,
		fetch:       fetch,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Run fetches immediately, then once per tick until ctx is done when AutoRefresh is on.
// Every result (or fetch error) is handed to `handle`. It returns ctx.Err() once cancelled.
func (p *Poller) Run(ctx context.Context, handle func(LatestLocation, error)) error {
	handle(p.fetch(ctx))
	if !p.AutoRefresh {
		return nil
	}

	tick, stop := p.newTicker(p.Interval)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			handle(p.fetch(ctx))
		}
	}
}
