package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualTicker swaps the poller's ticker for a channel the test drives; the
// returned duration holds the interval the poller asked for.
func manualTicker(p *Poller) (chan time.Time, *time.Duration) {
	tick := make(chan time.Time)
	requested := new(time.Duration)
	p.newTicker = func(d time.Duration) (<-chan time.Time, func()) {
		*requested = d
		return tick, func() {}
	}
	return tick, requested
}

func TestPoller_AutoRefresh(t *testing.T) {
	var fetches int
	p := NewPoller(func(context.Context) (LatestLocation, error) {
		fetches++
		return LatestLocation{Location: Location{ID: "loc"}}, nil
	}, 0, true)
	assert.Equal(t, DefaultPollInterval, p.Interval)
	tick, requested := manualTicker(p)

	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan struct{}, 10)
	done := make(chan error)
	go func() {
		done <- p.Run(ctx, func(LatestLocation, error) { handled <- struct{}{} })
	}()

	<-handled // immediate fetch
	for i := 0; i < 3; i++ {
		tick <- time.Now()
		<-handled
	}
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 4, fetches)
	assert.Equal(t, 10*time.Second, *requested)
}

func TestPoller_Once(t *testing.T) {
	var fetches int
	p := NewPoller(func(context.Context) (LatestLocation, error) {
		fetches++
		return LatestLocation{}, errors.New("no signal")
	}, time.Millisecond, false)
	_, requested := manualTicker(p)

	var gotErr error
	require.NoError(t, p.Run(context.Background(), func(_ LatestLocation, err error) { gotErr = err }))
	assert.Equal(t, 1, fetches)
	assert.Zero(t, *requested, "no ticker without auto refresh")
	assert.EqualError(t, gotErr, "no signal")
}

func TestTimeSince(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "just now"},
		{3 * time.Second, "just now"},
		{45 * time.Second, "45 seconds ago"},
		{time.Minute, "1 minute ago"},
		{2*time.Minute + 10*time.Second, "2 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{49 * time.Hour, "2 days ago"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, timeSince(tc.d), tc.d.String())
	}
}
