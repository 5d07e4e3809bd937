package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/transport"
	"github.com/trezcool/yuva/core/user"
)

// track prints the latest location of a vehicle as seen by `uname`. With `watch` it polls until interrupted.
func (cli *commandLine) track(vehicleID, uname string, watch bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	actor, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err != nil {
		return err
	}

	var lastErr error
	poller := transport.NewPoller(func(ctx context.Context) (transport.LatestLocation, error) {
		return cli.transportSvc.Latest(ctx, actor, vehicleID)
	}, cli.pollInterval, watch)

	err = poller.Run(ctx, func(loc transport.LatestLocation, err error) {
		lastErr = err
		if err != nil {
			fmt.Fprintf(cli.out, "error: %v\n", err)
			return
		}
		fmt.Fprintln(cli.out, formatLocation(loc))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}
	return lastErr
}

func formatLocation(loc transport.LatestLocation) string {
	s := fmt.Sprintf("%.6f,%.6f", loc.Latitude, loc.Longitude)
	if loc.Speed.Valid {
		s += fmt.Sprintf(" %.1f km/h", loc.Speed.Float64)
	}
	s += " (" + loc.TimeSince + ")"
	if loc.Stale {
		s += " stale"
	}
	return s
}
