package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

// clock skew tolerated on device timestamps
const maxFutureSkew = time.Minute

// ReportLocation stores one position of a vehicle. Only its assigned driver (or an admin) may report.
// Every call inserts exactly one row.
func (svc *Service) ReportLocation(ctx context.Context, actor user.User, vehicleID string, lr LocationReport) (Location, error) {
	v, err := svc.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return Location{}, err
	}
	if !(actor.IsAdmin() || (actor.HasRole(user.RoleStaffDriver) && v.DriverID.Valid && v.DriverID.String == actor.ID)) {
		return Location{}, ErrNotAssigned
	}
	if !v.IsActive {
		return Location{}, ErrVehicleInactive
	}
	if err = svc.validate.Struct(lr); err != nil {
		return Location{}, err
	}

	now := svc.now().UTC()
	loc := Location{
		VehicleID:  v.ID,
		Latitude:   *lr.Latitude,
		Longitude:  *lr.Longitude,
		Speed:      null.Float64FromPtr(lr.Speed),
		Heading:    null.Float64FromPtr(lr.Heading),
		Accuracy:   null.Float64FromPtr(lr.Accuracy),
		RecordedAt: now,
		CreatedAt:  now,
	}
	if lr.RecordedAt != nil && !lr.RecordedAt.IsZero() {
		if lr.RecordedAt.After(now.Add(maxFutureSkew)) {
			return Location{}, ErrRecordedInFuture
		}
		loc.RecordedAt = lr.RecordedAt.UTC()
	}

	if loc, err = svc.repo.InsertLocation(ctx, loc); err != nil {
		return Location{}, errors.Wrap(err, "inserting location")
	}
	svc.publisher.Publish(core.Event{Topic: core.TopicLocationTracking, Action: core.ActionInsert, ID: loc.ID})
	return loc, nil
}

func (svc *Service) latest(loc Location, now time.Time) LatestLocation {
	age := now.Sub(loc.RecordedAt)
	return LatestLocation{
		Location:  loc,
		TimeSince: timeSince(age),
		Stale:     age > svc.staleAfter,
	}
}

// Latest returns the most recent position of a vehicle.
func (svc *Service) Latest(ctx context.Context, actor user.User, vehicleID string) (LatestLocation, error) {
	if _, err := svc.GetVehicle(ctx, actor, vehicleID); err != nil {
		return LatestLocation{}, err
	}
	loc, err := svc.repo.LatestLocation(ctx, vehicleID)
	if err != nil {
		return LatestLocation{}, err
	}
	return svc.latest(loc, svc.now().UTC()), nil
}

// LatestAll returns the most recent position of every active vehicle `actor` may follow.
func (svc *Service) LatestAll(ctx context.Context, actor user.User) ([]LatestLocation, error) {
	vehicles, err := svc.QueryVehicles(ctx, actor, &VehicleFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return []LatestLocation{}, nil
	}
	ids := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
	}

	locs, err := svc.repo.LatestLocations(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := svc.now().UTC()
	latest := make([]LatestLocation, 0, len(locs))
	for _, loc := range locs {
		latest = append(latest, svc.latest(loc, now))
	}
	return latest, nil
}

// History returns the points of a vehicle recorded between two days (inclusive), most recent first.
func (svc *Service) History(ctx context.Context, actor user.User, vehicleID string, filter *HistoryFilter) ([]Location, error) {
	if !actor.IsAdmin() {
		return nil, core.ErrPermissionDenied
	}
	if _, err := svc.repo.GetVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = new(HistoryFilter)
	}

	today := core.DateOf(svc.now().UTC())
	if filter.To.IsZero() {
		filter.To = today
	}
	if filter.From.IsZero() {
		filter.From = filter.To
	}
	if filter.To.Before(filter.From) {
		return nil, core.NewFieldError("to", "end date must come after start date")
	}
	if filter.Limit <= 0 || filter.Limit > defaultHistoryLimit {
		filter.Limit = defaultHistoryLimit
	}
	return svc.repo.QueryLocations(ctx, vehicleID, filter.From.Time, filter.To.AddDate(0, 0, 1), filter.Limit)
}

// Prune deletes the points older than `retention`.
func (svc *Service) Prune(ctx context.Context, retention time.Duration) (int, error) {
	n, err := svc.repo.DeleteLocationsBefore(ctx, svc.now().UTC().Add(-retention))
	if err != nil {
		return 0, errors.Wrap(err, "pruning locations")
	}
	return n, nil
}
