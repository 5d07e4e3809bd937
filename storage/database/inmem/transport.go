package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/yuva/core/transport"
)

type transportRepository struct {
	vehicles  *table[transport.Vehicle]
	routes    *table[transport.Route]
	locations *table[transport.Location]
}

var _ transport.Repository = (*transportRepository)(nil) // interface compliance check

func NewTransportRepository(db *DB) transport.Repository {
	return &transportRepository{vehicles: db.vehicles, routes: db.routes, locations: db.locations}
}

func (repo *transportRepository) CreateVehicle(_ context.Context, v transport.Vehicle) (transport.Vehicle, error) {
	v.ID = newID()
	repo.vehicles.insert(v.ID, v)
	return v, nil
}

func (repo *transportRepository) GetVehicle(_ context.Context, id string) (transport.Vehicle, error) {
	if v, ok := repo.vehicles.get(id); ok {
		return v, nil
	}
	return transport.Vehicle{}, transport.ErrVehicleNotFound
}

func (repo *transportRepository) QueryVehicles(_ context.Context, filter *transport.VehicleFilter) ([]transport.Vehicle, error) {
	rows := repo.vehicles.filter(func(v transport.Vehicle) bool {
		if filter == nil {
			return true
		}
		if filter.IDs != nil && !in(v.ID, filter.IDs) {
			return false
		}
		if filter.DriverID != "" && v.DriverID.String != filter.DriverID {
			return false
		}
		if filter.ActiveOnly && !v.IsActive {
			return false
		}
		return true
	})
	return sorted(rows, func(a, b transport.Vehicle) bool { return a.Plate < b.Plate }), nil
}

func (repo *transportRepository) UpdateVehicle(_ context.Context, v transport.Vehicle) (transport.Vehicle, error) {
	if !repo.vehicles.update(v.ID, v) {
		return transport.Vehicle{}, transport.ErrVehicleNotFound
	}
	return v, nil
}

func (repo *transportRepository) DeleteVehicle(_ context.Context, id string) error {
	if repo.vehicles.delete(id) == 0 {
		return transport.ErrVehicleNotFound
	}
	// ON DELETE CASCADE
	for _, r := range repo.routes.filter(func(r transport.Route) bool { return r.VehicleID == id }) {
		repo.routes.delete(r.ID)
	}
	for _, l := range repo.locations.filter(func(l transport.Location) bool { return l.VehicleID == id }) {
		repo.locations.delete(l.ID)
	}
	return nil
}

func (repo *transportRepository) CreateRoute(_ context.Context, r transport.Route) (transport.Route, error) {
	r.ID = newID()
	repo.routes.insert(r.ID, r)
	return r, nil
}

func (repo *transportRepository) GetRoute(_ context.Context, id string) (transport.Route, error) {
	if r, ok := repo.routes.get(id); ok {
		return r, nil
	}
	return transport.Route{}, transport.ErrRouteNotFound
}

func (repo *transportRepository) QueryRoutes(_ context.Context, filter *transport.RouteFilter) ([]transport.Route, error) {
	rows := repo.routes.filter(func(r transport.Route) bool {
		if filter == nil {
			return true
		}
		if filter.VehicleID != "" && r.VehicleID != filter.VehicleID {
			return false
		}
		if filter.Direction != "" && r.Direction != filter.Direction {
			return false
		}
		if filter.ChildIDs != nil && !anyIn(r.ChildIDs, filter.ChildIDs) {
			return false
		}
		return true
	})
	return sorted(rows, func(a, b transport.Route) bool { return a.Name < b.Name }), nil
}

func (repo *transportRepository) UpdateRoute(_ context.Context, r transport.Route) (transport.Route, error) {
	if !repo.routes.update(r.ID, r) {
		return transport.Route{}, transport.ErrRouteNotFound
	}
	return r, nil
}

func (repo *transportRepository) DeleteRoute(_ context.Context, id string) error {
	if repo.routes.delete(id) == 0 {
		return transport.ErrRouteNotFound
	}
	return nil
}

func (repo *transportRepository) InsertLocation(_ context.Context, loc transport.Location) (transport.Location, error) {
	if _, ok := repo.vehicles.get(loc.VehicleID); !ok {
		return transport.Location{}, transport.ErrVehicleNotFound
	}
	loc.ID = newID()
	repo.locations.insert(loc.ID, loc)
	return loc, nil
}

func (repo *transportRepository) LatestLocation(_ context.Context, vehicleID string) (transport.Location, error) {
	var (
		latest transport.Location
		found  bool
	)
	for _, loc := range repo.locations.filter(func(l transport.Location) bool { return l.VehicleID == vehicleID }) {
		if !found || loc.RecordedAt.After(latest.RecordedAt) {
			latest, found = loc, true
		}
	}
	if !found {
		return transport.Location{}, transport.ErrNoLocation
	}
	return latest, nil
}

func (repo *transportRepository) LatestLocations(_ context.Context, vehicleIDs []string) ([]transport.Location, error) {
	latest := make(map[string]transport.Location)
	for _, loc := range repo.locations.filter(func(l transport.Location) bool { return in(l.VehicleID, vehicleIDs) }) {
		if cur, ok := latest[loc.VehicleID]; !ok || loc.RecordedAt.After(cur.RecordedAt) {
			latest[loc.VehicleID] = loc
		}
	}
	locs := make([]transport.Location, 0, len(latest))
	for _, id := range vehicleIDs {
		if loc, ok := latest[id]; ok {
			locs = append(locs, loc)
		}
	}
	return locs, nil
}

func (repo *transportRepository) QueryLocations(_ context.Context, vehicleID string, from, to time.Time, limit int) ([]transport.Location, error) {
	rows := repo.locations.filter(func(l transport.Location) bool {
		return l.VehicleID == vehicleID && !l.RecordedAt.Before(from) && l.RecordedAt.Before(to)
	})
	rows = sorted(rows, func(a, b transport.Location) bool { return a.RecordedAt.After(b.RecordedAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (repo *transportRepository) DeleteLocationsBefore(_ context.Context, before time.Time) (int, error) {
	repo.locations.mu.Lock()
	defer repo.locations.mu.Unlock()

	var ids []string
	for id, l := range repo.locations.rows {
		if l.RecordedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	return repo.locations.deleteLocked(ids...), nil
}
