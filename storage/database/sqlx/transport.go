package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/transport"
)

const (
	vehicleTable  = "service_vehicle"
	routeTable    = "service_route"
	locationTable = "location_tracking"
)

var (
	vehicleColumns  = columns{"id", "plate", "name", "driver_id", "capacity", "is_active", "created_at", "updated_at"}
	routeColumns    = columns{"id", "vehicle_id", "name", "direction", "stops", "child_ids", "created_at", "updated_at"}
	locationColumns = columns{
		"id", "vehicle_id", "latitude", "longitude", "speed", "heading", "accuracy", "recorded_at", "created_at",
	}
)

type transportRepository struct {
	db *sqlx.DB
}

var _ transport.Repository = (*transportRepository)(nil) // interface compliance check

func NewTransportRepository(db *sqlx.DB) transport.Repository {
	return &transportRepository{db: db}
}

func (repo *transportRepository) CreateVehicle(ctx context.Context, v transport.Vehicle) (transport.Vehicle, error) {
	v.ID = newID()
	if err := insertRow(ctx, repo.db, vehicleColumns, vehicleTable, v); err != nil {
		if isUniqueViolation(err) {
			return transport.Vehicle{}, transport.ErrPlateExists
		}
		return transport.Vehicle{}, err
	}
	return v, nil
}

func (repo *transportRepository) GetVehicle(ctx context.Context, id string) (transport.Vehicle, error) {
	return getByID[transport.Vehicle](ctx, repo.db, vehicleColumns, vehicleTable, id, transport.ErrVehicleNotFound)
}

func (repo *transportRepository) QueryVehicles(ctx context.Context, filter *transport.VehicleFilter) ([]transport.Vehicle, error) {
	w := new(where)
	if filter != nil {
		if filter.IDs != nil {
			w.in("id", filter.IDs)
		}
		if filter.DriverID != "" {
			w.and("driver_id::text = ?", filter.DriverID)
		}
		if filter.ActiveOnly {
			w.and("is_active")
		}
	}
	return selectWhere[transport.Vehicle](ctx, repo.db, w, vehicleColumns.selectFrom(vehicleTable), "ORDER BY plate", "querying vehicles")
}

func (repo *transportRepository) UpdateVehicle(ctx context.Context, v transport.Vehicle) (transport.Vehicle, error) {
	if err := updateRow(ctx, repo.db, vehicleColumns, vehicleTable, v, transport.ErrVehicleNotFound); err != nil {
		if isUniqueViolation(err) {
			return transport.Vehicle{}, transport.ErrPlateExists
		}
		return transport.Vehicle{}, err
	}
	return v, nil
}

// DeleteVehicle also removes its routes and location history (ON DELETE CASCADE).
func (repo *transportRepository) DeleteVehicle(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, vehicleTable, id, transport.ErrVehicleNotFound)
}

func (repo *transportRepository) CreateRoute(ctx context.Context, r transport.Route) (transport.Route, error) {
	r.ID = newID()
	fillRouteArrays(&r)
	if err := insertRow(ctx, repo.db, routeColumns, routeTable, r); err != nil {
		return transport.Route{}, err
	}
	return r, nil
}

func fillRouteArrays(r *transport.Route) {
	if r.Stops == nil {
		r.Stops = pq.StringArray{}
	}
	if r.ChildIDs == nil {
		r.ChildIDs = pq.StringArray{}
	}
}

func (repo *transportRepository) GetRoute(ctx context.Context, id string) (transport.Route, error) {
	return getByID[transport.Route](ctx, repo.db, routeColumns, routeTable, id, transport.ErrRouteNotFound)
}

func (repo *transportRepository) QueryRoutes(ctx context.Context, filter *transport.RouteFilter) ([]transport.Route, error) {
	w := new(where)
	if filter != nil {
		if filter.VehicleID != "" {
			w.and("vehicle_id::text = ?", filter.VehicleID)
		}
		if filter.Direction != "" {
			w.and("direction = ?", filter.Direction)
		}
		if filter.ChildIDs != nil {
			w.and("child_ids && ?::text[]", pq.Array(filter.ChildIDs))
		}
	}
	return selectWhere[transport.Route](ctx, repo.db, w, routeColumns.selectFrom(routeTable), "ORDER BY name", "querying routes")
}

func (repo *transportRepository) UpdateRoute(ctx context.Context, r transport.Route) (transport.Route, error) {
	fillRouteArrays(&r)
	if err := updateRow(ctx, repo.db, routeColumns, routeTable, r, transport.ErrRouteNotFound); err != nil {
		return transport.Route{}, err
	}
	return r, nil
}

func (repo *transportRepository) DeleteRoute(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, routeTable, id, transport.ErrRouteNotFound)
}

func (repo *transportRepository) InsertLocation(ctx context.Context, loc transport.Location) (transport.Location, error) {
	loc.ID = newID()
	if err := insertRow(ctx, repo.db, locationColumns, locationTable, loc); err != nil {
		return transport.Location{}, err
	}
	return loc, nil
}

func (repo *transportRepository) LatestLocation(ctx context.Context, vehicleID string) (transport.Location, error) {
	if _, err := uuid.Parse(vehicleID); err != nil {
		return transport.Location{}, transport.ErrNoLocation
	}
	var loc transport.Location
	err := repo.db.GetContext(ctx, &loc,
		locationColumns.selectFrom(locationTable)+" WHERE vehicle_id = $1 ORDER BY recorded_at DESC LIMIT 1", vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transport.Location{}, transport.ErrNoLocation
		}
		return transport.Location{}, errors.Wrap(err, "getting latest location")
	}
	return loc, nil
}

func (repo *transportRepository) LatestLocations(ctx context.Context, vehicleIDs []string) ([]transport.Location, error) {
	w := new(where)
	w.in("vehicle_id", vehicleIDs)
	q := "SELECT DISTINCT ON (vehicle_id) " + locationColumns.String() + " FROM " + locationTable
	locs, err := selectWhere[transport.Location](ctx, repo.db, w, q, "ORDER BY vehicle_id, recorded_at DESC", "querying latest locations")
	if err != nil {
		return nil, err
	}

	// keep the order of vehicleIDs
	byVehicle := make(map[string]transport.Location, len(locs))
	for _, loc := range locs {
		byVehicle[loc.VehicleID] = loc
	}
	ordered := make([]transport.Location, 0, len(locs))
	for _, id := range vehicleIDs {
		if loc, ok := byVehicle[id]; ok {
			ordered = append(ordered, loc)
		}
	}
	return ordered, nil
}

func (repo *transportRepository) QueryLocations(ctx context.Context, vehicleID string, from, to time.Time, limit int) ([]transport.Location, error) {
	w := new(where)
	w.and("vehicle_id::text = ?", vehicleID)
	w.and("recorded_at >= ?", from)
	w.and("recorded_at < ?", to)
	suffix := "ORDER BY recorded_at DESC"
	if limit > 0 {
		suffix += " LIMIT ?"
		w.args = append(w.args, limit)
	}
	return selectWhere[transport.Location](ctx, repo.db, w, locationColumns.selectFrom(locationTable), suffix, "querying locations")
}

func (repo *transportRepository) DeleteLocationsBefore(ctx context.Context, before time.Time) (int, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM location_tracking WHERE recorded_at < $1", before)
	if err != nil {
		return 0, errors.Wrap(err, "pruning locations")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "reading affected rows")
	}
	return int(n), nil
}
