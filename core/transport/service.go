package transport

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrVehicleNotFound  = core.NewNotFoundError("vehicle")
	ErrRouteNotFound    = core.NewNotFoundError("route")
	ErrNoLocation       = core.NewNotFoundError("location")
	ErrPlateExists      = core.NewFieldError("plate", "a vehicle with this plate already exists")
	ErrNotADriver       = core.NewFieldError("driver_id", "driver must be an active staff driver")
	ErrVehicleInactive  = core.NewFieldError("vehicle_id", "vehicle is not in service")
	ErrNotAssigned      = core.NewPermissionError("only the assigned driver can share this vehicle's location")
	ErrRecordedInFuture = core.NewFieldError("recorded_at", "position cannot be recorded in the future")
)

const defaultHistoryLimit = 500

type (
	Repository interface {
		CreateVehicle(ctx context.Context, v Vehicle) (Vehicle, error)
		GetVehicle(ctx context.Context, id string) (Vehicle, error)
		QueryVehicles(ctx context.Context, filter *VehicleFilter) ([]Vehicle, error)
		UpdateVehicle(ctx context.Context, v Vehicle) (Vehicle, error)
		DeleteVehicle(ctx context.Context, id string) error

		CreateRoute(ctx context.Context, r Route) (Route, error)
		GetRoute(ctx context.Context, id string) (Route, error)
		QueryRoutes(ctx context.Context, filter *RouteFilter) ([]Route, error)
		UpdateRoute(ctx context.Context, r Route) (Route, error)
		DeleteRoute(ctx context.Context, id string) error

		InsertLocation(ctx context.Context, loc Location) (Location, error)
		// LatestLocation returns the most recent point of a vehicle, ErrNoLocation if it has none.
		LatestLocation(ctx context.Context, vehicleID string) (Location, error)
		// LatestLocations returns the most recent point of each of the vehicles that have one.
		LatestLocations(ctx context.Context, vehicleIDs []string) ([]Location, error)
		// QueryLocations returns the points recorded in [from, to), most recent first.
		QueryLocations(ctx context.Context, vehicleID string, from, to time.Time, limit int) ([]Location, error)
		DeleteLocationsBefore(ctx context.Context, before time.Time) (int, error)
	}

	// Directory looks up profiles.
	Directory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo       Repository
		users      Directory
		children   child.Guard
		publisher  core.Publisher
		validate   *validator.Validate
		staleAfter time.Duration
		now        func() time.Time
	}
)

func NewService(
	repo Repository,
	users Directory,
	children child.Guard,
	publisher core.Publisher,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		children:   children,
		publisher:  publisher,
		validate:   validate,
		staleAfter: conf.Tracking.StaleAfter,
		now:        time.Now,
	}
}

func (svc *Service) checkDriver(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	usr, err := svc.users.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return ErrNotADriver
		}
		return errors.Wrap(err, "finding driver")
	}
	if !usr.IsActive || !usr.HasRole(user.RoleStaffDriver) {
		return ErrNotADriver
	}
	return nil
}

func (svc *Service) checkPlate(ctx context.Context, plate, exclID string) error {
	vehicles, err := svc.repo.QueryVehicles(ctx, nil)
	if err != nil {
		return err
	}
	for _, v := range vehicles {
		if v.Plate == plate && v.ID != exclID {
			return ErrPlateExists
		}
	}
	return nil
}

func (svc *Service) CreateVehicle(ctx context.Context, actor user.User, nv NewVehicle) (Vehicle, error) {
	if !actor.IsAdmin() {
		return Vehicle{}, core.ErrPermissionDenied
	}
	nv.clean()
	if err := svc.validate.Struct(nv); err != nil {
		return Vehicle{}, err
	}
	if err := svc.checkPlate(ctx, nv.Plate, ""); err != nil {
		return Vehicle{}, err
	}
	if err := svc.checkDriver(ctx, nv.DriverID); err != nil {
		return Vehicle{}, err
	}

	now := svc.now().UTC()
	return svc.repo.CreateVehicle(ctx, Vehicle{
		Plate:     nv.Plate,
		Name:      nv.Name,
		DriverID:  null.NewString(nv.DriverID, nv.DriverID != ""),
		Capacity:  nv.Capacity,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// visibleVehicleIDs returns the vehicles `actor` may follow, all=true when unrestricted.
func (svc *Service) visibleVehicleIDs(ctx context.Context, actor user.User) ([]string, bool, error) {
	switch {
	case actor.IsAdmin() || actor.IsEducator():
		return nil, true, nil

	case actor.HasRole(user.RoleStaffDriver):
		vehicles, err := svc.repo.QueryVehicles(ctx, &VehicleFilter{DriverID: actor.ID})
		if err != nil {
			return nil, false, err
		}
		ids := make([]string, 0, len(vehicles))
		for _, v := range vehicles {
			ids = append(ids, v.ID)
		}
		return ids, false, nil

	case actor.IsParent():
		childIDs, _, err := svc.children.VisibleIDs(ctx, actor)
		if err != nil {
			return nil, false, err
		}
		if len(childIDs) == 0 {
			return []string{}, false, nil
		}
		routes, err := svc.repo.QueryRoutes(ctx, &RouteFilter{ChildIDs: childIDs})
		if err != nil {
			return nil, false, err
		}
		ids := make([]string, 0, len(routes))
		for _, r := range routes {
			if !core.ContainsString(ids, r.VehicleID) {
				ids = append(ids, r.VehicleID)
			}
		}
		return ids, false, nil
	}
	return []string{}, false, nil
}

func (svc *Service) GetVehicle(ctx context.Context, actor user.User, id string) (Vehicle, error) {
	ids, all, err := svc.visibleVehicleIDs(ctx, actor)
	if err != nil {
		return Vehicle{}, err
	}
	if !all && !core.ContainsString(ids, id) {
		return Vehicle{}, ErrVehicleNotFound
	}
	return svc.repo.GetVehicle(ctx, id)
}

func (svc *Service) QueryVehicles(ctx context.Context, actor user.User, filter *VehicleFilter) ([]Vehicle, error) {
	if filter == nil {
		filter = new(VehicleFilter)
	}
	filter.IDs = core.CleanStrings(filter.IDs)
	if len(filter.IDs) == 0 {
		filter.IDs = nil
	}

	ids, all, err := svc.visibleVehicleIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !all {
		filter.IDs = core.RestrictIDs(filter.IDs, ids)
	}
	return svc.repo.QueryVehicles(ctx, filter)
}

func (svc *Service) UpdateVehicle(ctx context.Context, actor user.User, id string, uv UpdateVehicle) (Vehicle, error) {
	if !actor.IsAdmin() {
		return Vehicle{}, core.ErrPermissionDenied
	}
	uv.clean()
	if err := svc.validate.Struct(uv); err != nil {
		return Vehicle{}, err
	}
	v, err := svc.repo.GetVehicle(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}

	if uv.Plate != nil && *uv.Plate != v.Plate {
		if err = svc.checkPlate(ctx, *uv.Plate, v.ID); err != nil {
			return Vehicle{}, err
		}
		v.Plate = *uv.Plate
	}
	if uv.DriverID != nil {
		if err = svc.checkDriver(ctx, *uv.DriverID); err != nil {
			return Vehicle{}, err
		}
		v.DriverID = null.NewString(*uv.DriverID, *uv.DriverID != "")
	}
	if uv.Name != nil {
		v.Name = *uv.Name
	}
	if uv.Capacity != nil {
		v.Capacity = *uv.Capacity
	}
	if uv.IsActive != nil {
		v.IsActive = *uv.IsActive
	}
	v.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateVehicle(ctx, v)
}

func (svc *Service) DeleteVehicle(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteVehicle(ctx, id)
}
