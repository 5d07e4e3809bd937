package transport

import (
	"context"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

func (svc *Service) CreateRoute(ctx context.Context, actor user.User, nr NewRoute) (Route, error) {
	if !actor.IsAdmin() {
		return Route{}, core.ErrPermissionDenied
	}
	nr.clean()
	if err := svc.validate.Struct(nr); err != nil {
		return Route{}, err
	}
	if _, err := svc.repo.GetVehicle(ctx, nr.VehicleID); err != nil {
		return Route{}, err
	}
	if err := svc.checkChildren(ctx, actor, nr.ChildIDs); err != nil {
		return Route{}, err
	}

	now := svc.now().UTC()
	r := Route{
		VehicleID: nr.VehicleID,
		Name:      nr.Name,
		Direction: nr.Direction,
		Stops:     nr.Stops,
		ChildIDs:  nr.ChildIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.Stops == nil {
		r.Stops = []string{}
	}
	if r.ChildIDs == nil {
		r.ChildIDs = []string{}
	}
	return svc.repo.CreateRoute(ctx, r)
}

func (svc *Service) checkChildren(ctx context.Context, actor user.User, ids []string) error {
	for _, id := range ids {
		if _, err := svc.children.Authorize(ctx, actor, id); err != nil {
			if core.IsNotFound(err) {
				return core.NewFieldError("child_ids", "unknown child "+id)
			}
			return err
		}
	}
	return nil
}

// QueryRoutes lists routes. Parents get the routes carrying their children, with other children hidden.
func (svc *Service) QueryRoutes(ctx context.Context, actor user.User, filter *RouteFilter) ([]Route, error) {
	if filter == nil {
		filter = new(RouteFilter)
	}
	filter.VehicleID = core.CleanString(filter.VehicleID)
	filter.Direction = core.CleanString(filter.Direction, true /* lower */)
	filter.ChildIDs = core.CleanStrings(filter.ChildIDs)
	if len(filter.ChildIDs) == 0 {
		filter.ChildIDs = nil
	}

	if actor.IsParent() && !actor.IsEmployee() {
		ids, _, err := svc.children.VisibleIDs(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.ChildIDs = core.RestrictIDs(filter.ChildIDs, ids)
		if len(filter.ChildIDs) == 0 {
			return []Route{}, nil
		}
		routes, err := svc.repo.QueryRoutes(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range routes {
			routes[i].ChildIDs = core.RestrictIDs(routes[i].ChildIDs, ids)
		}
		return routes, nil
	}
	if !actor.IsEmployee() {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.QueryRoutes(ctx, filter)
}

func (svc *Service) UpdateRoute(ctx context.Context, actor user.User, id string, ur UpdateRoute) (Route, error) {
	if !actor.IsAdmin() {
		return Route{}, core.ErrPermissionDenied
	}
	ur.clean()
	if err := svc.validate.Struct(ur); err != nil {
		return Route{}, err
	}
	r, err := svc.repo.GetRoute(ctx, id)
	if err != nil {
		return Route{}, err
	}

	if ur.VehicleID != nil && *ur.VehicleID != r.VehicleID {
		if _, err = svc.repo.GetVehicle(ctx, *ur.VehicleID); err != nil {
			return Route{}, err
		}
		r.VehicleID = *ur.VehicleID
	}
	if ur.ChildIDs != nil {
		if err = svc.checkChildren(ctx, actor, ur.ChildIDs); err != nil {
			return Route{}, err
		}
		r.ChildIDs = ur.ChildIDs
	}
	if ur.Name != nil {
		r.Name = *ur.Name
	}
	if ur.Direction != nil {
		r.Direction = *ur.Direction
	}
	if ur.Stops != nil {
		r.Stops = ur.Stops
	}
	r.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateRoute(ctx, r)
}

func (svc *Service) DeleteRoute(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteRoute(ctx, id)
}
