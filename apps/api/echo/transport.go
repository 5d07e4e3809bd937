package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/transport"
)

type transportApi struct {
	svc *transport.Service
}

func registerTransportAPI(g *echo.Group, svc *transport.Service) {
	api := transportApi{svc: svc}

	vg := g.Group("/vehicles")
	vg.POST("", api.createVehicle)
	vg.GET("", api.queryVehicles)
	vg.GET("/:id", api.retrieveVehicle)
	vg.PUT("/:id", api.updateVehicle)
	vg.DELETE("/:id", api.destroyVehicle)
	vg.POST("/:id/locations", api.reportLocation)
	vg.GET("/:id/locations", api.history, requireRole(isAdmin))
	vg.GET("/:id/locations/latest", api.latest)

	g.GET("/locations/latest", api.latestAll)

	rg := g.Group("/routes")
	rg.POST("", api.createRoute)
	rg.GET("", api.queryRoutes)
	rg.PUT("/:id", api.updateRoute)
	rg.DELETE("/:id", api.destroyRoute)
}

// Vehicles

func (api *transportApi) createVehicle(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data transport.NewVehicle
	if err = bind(ctx, &data, "NewVehicle"); err != nil {
		return err
	}
	v, err := api.svc.CreateVehicle(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating vehicle")
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *transportApi) queryVehicles(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(transport.VehicleFilter)
	if err = bind(ctx, filter, "transport.VehicleFilter"); err != nil {
		return err
	}
	vehicles, err := api.svc.QueryVehicles(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying vehicles")
	}
	return list(ctx, vehicles)
}

func (api *transportApi) retrieveVehicle(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	v, err := api.svc.GetVehicle(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting vehicle")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *transportApi) updateVehicle(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data transport.UpdateVehicle
	if err = bind(ctx, &data, "UpdateVehicle"); err != nil {
		return err
	}
	v, err := api.svc.UpdateVehicle(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating vehicle")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *transportApi) destroyVehicle(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteVehicle(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting vehicle")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Locations

func (api *transportApi) reportLocation(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data transport.LocationReport
	if err = bind(ctx, &data, "LocationReport"); err != nil {
		return err
	}
	loc, err := api.svc.ReportLocation(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "reporting location")
	}
	return ctx.JSON(http.StatusCreated, loc)
}

func (api *transportApi) latest(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	loc, err := api.svc.Latest(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting latest location")
	}
	return ctx.JSON(http.StatusOK, loc)
}

func (api *transportApi) latestAll(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	locs, err := api.svc.LatestAll(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "getting latest locations")
	}
	return list(ctx, locs)
}

func (api *transportApi) history(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(transport.HistoryFilter)
	if err = bind(ctx, filter, "transport.HistoryFilter"); err != nil {
		return err
	}
	locs, err := api.svc.History(ctx.Request().Context(), usr, ctx.Param("id"), filter)
	if err != nil {
		return errors.Wrap(err, "getting location history")
	}
	return list(ctx, locs)
}

// Routes

func (api *transportApi) createRoute(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data transport.NewRoute
	if err = bind(ctx, &data, "NewRoute"); err != nil {
		return err
	}
	r, err := api.svc.CreateRoute(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating route")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *transportApi) queryRoutes(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(transport.RouteFilter)
	if err = bind(ctx, filter, "transport.RouteFilter"); err != nil {
		return err
	}
	routes, err := api.svc.QueryRoutes(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying routes")
	}
	return list(ctx, routes)
}

func (api *transportApi) updateRoute(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data transport.UpdateRoute
	if err = bind(ctx, &data, "UpdateRoute"); err != nil {
		return err
	}
	r, err := api.svc.UpdateRoute(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating route")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *transportApi) destroyRoute(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteRoute(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting route")
	}
	return ctx.NoContent(http.StatusNoContent)
}
