package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/incident"
)

type incidentApi struct {
	svc *incident.Service
}

func registerIncidentAPI(g *echo.Group, svc *incident.Service) {
	api := incidentApi{svc: svc}

	ig := g.Group("/incidents")
	ig.POST("", api.report)
	ig.GET("", api.query)
	ig.GET("/:id", api.retrieve)
	ig.PUT("/:id", api.update)
	ig.POST("/:id/transition", api.transition)
	ig.DELETE("/:id", api.destroy)
}

func (api *incidentApi) report(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data incident.NewIncident
	if err = bind(ctx, &data, "NewIncident"); err != nil {
		return err
	}
	inc, err := api.svc.Report(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "reporting incident")
	}
	return ctx.JSON(http.StatusCreated, inc)
}

func (api *incidentApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(incident.QueryFilter)
	if err = bind(ctx, filter, "incident.QueryFilter"); err != nil {
		return err
	}
	incs, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying incidents")
	}
	return list(ctx, incs)
}

func (api *incidentApi) retrieve(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	inc, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting incident")
	}
	return ctx.JSON(http.StatusOK, inc)
}

func (api *incidentApi) update(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data incident.UpdateIncident
	if err = bind(ctx, &data, "UpdateIncident"); err != nil {
		return err
	}
	inc, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating incident")
	}
	return ctx.JSON(http.StatusOK, inc)
}

func (api *incidentApi) transition(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data incident.Transition
	if err = bind(ctx, &data, "incident.Transition"); err != nil {
		return err
	}
	inc, err := api.svc.Transition(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "transitioning incident")
	}
	return ctx.JSON(http.StatusOK, inc)
}

func (api *incidentApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting incident")
	}
	return ctx.NoContent(http.StatusNoContent)
}
