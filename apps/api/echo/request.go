package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/request"
)

type requestApi struct {
	svc *request.Service
}

func registerRequestAPI(g *echo.Group, svc *request.Service) {
	api := requestApi{svc: svc}

	qg := g.Group("/requests")
	qg.POST("", api.create)
	qg.GET("", api.query)
	qg.GET("/:id", api.retrieve)
	qg.PUT("/:id", api.update)
	qg.POST("/:id/transition", api.transition)
	qg.DELETE("/:id", api.destroy)
}

func (api *requestApi) create(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data request.NewRequest
	if err = bind(ctx, &data, "NewRequest"); err != nil {
		return err
	}
	req, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *requestApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(request.QueryFilter)
	if err = bind(ctx, filter, "request.QueryFilter"); err != nil {
		return err
	}
	reqs, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying requests")
	}
	return list(ctx, reqs)
}

func (api *requestApi) retrieve(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	req, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requestApi) update(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data request.UpdateRequest
	if err = bind(ctx, &data, "UpdateRequest"); err != nil {
		return err
	}
	req, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requestApi) transition(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data request.Transition
	if err = bind(ctx, &data, "request.Transition"); err != nil {
		return err
	}
	req, err := api.svc.Transition(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "transitioning request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requestApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting request")
	}
	return ctx.NoContent(http.StatusNoContent)
}
