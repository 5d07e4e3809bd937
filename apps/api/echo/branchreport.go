package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/branchreport"
)

type branchReportApi struct {
	svc *branchreport.Service
}

func registerBranchReportAPI(g *echo.Group, svc *branchreport.Service) {
	api := branchReportApi{svc: svc}

	bg := g.Group("/branch-reports")
	bg.POST("", api.create)
	bg.GET("", api.query)
	bg.GET("/:id", api.retrieve)
	bg.PUT("/:id", api.update)
	bg.DELETE("/:id", api.destroy)
}

func (api *branchReportApi) create(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data branchreport.ReportData
	if err = bind(ctx, &data, "branchreport.ReportData"); err != nil {
		return err
	}
	r, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating branch report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *branchReportApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(branchreport.QueryFilter)
	if err = bind(ctx, filter, "branchreport.QueryFilter"); err != nil {
		return err
	}
	reports, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying branch reports")
	}
	return list(ctx, reports)
}

func (api *branchReportApi) retrieve(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	r, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting branch report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *branchReportApi) update(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data branchreport.ReportData
	if err = bind(ctx, &data, "branchreport.ReportData"); err != nil {
		return err
	}
	r, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating branch report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *branchReportApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting branch report")
	}
	return ctx.NoContent(http.StatusNoContent)
}
