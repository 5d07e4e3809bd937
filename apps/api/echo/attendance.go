package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

type dateRange struct {
	From core.Date `query:"from"`
	To   core.Date `query:"to"`
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance")
	ag.POST("", api.mark)
	ag.GET("", api.query)
	ag.POST("/:id/check-out", api.checkOut)
	ag.DELETE("/:id", api.destroy)

	g.GET("/children/:id/attendance-summary", api.summary)
}

// mark records (or re-records) a child's status for a day.
func (api *attendanceApi) mark(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data attendance.Mark
	if err = bind(ctx, &data, "attendance.Mark"); err != nil {
		return err
	}
	a, err := api.svc.Mark(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(attendance.QueryFilter)
	if err = bind(ctx, filter, "attendance.QueryFilter"); err != nil {
		return err
	}
	filter.Clean()
	rows, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return list(ctx, rows)
}

func (api *attendanceApi) checkOut(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.CheckOut(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "checking out")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var rng dateRange
	if err = bind(ctx, &rng, "dateRange"); err != nil {
		return err
	}
	sum, err := api.svc.Summarize(ctx.Request().Context(), usr, ctx.Param("id"), rng.From, rng.To)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}
