package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/duty"
)

type dutyApi struct {
	svc *duty.Service
}

func registerDutyAPI(g *echo.Group, svc *duty.Service) {
	api := dutyApi{svc: svc}

	dg := g.Group("/duty-descriptions")
	dg.POST("", api.createDescription)
	dg.GET("", api.queryDescriptions)
	dg.PUT("/:id", api.updateDescription)
	dg.DELETE("/:id", api.destroyDescription)

	sg := g.Group("/duty-schedules")
	sg.POST("", api.createSchedule)
	sg.GET("", api.querySchedules)
	sg.PUT("/:id", api.updateSchedule)
	sg.DELETE("/:id", api.destroySchedule)
}

// Descriptions

func (api *dutyApi) createDescription(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data duty.DescriptionData
	if err = bind(ctx, &data, "DescriptionData"); err != nil {
		return err
	}
	d, err := api.svc.CreateDescription(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating duty description")
	}
	return ctx.JSON(http.StatusCreated, d)
}

func (api *dutyApi) queryDescriptions(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	descs, err := api.svc.QueryDescriptions(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying duty descriptions")
	}
	return list(ctx, descs)
}

func (api *dutyApi) updateDescription(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data duty.DescriptionData
	if err = bind(ctx, &data, "DescriptionData"); err != nil {
		return err
	}
	d, err := api.svc.UpdateDescription(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating duty description")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *dutyApi) destroyDescription(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteDescription(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting duty description")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Schedules

func (api *dutyApi) createSchedule(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data duty.ScheduleData
	if err = bind(ctx, &data, "ScheduleData"); err != nil {
		return err
	}
	s, err := api.svc.CreateSchedule(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating duty schedule")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *dutyApi) querySchedules(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(duty.ScheduleFilter)
	if err = bind(ctx, filter, "duty.ScheduleFilter"); err != nil {
		return err
	}
	scheds, err := api.svc.QuerySchedules(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying duty schedules")
	}
	return list(ctx, scheds)
}

func (api *dutyApi) updateSchedule(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data duty.ScheduleData
	if err = bind(ctx, &data, "ScheduleData"); err != nil {
		return err
	}
	s, err := api.svc.UpdateSchedule(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating duty schedule")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *dutyApi) destroySchedule(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSchedule(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting duty schedule")
	}
	return ctx.NoContent(http.StatusNoContent)
}
