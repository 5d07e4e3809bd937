package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/calendar"
)

type calendarApi struct {
	svc *calendar.Service
}

func registerCalendarAPI(g *echo.Group, svc *calendar.Service) {
	api := calendarApi{svc: svc}

	cg := g.Group("/calendar-events")
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
}

func (api *calendarApi) create(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data calendar.EventData
	if err = bind(ctx, &data, "EventData"); err != nil {
		return err
	}
	e, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating calendar event")
	}
	return ctx.JSON(http.StatusCreated, e)
}

// query lists the events overlapping [from, to]; both accept a date or an RFC 3339 timestamp.
func (api *calendarApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(calendar.QueryFilter)
	if filter.From, err = timeParam(ctx, "from"); err != nil {
		return err
	}
	if filter.To, err = timeParam(ctx, "to"); err != nil {
		return err
	}
	events, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying calendar events")
	}
	return list(ctx, events)
}

func (api *calendarApi) update(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data calendar.EventData
	if err = bind(ctx, &data, "EventData"); err != nil {
		return err
	}
	e, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating calendar event")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *calendarApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting calendar event")
	}
	return ctx.NoContent(http.StatusNoContent)
}
