package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/appointment"
)

type appointmentApi struct {
	svc *appointment.Service
}

func registerAppointmentAPI(g *echo.Group, svc *appointment.Service) {
	api := appointmentApi{svc: svc}

	ag := g.Group("/appointments")
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.POST("/:id/transition", api.transition)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/reminders", api.scheduleReminder)
	ag.GET("/:id/reminders", api.queryReminders)

	g.POST("/functions/send-appointment-reminder", api.sendReminder)
}

func (api *appointmentApi) create(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data appointment.NewAppointment
	if err = bind(ctx, &data, "NewAppointment"); err != nil {
		return err
	}
	a, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating appointment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *appointmentApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(appointment.QueryFilter)
	if err = bind(ctx, filter, "appointment.QueryFilter"); err != nil {
		return err
	}
	appts, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying appointments")
	}
	return list(ctx, appts)
}

func (api *appointmentApi) retrieve(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting appointment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *appointmentApi) transition(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data appointment.Transition
	if err = bind(ctx, &data, "appointment.Transition"); err != nil {
		return err
	}
	a, err := api.svc.Transition(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "transitioning appointment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *appointmentApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting appointment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *appointmentApi) scheduleReminder(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data appointment.NewReminder
	if err = bind(ctx, &data, "NewReminder"); err != nil {
		return err
	}
	r, err := api.svc.ScheduleReminder(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "scheduling reminder")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *appointmentApi) queryReminders(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	rems, err := api.svc.QueryReminders(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying reminders")
	}
	return list(ctx, rems)
}

// sendReminder emails an appointment reminder right away.
func (api *appointmentApi) sendReminder(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data appointment.ReminderRequest
	if err = bind(ctx, &data, "ReminderRequest"); err != nil {
		return err
	}
	if err = api.svc.SendReminder(ctx.Request().Context(), usr, data); err != nil {
		return errors.Wrap(err, "sending reminder")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Reminder sent."})
}
