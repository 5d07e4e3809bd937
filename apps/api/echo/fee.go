package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/fee"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type feeApi struct {
	svc *fee.Service
}

func registerFeeAPI(g *echo.Group, svc *fee.Service) {
	api := feeApi{svc: svc}

	fg := g.Group("/fees")
	fg.POST("", api.create)
	fg.POST("/bulk", api.bulkCreate)
	fg.GET("", api.query)
	fg.GET("/summary", api.summary)
	fg.GET("/export", api.export)
	fg.GET("/:id", api.retrieve)
	fg.PUT("/:id", api.update)
	fg.POST("/:id/transition", api.transition)
	fg.DELETE("/:id", api.destroy)
	fg.POST("/:id/reminders", api.sendReminder)
	fg.GET("/:id/reminders", api.queryReminders)
}

func bindFeeFilter(ctx echo.Context) (*fee.QueryFilter, error) {
	filter := new(fee.QueryFilter)
	if err := bind(ctx, filter, "fee.QueryFilter"); err != nil {
		return nil, err
	}
	return filter, nil
}

func (api *feeApi) create(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data fee.NewFee
	if err = bind(ctx, &data, "NewFee"); err != nil {
		return err
	}
	f, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating fee")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *feeApi) bulkCreate(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data fee.BulkFee
	if err = bind(ctx, &data, "BulkFee"); err != nil {
		return err
	}
	fees, err := api.svc.BulkCreate(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating fees")
	}
	return ctx.JSON(http.StatusCreated, fees)
}

func (api *feeApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter, err := bindFeeFilter(ctx)
	if err != nil {
		return err
	}
	fees, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	return list(ctx, fees)
}

func (api *feeApi) summary(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter, err := bindFeeFilter(ctx)
	if err != nil {
		return err
	}
	sum, err := api.svc.Summarize(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "summarizing fees")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *feeApi) export(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter, err := bindFeeFilter(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = api.svc.Export(ctx.Request().Context(), usr, filter, &buf); err != nil {
		return errors.Wrap(err, "exporting fees")
	}
	filename := fmt.Sprintf("fees-%s.xlsx", time.Now().UTC().Format("20060102"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	f, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting fee")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) update(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data fee.UpdateFee
	if err = bind(ctx, &data, "UpdateFee"); err != nil {
		return err
	}
	f, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating fee")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) transition(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data fee.Transition
	if err = bind(ctx, &data, "fee.Transition"); err != nil {
		return err
	}
	f, err := api.svc.Transition(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "transitioning fee")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting fee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *feeApi) sendReminder(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data fee.NewPaymentReminder
	if err = bind(ctx, &data, "NewPaymentReminder"); err != nil {
		return err
	}
	rems, err := api.svc.SendPaymentReminder(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "sending payment reminder")
	}
	return ctx.JSON(http.StatusCreated, rems)
}

func (api *feeApi) queryReminders(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	rems, err := api.svc.QueryPaymentReminders(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying payment reminders")
	}
	return list(ctx, rems)
}
