package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/carelog"
)

const mediaField = "files"

type careLogApi struct {
	svc *carelog.Service
}

func registerCareLogAPI(g *echo.Group, svc *carelog.Service) {
	api := careLogApi{svc: svc}

	rg := g.Group("/daily-reports")
	rg.POST("", api.createReport)
	rg.GET("", api.queryReports)
	rg.GET("/:id", api.retrieveReport)
	rg.PUT("/:id", api.updateReport)
	rg.DELETE("/:id", api.destroyReport)
	rg.POST("/:id/media", api.addMedia)

	mg := g.Group("/meal-logs")
	mg.POST("", api.recordMeal)
	mg.GET("", api.queryMeals)
	mg.DELETE("/:id", api.destroyMeal)

	sg := g.Group("/sleep-logs")
	sg.POST("", api.recordSleep)
	sg.GET("", api.querySleep)
	sg.POST("/:id/end", api.endSleep)
	sg.DELETE("/:id", api.destroySleep)
}

func bindCareLogFilter(ctx echo.Context) (*carelog.QueryFilter, error) {
	filter := new(carelog.QueryFilter)
	if err := bind(ctx, filter, "carelog.QueryFilter"); err != nil {
		return nil, err
	}
	filter.Clean()
	return filter, nil
}

// Daily reports

func (api *careLogApi) createReport(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data carelog.NewDailyReport
	if err = bind(ctx, &data, "NewDailyReport"); err != nil {
		return err
	}
	r, err := api.svc.CreateReport(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating daily report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *careLogApi) queryReports(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter, err := bindCareLogFilter(ctx)
	if err != nil {
		return err
	}
	reports, err := api.svc.QueryReports(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying daily reports")
	}
	return list(ctx, reports)
}

func (api *careLogApi) retrieveReport(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	r, err := api.svc.GetReport(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting daily report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *careLogApi) updateReport(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data carelog.ReportFields
	if err = bind(ctx, &data, "ReportFields"); err != nil {
		return err
	}
	r, err := api.svc.UpdateReport(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating daily report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *careLogApi) destroyReport(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteReport(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting daily report")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// addMedia attaches the multipart `files` to a report. Nothing is kept when one upload fails.
func (api *careLogApi) addMedia(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		return core.NewFieldError(mediaField, "expected a multipart form")
	}

	headers := form.File[mediaField]
	uploads := make([]core.Upload, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		uploads = append(uploads, core.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	r, err := api.svc.AddMedia(ctx.Request().Context(), usr, ctx.Param("id"), uploads)
	if err != nil {
		return errors.Wrap(err, "adding media")
	}
	return ctx.JSON(http.StatusOK, r)
}

// Meal logs

func (api *careLogApi) recordMeal(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data carelog.NewMealLog
	if err = bind(ctx, &data, "NewMealLog"); err != nil {
		return err
	}
	m, err := api.svc.RecordMeal(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "recording meal")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *careLogApi) queryMeals(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter, err := bindCareLogFilter(ctx)
	if err != nil {
		return err
	}
	meals, err := api.svc.QueryMeals(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying meal logs")
	}
	return list(ctx, meals)
}

func (api *careLogApi) destroyMeal(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteMeal(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting meal log")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Sleep logs

func (api *careLogApi) recordSleep(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data carelog.NewSleepLog
	if err = bind(ctx, &data, "NewSleepLog"); err != nil {
		return err
	}
	s, err := api.svc.RecordSleep(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "recording sleep")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *careLogApi) querySleep(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter, err := bindCareLogFilter(ctx)
	if err != nil {
		return err
	}
	logs, err := api.svc.QuerySleep(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying sleep logs")
	}
	return list(ctx, logs)
}

func (api *careLogApi) endSleep(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data carelog.EndSleep
	if err = bind(ctx, &data, "EndSleep"); err != nil {
		return err
	}
	s, err := api.svc.EndSleep(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "ending sleep")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *careLogApi) destroySleep(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSleep(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting sleep log")
	}
	return ctx.NoContent(http.StatusNoContent)
}
