package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/announcement"
)

type announcementApi struct {
	svc *announcement.Service
}

func registerAnnouncementAPI(g *echo.Group, svc *announcement.Service) {
	api := announcementApi{svc: svc}

	ag := g.Group("/announcements")
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

func (api *announcementApi) create(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data announcement.NewAnnouncement
	if err = bind(ctx, &data, "NewAnnouncement"); err != nil {
		return err
	}
	a, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *announcementApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(announcement.QueryFilter)
	if err = bind(ctx, filter, "announcement.QueryFilter"); err != nil {
		return err
	}
	anns, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return list(ctx, anns)
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting announcement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *announcementApi) update(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data announcement.UpdateAnnouncement
	if err = bind(ctx, &data, "UpdateAnnouncement"); err != nil {
		return err
	}
	a, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
