package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/feed"
)

type feedApi struct {
	svc *feed.Service
}

func registerFeedAPI(g *echo.Group, svc *feed.Service) {
	api := feedApi{svc: svc}

	fg := g.Group("/feed")
	fg.GET("", api.query)
	fg.POST("/sync", api.sync)
	fg.DELETE("/:id", api.destroy)
}

func (api *feedApi) query(ctx echo.Context) error {
	filter := new(feed.QueryFilter)
	if err := bind(ctx, filter, "feed.QueryFilter"); err != nil {
		return err
	}
	posts, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying feed")
	}
	return list(ctx, posts)
}

func (api *feedApi) sync(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.SyncNow(ctx.Request().Context(), usr)
	if errors.Is(err, feed.ErrNotConfigured) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, feed.ErrNotConfigured.Error())
	}
	if err != nil {
		return errors.Wrap(err, "syncing feed")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

func (api *feedApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting feed post")
	}
	return ctx.NoContent(http.StatusNoContent)
}
