package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/menu"
)

type menuApi struct {
	svc *menu.Service
}

func registerMenuAPI(g *echo.Group, svc *menu.Service) {
	api := menuApi{svc: svc}

	mg := g.Group("/menus")
	mg.PUT("", api.save) // one menu per date and meal
	mg.GET("", api.query)
	mg.DELETE("/:id", api.destroy)
}

func (api *menuApi) save(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data menu.MenuData
	if err = bind(ctx, &data, "MenuData"); err != nil {
		return err
	}
	m, err := api.svc.Save(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "saving menu")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *menuApi) query(ctx echo.Context) error {
	filter := new(menu.QueryFilter)
	if err := bind(ctx, filter, "menu.QueryFilter"); err != nil {
		return err
	}
	menus, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying menus")
	}
	return list(ctx, menus)
}

func (api *menuApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting menu")
	}
	return ctx.NoContent(http.StatusNoContent)
}
