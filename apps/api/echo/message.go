package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/message"
)

type messageApi struct {
	svc *message.Service
}

func registerMessageAPI(g *echo.Group, svc *message.Service) {
	api := messageApi{svc: svc}

	mg := g.Group("/messages")
	mg.POST("", api.send)
	mg.GET("", api.query)
	mg.GET("/unread-count", api.unreadCount)
	mg.GET("/:id", api.retrieve)
	mg.POST("/:id/read", api.markRead)
	mg.DELETE("/:id", api.destroy)
}

func (api *messageApi) send(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	var data message.NewMessage
	if err = bind(ctx, &data, "NewMessage"); err != nil {
		return err
	}
	m, err := api.svc.Send(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *messageApi) query(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	filter := new(message.QueryFilter)
	if err = bind(ctx, filter, "message.QueryFilter"); err != nil {
		return err
	}
	msgs, err := api.svc.Query(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	return list(ctx, msgs)
}

func (api *messageApi) unreadCount(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.UnreadCount(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "counting unread messages")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

func (api *messageApi) retrieve(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	m, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting message")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *messageApi) markRead(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	m, err := api.svc.MarkRead(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "marking message read")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *messageApi) destroy(ctx echo.Context) error {
	usr, err := actor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting message")
	}
	return ctx.NoContent(http.StatusNoContent)
}
