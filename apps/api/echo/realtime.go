package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/services/realtime"
)

var knownTopics = map[string]bool{
	core.TopicMessages:         true,
	core.TopicAnnouncements:    true,
	core.TopicLocationTracking: true,
	core.TopicRequests:         true,
}

// realtimeHandler upgrades to a websocket streaming the events of the requested topics (all by default).
// Browsers cannot set headers on websockets, so the token comes in the `token` query param.
func realtimeHandler(hub *realtime.Hub) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := actor(ctx)
		if err != nil {
			return err
		}

		var topics []string
		for _, t := range strings.Split(ctx.QueryParam("topics"), ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if !knownTopics[t] {
				return core.NewFieldError("topics", "unknown topic: "+t)
			}
			topics = append(topics, t)
		}
		if len(topics) == 0 {
			for t := range knownTopics {
				topics = append(topics, t)
			}
		}

		if err = hub.Serve(ctx.Response(), ctx.Request(), usr.ID, topics); err != nil {
			if ctx.Response().Committed { // the upgrader already replied
				return nil
			}
			return errors.Wrap(err, "serving realtime events")
		}
		return nil
	}
}
