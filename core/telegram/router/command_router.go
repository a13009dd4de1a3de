package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/expensebot/core/logger"
	tg "github.com/m3rciful/expensebot/core/telegram"
	"github.com/m3rciful/expensebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are guarded.
type CommandRouteOptions struct {
	Access   *middleware.AllowList
	OnReject tele.HandlerFunc
}

// CommandRoutes returns one route per command and slash alias. Restricted
// commands only run for users on opts.Access.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	var routes []tg.Route
	for key, cmd := range reg.Commands() {
		name := handlerName("cmd.", key)
		run := cmd.Handler
		h := func(c tele.Context) error {
			return handled(c, name, func() error { return run(c) })
		}
		if cmd.Restricted {
			h = middleware.Restrict(opts.Access, opts.OnReject)(h)
		}
		h = middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))

		routes = append(routes, tg.Route{Endpoint: key, Handler: h})
		for _, alias := range cmd.Aliases {
			if alias != "" && alias[0] == '/' {
				routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
			}
		}
	}

	logger.Info(context.Background(), logger.Wire, "tg.wire",
		slog.String("status", "ok"),
		slog.Int("routes", len(routes)),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.CallbackKeys())),
	)
	return routes
}
