package router

import (
	tg "github.com/m3rciful/expensebot/core/telegram"
	"github.com/m3rciful/expensebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation is a multi-step dialogue that claims a user's messages while
// it waits for typed input.
type Conversation interface {
	InProgress(userID int64) bool
	Handle(c tele.Context) error
}

// TextOptions controls the handler for text nobody claims.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoute routes plain text: an active conversation first, then
// registered commands, then the registry fallback, then opts.UnknownText.
func TextRoute(conv Conversation, reg *tg.Registry, opts TextOptions) tg.Route {
	handler := func(c tele.Context) error {
		if conv != nil && c.Sender() != nil && conv.InProgress(c.Sender().ID) {
			return handled(c, "conversation", func() error { return conv.Handle(c) })
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok {
				return handled(c, handlerName("cmd.", key), func() error { return cmd.Handler(c) })
			}
			if fb := reg.TextFallback(); fb != nil {
				return handled(c, "text.fallback", func() error { return fb(c) })
			}
		}

		if opts.UnknownText != nil {
			return handled(c, "text.unknown", func() error { return opts.UnknownText(c) })
		}
		skipped(c, "text.unknown")
		return nil
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
