package app

import (
	"fmt"

	coretelegram "github.com/m3rciful/expensebot/core/telegram"
	"github.com/m3rciful/expensebot/core/telegram/format"
	tghelpers "github.com/m3rciful/expensebot/core/telegram/helpers"
	"github.com/m3rciful/expensebot/core/telegram/router"
	"github.com/m3rciful/expensebot/internal/flow"
	"github.com/m3rciful/expensebot/internal/menu"
	"github.com/m3rciful/expensebot/internal/nav"

	tele "gopkg.in/telebot.v4"
)

// TelegramRunOptions builds the registry, middleware chain and routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg, err := a.registry()
	if err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		Access:   a.access,
		OnReject: a.denied,
	})
	routes = append(routes, router.TextRoute(conversation{a}, reg, router.TextOptions{}))
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: a.onCallback}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Bot:         a.bot,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:      routes,
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

func (a *App) registry() (*coretelegram.Registry, error) {
	reg := coretelegram.NewRegistry()
	cmds := []struct {
		name string
		cmd  coretelegram.Command
	}{
		{"/start", coretelegram.Command{
			Handler:     a.onText,
			Description: "Show main menu",
			Restricted:  true,
			Aliases:     []string{"/menu"},
		}},
		{"/help", coretelegram.Command{
			Handler:     a.onText,
			Description: "Show help",
			Restricted:  true,
		}},
		{"/cancel", coretelegram.Command{
			Handler:     a.onText,
			Description: "Cancel current operation",
			Restricted:  true,
		}},
		{"/id", coretelegram.Command{
			Handler:     a.onWhoAmI,
			Description: "Show your Telegram user id",
			Hidden:      true,
		}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return nil, err
		}
	}
	reg.SetTextFallback(a.onText)

	for _, action := range nav.Actions() {
		if err := reg.RegisterCallback(action, a.onCallback); err != nil {
			return nil, err
		}
	}
	reg.SetCallbackNotFound(a.onCallback)
	return reg, nil
}

// conversation lets the text router hand typed answers to the dispatcher.
type conversation struct{ a *App }

func (c conversation) InProgress(userID int64) bool { return c.a.flow.InProgress(userID) }

func (c conversation) Handle(tc tele.Context) error { return c.a.onText(tc) }

func ids(c tele.Context) (chatID, userID int64) {
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	chatID = userID
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	return chatID, userID
}

func (a *App) onText(c tele.Context) error {
	chatID, userID := ids(c)
	return a.flow.HandleText(tghelpers.BuildContext(c), flow.TextEvent{
		ChatID: chatID,
		UserID: userID,
		Text:   c.Text(),
	})
}

func (a *App) onCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	chatID, userID := ids(c)
	return a.flow.HandleCallback(tghelpers.BuildContext(c), flow.CallbackEvent{
		ChatID:     chatID,
		UserID:     userID,
		CallbackID: cb.ID,
		Data:       cb.Data,
	})
}

func (a *App) denied(c tele.Context) error {
	chatID, _ := ids(c)
	return a.msg.SendMessage(tghelpers.BuildContext(c), chatID, menu.MsgAccessDenied, nil)
}

func (a *App) onWhoAmI(c tele.Context) error {
	chatID, userID := ids(c)
	text := fmt.Sprintf("🆔 Your Telegram user id: %s", format.Bold(fmt.Sprint(userID)))
	return a.msg.SendMessage(tghelpers.BuildContext(c), chatID, text, nil)
}
