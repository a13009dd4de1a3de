package middleware

import (
	"log/slog"

	"github.com/m3rciful/expensebot/core/logger"
	tghelpers "github.com/m3rciful/expensebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AllowList admits a fixed set of Telegram user ids.
type AllowList struct {
	ids map[int64]struct{}
	all bool
}

// NewAllowList builds an AllowList. With allowAll set every user is admitted
// and ids are ignored.
func NewAllowList(ids []int64, allowAll bool) *AllowList {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id != 0 {
			set[id] = struct{}{}
		}
	}
	return &AllowList{ids: set, all: allowAll}
}

// Allowed reports whether userID may use the bot.
func (a *AllowList) Allowed(userID int64) bool {
	if a == nil {
		return false
	}
	if a.all {
		return true
	}
	_, ok := a.ids[userID]
	return ok
}

// Len returns the number of listed ids.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ids)
}

// Restrict returns a middleware that only lets allowed senders through.
// Rejected updates go to onReject when it is set and are dropped otherwise.
func Restrict(list *AllowList, onReject tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			var userID int64
			if u := c.Sender(); u != nil {
				userID = u.ID
			}
			if list.Allowed(userID) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), logger.TG, "access.denied",
				slog.String("status", "skip"),
				slog.Int64("user_id", userID),
			)
			if onReject != nil {
				return onReject(c)
			}
			return nil
		}
	}
}
