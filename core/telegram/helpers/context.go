package helpers

import (
	"context"
	"time"

	"github.com/m3rciful/expensebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Keys under which per-update values live in tele.Context.
const (
	keyContext = "logger_ctx"
	keyRID     = "rid"
	keyStart   = "update_start"
)

// StoreContext attaches ctx to the update so later handlers reuse it.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(keyContext, ctx)
}

// ContextFrom returns the context stored for the update, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(keyContext).(context.Context)
	return ctx, ok && ctx != nil
}

// UpdateIDs returns the chat and user of the update; either may be 0.
func UpdateIDs(c tele.Context) (chatID, userID int64) {
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	return chatID, userID
}

// BuildContext returns the update's context, creating and storing it on
// first use. The context carries the rid and the update, user and chat ids.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}

	updateID := c.Update().ID
	chatID, userID := UpdateIDs(c)
	rid, _ := c.Get(keyRID).(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
		c.Set(keyRID, rid)
	}
	if _, ok := c.Get(keyStart).(time.Time); !ok {
		c.Set(keyStart, time.Now())
	}

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	StoreContext(c, ctx)
	return ctx
}

// UpdateStart is when BuildContext first saw the update.
func UpdateStart(c tele.Context) (time.Time, bool) {
	t, ok := c.Get(keyStart).(time.Time)
	return t, ok
}

// WithHandler records the handler name on the stored context.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
