package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/expensebot/core/logger"
	tghelpers "github.com/m3rciful/expensebot/core/telegram/helpers"
	"github.com/m3rciful/expensebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// handled runs fn as the named handler and logs one summary line for the
// update: status, messages sent, and time since the update arrived.
func handled(c tele.Context, name string, fn func() error, extras ...slog.Attr) error {
	ctx := tghelpers.WithHandler(c, name)
	err := fn()
	summarize(ctx, c, logger.Status(err), err, extras)
	return err
}

// skipped logs an update that no handler took.
func skipped(c tele.Context, name string, extras ...slog.Attr) {
	summarize(tghelpers.WithHandler(c, name), c, "skip", nil, extras)
}

func summarize(ctx context.Context, c tele.Context, status string, err error, extras []slog.Attr) {
	msgs, kb := middleware.GetCounters(c)
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
	}
	if start, ok := tghelpers.UpdateStart(c); ok {
		attrs = append(attrs, slog.Duration("duration", logger.Took(start)))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Info(ctx, logger.TG, "handler.handled", append(attrs, extras...)...)
}

// handlerName turns a command or callback key into a log-friendly name.
func handlerName(prefix, key string) string {
	key = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), "/"))
	if key == "" {
		key = "unknown"
	}
	return prefix + strings.ReplaceAll(key, " ", "_")
}

// errorCode names the innermost error type, e.g. "*NET.OPERROR".
func errorCode(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return strings.ToUpper(fmt.Sprintf("%T", err))
}
