// Package sender delivers outbound Telegram calls. Every call is awaited so
// that messages reach the chat in the order the conversation produced them.
package sender

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/expensebot/core/logger"
	tghelpers "github.com/m3rciful/expensebot/core/telegram/helpers"
	"github.com/m3rciful/expensebot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// API is the part of *tele.Bot used by Sender.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
}

// Sender sends HTML messages, photos and callback answers.
type Sender struct {
	api       API
	parseMode tele.ParseMode
}

// New returns a Sender over api using HTML parse mode.
func New(api API) *Sender {
	return &Sender{api: api, parseMode: tele.ModeHTML}
}

// SendMessage sends text to chatID. A nil or empty keyboard sends no markup.
func (s *Sender) SendMessage(ctx context.Context, chatID int64, text string, kb keyboard.Rows) error {
	opts := &tele.SendOptions{ParseMode: s.parseMode}
	markup := keyboard.Inline(kb)
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	return s.call(ctx, "send.text", "sendMessage", markup != nil, func() error {
		_, err := s.api.Send(tele.ChatID(chatID), text, opts)
		return err
	})
}

// SendPhoto uploads a PNG to chatID with an optional caption.
func (s *Sender) SendPhoto(ctx context.Context, chatID int64, png []byte, caption string) error {
	photo := &tele.Photo{File: tele.FromReader(bytes.NewReader(png)), Caption: caption}
	return s.call(ctx, "send.photo", "sendPhoto", false, func() error {
		_, err := s.api.Send(tele.ChatID(chatID), photo, &tele.SendOptions{ParseMode: s.parseMode})
		return err
	})
}

// AnswerCallback acknowledges a button tap; text, when set, is shown as a toast.
func (s *Sender) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	resp := &tele.CallbackResponse{Text: text}
	return s.call(ctx, "answer.callback", "answerCallbackQuery", false, func() error {
		return s.api.Respond(&tele.Callback{ID: callbackID}, resp)
	})
}

func (s *Sender) call(ctx context.Context, action, endpoint string, withKeyboard bool, run func() error) error {
	start := time.Now()
	err := run()
	elapsed := time.Since(start)

	attrs := sendLogAttrs(ctx, action, endpoint)
	attrs = append(attrs, slog.Int("elapsed_ms", durationToMS(elapsed)))
	if err != nil {
		kind := classifyError(err)
		attrs = append(attrs,
			slog.String("status", "fail"),
			slog.String("error", sanitizeErrorMessage(err)),
			slog.String("error_kind", kind),
			slog.Bool("retryable", retryable(kind)),
		)
		logger.Error(ctx, "tg.sender", "send.fail", attrs...)
		return err
	}

	if action != "answer.callback" {
		tghelpers.CountSent(ctx, withKeyboard)
	}
	attrs = append(attrs, slog.String("status", "ok"))
	logger.Debug(ctx, "tg.sender", "send.success", attrs...)
	return nil
}

func sendLogAttrs(ctx context.Context, action, endpoint string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("action", action),
		slog.String("endpoint", endpoint),
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if updateID := logger.UpdateIDFrom(ctx); updateID != 0 {
		attrs = append(attrs, slog.Int("update_id", updateID))
	}
	if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", chatID))
	}
	if userID := logger.UserIDFrom(ctx); userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	return attrs
}

func durationToMS(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(logger.RoundMS(d) / time.Millisecond)
}
