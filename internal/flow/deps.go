package flow

import (
	"context"

	"github.com/m3rciful/expensebot/internal/menu"
	"github.com/m3rciful/expensebot/internal/report"
	"github.com/m3rciful/expensebot/internal/txn"
)

// TextEvent is a typed message.
type TextEvent struct {
	ChatID int64
	UserID int64
	Text   string
}

// CallbackEvent is a button tap; Data carries the navigation token.
type CallbackEvent struct {
	ChatID     int64
	UserID     int64
	CallbackID string
	Data       string
}

// Messenger delivers output to the chat platform. A nil keyboard sends plain text.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb menu.Keyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SendPhoto(ctx context.Context, chatID int64, png []byte, caption string) error
}

// Ledger persists finished transactions.
type Ledger interface {
	Submit(ctx context.Context, rec txn.Record) (string, error)
}

// Reporter reads stored transactions back.
type Reporter interface {
	Recent(ctx context.Context, t txn.Type, limit int) ([]txn.Entry, error)
	Weekly(ctx context.Context, offset int) (report.Summary, error)
}

// Authorizer decides whether a user may talk to the bot.
type Authorizer interface {
	Allowed(userID int64) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(userID int64) bool

// Allowed implements Authorizer.
func (f AuthorizerFunc) Allowed(userID int64) bool { return f(userID) }

// AllowAll admits every user.
var AllowAll = AuthorizerFunc(func(int64) bool { return true })
