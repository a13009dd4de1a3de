// Package app wires configuration, storage, the conversation dispatcher and
// the Telegram runtime into a runnable bot.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/expensebot/core/bootstrap"
	corecmd "github.com/m3rciful/expensebot/core/cmd"
	coredatabase "github.com/m3rciful/expensebot/core/database"
	"github.com/m3rciful/expensebot/core/logger"
	coretelegram "github.com/m3rciful/expensebot/core/telegram"
	"github.com/m3rciful/expensebot/core/telegram/middleware"
	"github.com/m3rciful/expensebot/core/telegram/sender"
	"github.com/m3rciful/expensebot/internal/config"
	"github.com/m3rciful/expensebot/internal/flow"
	"github.com/m3rciful/expensebot/internal/ledger"
	"github.com/m3rciful/expensebot/internal/report"
	"github.com/m3rciful/expensebot/internal/session"
	"github.com/m3rciful/expensebot/internal/store"

	tele "gopkg.in/telebot.v4"
)

// Options override collaborators that New otherwise builds from config.
type Options struct {
	Bot       *tele.Bot
	Store     store.Store
	Messenger flow.Messenger
	Now       func() time.Time
	// Boot carries infrastructure opened by Bootstrap; it is closed on stop.
	Boot *bootstrap.Result
}

// App is a fully wired bot.
type App struct {
	cfg      *config.Config
	boot     *bootstrap.Result
	bot      *tele.Bot
	store    store.Store
	sessions session.Store
	access   *middleware.AllowList
	msg      flow.Messenger
	flow     *flow.Dispatcher
}

// New wires an App from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	now := opts.Now
	if now == nil {
		loc := cfg.Location()
		now = func() time.Time { return time.Now().In(loc) }
	}

	st := opts.Store
	if st == nil {
		var err error
		if st, err = openStore(ctx, cfg, opts.Boot.Conn()); err != nil {
			return nil, fmt.Errorf("app: open store: %w", err)
		}
	}

	bot := opts.Bot
	if bot == nil {
		var err error
		if bot, err = coretelegram.NewBot(&cfg.Config); err != nil {
			return nil, err
		}
	}

	msg := opts.Messenger
	if msg == nil {
		msg = sender.New(bot)
	}

	writer := ledger.New(st, cfg.Ledger)
	sessions := session.NewMemoryStore(cfg.Session.TTL, now)
	access := middleware.NewAllowList(cfg.Access.AllowedUsers, cfg.Access.AllowAll)

	a := &App{
		cfg:      cfg,
		boot:     opts.Boot,
		bot:      bot,
		store:    st,
		sessions: sessions,
		access:   access,
		msg:      msg,
		flow: flow.New(flow.Deps{
			Sessions:   sessions,
			Messenger:  msg,
			Ledger:     writer,
			Reporter:   report.New(st, writer, now),
			Authorizer: access,
			Now:        now,
		}),
	}

	logger.Info(ctx, logger.App, "app.wired",
		slog.String("status", "ok"),
		slog.String("backend", cfg.Store.Backend),
		slog.String("time_zone", cfg.TimeZone),
		slog.Int("allowed_users", access.Len()),
		slog.Duration("session_ttl", cfg.Session.TTL),
	)
	return a, nil
}

// Bootstrap initializes logging and the database, then wires the App. It
// matches the signature core/cmd expects.
func Bootstrap(c corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := c.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", c)
	}
	ctx := context.Background()

	opts := bootstrap.Options{Config: &cfg.Config}
	if cfg.Store.Backend == config.BackendPostgres {
		db := cfg.Store.Database
		opts.Database = &db
	}
	res, err := bootstrap.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	a, err := New(ctx, cfg, Options{Boot: res})
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	return a, nil
}

// Dispatcher exposes the conversation dispatcher.
func (a *App) Dispatcher() *flow.Dispatcher { return a.flow }

func (a *App) start(ctx context.Context, _ coretelegram.Runtime) error {
	session.StartSweeper(ctx, a.sessions, a.cfg.Session.SweepInterval)
	return nil
}

func (a *App) stop(ctx context.Context, _ coretelegram.Runtime) error {
	if err := a.boot.Close(); err != nil {
		logger.Warn(ctx, logger.App, "app.close",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return err
	}
	return nil
}

// MigrateDatabase moves the records schema of the postgres backend.
func MigrateDatabase(ctx context.Context, cfg *config.Config, dir coredatabase.Direction) error {
	if cfg.Store.Backend != config.BackendPostgres {
		return fmt.Errorf("app: migrations need the postgres backend, configured %q", cfg.Store.Backend)
	}
	return coredatabase.Migrate(ctx, cfg.Store.Database, dir)
}
