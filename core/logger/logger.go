// Package logger provides structured, component-scoped logging on top of
// log/slog. Every line carries a component and an event name; request
// metadata (rid, update, user and chat ids) is pulled from the context.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/m3rciful/expensebot/core/buildinfo"
	coreconfig "github.com/m3rciful/expensebot/core/config"
)

// Components used across the bot.
const (
	App     = "app"
	TG      = "tg"
	Wire    = "tg.wire"
	DB      = "db"
	Migrate = "db.migrate"
	Flow    = "flow"
	Session = "session"
	Store   = "store"
	Ledger  = "ledger"
	Report  = "report"
)

var (
	initOnce  sync.Once
	closeOnce sync.Once
	closeErr  error

	base       atomic.Pointer[slog.Logger]
	components sync.Map

	out      *fanout
	closers  []io.Closer
	levelVar slog.LevelVar

	debugSampler = newSampler(1, 50)
	trace        atomic.Bool
)

// InitLogger configures the process logger. Only the first call has effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		opts := resolveOptions(cfg)
		levelVar.Set(opts.level)
		debugSampler.Set(opts.sampleNum, opts.sampleDen)
		trace.Store(opts.trace)

		var sinks []sink
		sinks, closers, err = openSinks(opts)
		if err != nil {
			return
		}
		out = newFanout(sinks, 64*1024)

		l := slog.New(newHandler(&handlerOptions{
			level:  &levelVar,
			out:    out,
			format: opts.format,
			order:  opts.order,
		}))
		install(l)
		slog.SetDefault(l)

		Info(context.Background(), App, "startup",
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", opts.profile),
		)
	})
	return err
}

func install(l *slog.Logger) {
	base.Store(l)
	components.Range(func(k, _ any) bool {
		components.Delete(k)
		return true
	})
}

// Shutdown flushes buffered output and closes log files. It is safe to call
// more than once.
func Shutdown() error {
	closeOnce.Do(func() {
		var errs []error
		if out != nil {
			errs = append(errs, out.Close())
		}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		closeErr = errors.Join(errs...)
	})
	return closeErr
}

func component(name string) *slog.Logger {
	l := base.Load()
	if l == nil {
		return nil
	}
	if name == "" {
		name = App
	}
	if v, ok := components.Load(name); ok {
		return v.(*slog.Logger)
	}
	scoped := l.With(slog.String("component", name))
	v, _ := components.LoadOrStore(name, scoped)
	return v.(*slog.Logger)
}

// Log writes one event for component. It is a no-op until InitLogger runs.
func Log(ctx context.Context, comp string, level slog.Level, event string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	l := component(comp)
	if l == nil || !l.Enabled(ctx, level) {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	l.LogAttrs(ctx, level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, comp, event string, attrs ...slog.Attr) {
	Log(ctx, comp, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, comp, event string, attrs ...slog.Attr) {
	Log(ctx, comp, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, comp, event string, attrs ...slog.Attr) {
	Log(ctx, comp, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, comp, event string, attrs ...slog.Attr) {
	Log(ctx, comp, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be
// logged. TRACE=1 in the environment disables sampling.
func ShouldSampleDebug() bool {
	if trace.Load() {
		return true
	}
	return debugSampler.Allow()
}
