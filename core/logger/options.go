package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/m3rciful/expensebot/core/config"
)

type options struct {
	format    logFormat
	order     []string
	level     slog.Level
	profile   string
	sampleNum int
	sampleDen int
	trace     bool

	dir        string
	botFile    string
	errorsFile string
}

func resolveOptions(cfg *coreconfig.Config) options {
	o := options{
		format:    formatJSON,
		order:     defaultKeyOrder,
		level:     slog.LevelInfo,
		profile:   "prod",
		sampleNum: 1,
		sampleDen: 50,
		trace:     truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE")),
	}
	if cfg == nil {
		return o
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		o.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		o.format = formatKV
	case "json":
	default:
		if o.profile == "debug" || o.profile == "dev" {
			o.format = formatKV
		}
	}
	if order := splitList(lc.KeysOrder); len(order) > 0 && lc.KeysOrder != "default" {
		o.order = order
	}
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		o.level = slog.LevelDebug
	case "warn", "warning":
		o.level = slog.LevelWarn
	case "error":
		o.level = slog.LevelError
	}
	if ratio := strings.TrimSpace(lc.DebugSample); ratio != "" {
		num, den := parseRatio(ratio)
		if num == 0 && den == 0 {
			o.sampleNum, o.sampleDen = 0, 0
		} else if num > 0 && den > 0 {
			o.sampleNum, o.sampleDen = num, den
		}
	}

	o.dir = strings.TrimSpace(lc.Dir)
	o.botFile = strings.TrimSpace(lc.BotFile)
	o.errorsFile = strings.TrimSpace(lc.ErrorsFile)
	return o
}

// openSinks always writes to stdout. When a log dir is configured the bot
// file receives every line and the errors file only WARN and above. A file
// that cannot be opened is reported and skipped.
func openSinks(o options) ([]sink, []io.Closer, error) {
	sinks := []sink{{w: os.Stdout, min: slog.LevelDebug}}
	var closers []io.Closer
	if o.dir == "" || (o.botFile == "" && o.errorsFile == "") {
		return sinks, closers, nil
	}
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		log.Printf("logger: failed to create log dir %s: %v", o.dir, err)
		return sinks, closers, nil
	}
	for _, f := range []struct {
		name string
		min  slog.Level
	}{
		{o.botFile, slog.LevelDebug},
		{o.errorsFile, slog.LevelWarn},
	} {
		if f.name == "" {
			continue
		}
		path := filepath.Join(o.dir, f.name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("logger: failed to open log file %s: %v", path, err)
			continue
		}
		sinks = append(sinks, sink{w: file, min: f.min})
		closers = append(closers, file)
	}
	return sinks, closers, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
