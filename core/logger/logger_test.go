package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutput(t *testing.T, format logFormat, sinks ...sink) (*slog.Logger, *fanout) {
	t.Helper()
	out := newFanout(sinks, 1024)
	t.Cleanup(func() { _ = out.Close() })
	l := slog.New(newHandler(&handlerOptions{
		level:  slog.LevelDebug,
		out:    out,
		format: format,
	}))
	return l, out
}

func useLogger(t *testing.T, l *slog.Logger) {
	t.Helper()
	prev := base.Load()
	install(l)
	t.Cleanup(func() { install(prev) })
}

func requestContext() context.Context {
	ctx := WithRID(context.Background(), "rid-123")
	return WithUpdateMeta(ctx, 42, 7, 9)
}

func TestKVLineOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	l, out := newTestOutput(t, formatKV, sink{w: buf, min: slog.LevelDebug})
	useLogger(t, l)

	Info(requestContext(), Ledger, "ledger.submit",
		slog.String("cause", "unit"),
		slog.String("status", "OK"),
	)
	require.NoError(t, out.Flush())

	tokens := strings.Fields(strings.TrimSpace(buf.String()))
	want := []string{"ts=", "level=INFO", "component=ledger", "event=ledger.submit", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "cause=unit"}
	require.Len(t, tokens, len(want))
	for i, prefix := range want {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want %s", i, tokens[i], prefix)
	}
}

func TestJSONLine(t *testing.T) {
	buf := &bytes.Buffer{}
	l, out := newTestOutput(t, formatJSON, sink{w: buf, min: slog.LevelDebug})
	useLogger(t, l)

	Warn(requestContext(), Store, "store.create",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Duration("backoff", 2*time.Second),
		slog.Any("err", errors.New("boom")),
		slog.String("empty", ""),
		slog.String("outcome", "weird"),
		slog.Group("req", slog.Int("n", 3)),
	)
	require.NoError(t, out.Flush())

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, `{"ts":`))

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "WARN", got["level"])
	assert.Equal(t, "store", got["component"])
	assert.Equal(t, "store.create", got["event"])
	assert.EqualValues(t, 2, got["duration_ms"])
	assert.EqualValues(t, 2000, got["backoff_ms"])
	assert.Equal(t, "boom", got["err"])
	assert.EqualValues(t, 3, got["req.n"])
	assert.EqualValues(t, 7, got["user_id"])
	assert.NotContains(t, got, "empty")
	assert.NotContains(t, got, "outcome")
}

func TestErrorsSinkOnlyGetsWarnings(t *testing.T) {
	all, errs := &bytes.Buffer{}, &bytes.Buffer{}
	l, out := newTestOutput(t, formatKV,
		sink{w: all, min: slog.LevelDebug},
		sink{w: errs, min: slog.LevelWarn},
	)
	useLogger(t, l)

	ctx := context.Background()
	Debug(ctx, Flow, "flow.step")
	Info(ctx, Flow, "flow.done")
	Error(ctx, Flow, "flow.failed")
	require.NoError(t, out.Flush())

	assert.Equal(t, 3, strings.Count(all.String(), "\n"))
	assert.Equal(t, 1, strings.Count(errs.String(), "\n"))
	assert.Contains(t, errs.String(), "event=flow.failed")
}

func TestLogBeforeInitIsNoop(t *testing.T) {
	useLogger(t, nil)
	assert.NotPanics(t, func() {
		Info(context.Background(), App, "nothing")
		Log(context.Background(), "", slog.LevelError, "nothing")
	})
}

func TestFanoutAfterClose(t *testing.T) {
	out := newFanout([]sink{{w: io.Discard}}, 0)
	require.NoError(t, out.Close())
	assert.ErrorIs(t, out.Write(slog.LevelInfo, []byte("x")), errClosed)
	assert.ErrorIs(t, out.Flush(), errClosed)
	assert.NoError(t, out.Close())
}

func TestSampler(t *testing.T) {
	s := newSampler(1, 3)
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, s.Allow())
	}
	assert.Equal(t, []bool{true, false, false, true, false, false}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())
	assert.True(t, s.Allow())
}

func TestParseRatio(t *testing.T) {
	cases := map[string][2]int{
		"1/10": {1, 10},
		"25":   {1, 25},
		"0":    {0, 0},
		"abc":  {-1, -1},
		"1/x":  {-1, -1},
	}
	for in, want := range cases {
		num, den := parseRatio(in)
		assert.Equal(t, want, [2]int{num, den}, in)
	}
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, "fail", Status(errors.New("x")))
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "ab\tc", Sanitize("a\x00b\tc\u200b"))
	assert.Equal(t, "héll", SanitizeLimit("héllo", 4))
	assert.Equal(t, "16.7.9", BuildRID(42, 7, 9))
	assert.Equal(t, 12*time.Millisecond, RoundMS(12400*time.Microsecond))

	joined, cut := SummarizeStrings([]string{"a", "b", "c"}, 2)
	assert.Equal(t, "a, b", joined)
	assert.True(t, cut)
}

func TestContextAccessors(t *testing.T) {
	ctx := WithHandler(requestContext(), "cmd.start")
	assert.Equal(t, "rid-123", RIDFrom(ctx))
	assert.Equal(t, 42, UpdateIDFrom(ctx))
	assert.Equal(t, int64(7), UserIDFrom(ctx))
	assert.Equal(t, int64(9), ChatIDFrom(ctx))
	assert.Equal(t, "cmd.start", HandlerFrom(ctx))
	assert.Zero(t, UserIDFrom(context.Background()))
}
