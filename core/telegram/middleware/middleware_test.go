package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/expensebot/core/telegram/helpers"
)

func newBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return bot
}

func textUpdate(id int, userID int64, text string) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}
}

func TestAllowList(t *testing.T) {
	list := NewAllowList([]int64{1, 2, 0}, false)
	assert.True(t, list.Allowed(1))
	assert.False(t, list.Allowed(3))
	assert.Equal(t, 2, list.Len())

	assert.True(t, NewAllowList(nil, true).Allowed(99))
	assert.False(t, NewAllowList(nil, false).Allowed(99))

	var none *AllowList
	assert.False(t, none.Allowed(1))
}

func TestRestrict(t *testing.T) {
	bot := newBot(t)
	list := NewAllowList([]int64{1}, false)

	var handled, rejected []int64
	next := func(c tele.Context) error {
		handled = append(handled, c.Sender().ID)
		return nil
	}
	onReject := func(c tele.Context) error {
		rejected = append(rejected, c.Sender().ID)
		return nil
	}
	h := Restrict(list, onReject)(next)

	require.NoError(t, h(bot.NewContext(textUpdate(1, 1, "/start"))))
	require.NoError(t, h(bot.NewContext(textUpdate(2, 5, "/start"))))
	assert.Equal(t, []int64{1}, handled)
	assert.Equal(t, []int64{5}, rejected)
}

func TestRateLimit(t *testing.T) {
	bot := newBot(t)
	calls, limited := 0, 0
	h := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(bot.NewContext(textUpdate(1, 7, "a"))))
	require.NoError(t, h(bot.NewContext(textUpdate(2, 7, "b"))))
	require.NoError(t, h(bot.NewContext(textUpdate(3, 8, "c"))))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, limited)
}

func TestRateLimitExcludesKinds(t *testing.T) {
	bot := newBot(t)
	calls := 0
	h := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  []string{"message"},
	})(func(tele.Context) error { calls++; return nil })

	for i := 1; i <= 3; i++ {
		require.NoError(t, h(bot.NewContext(textUpdate(i, 7, "x"))))
	}
	assert.Equal(t, 3, calls)
}

func TestRecoverTurnsPanicIntoError(t *testing.T) {
	bot := newBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("kaboom") })
	err := h(bot.NewContext(textUpdate(1, 1, "x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestLoggerStoresContextOnce(t *testing.T) {
	bot := newBot(t)
	c := bot.NewContext(textUpdate(10, 3, "hi"))

	var seen []string
	inner := LoggerMiddleware(func(c tele.Context) error {
		_, ok := tghelpers.ContextFrom(c)
		require.True(t, ok)
		seen = append(seen, c.Get("rid").(string))
		return nil
	})
	outer := LoggerMiddleware(inner)
	require.NoError(t, outer(c))
	require.Len(t, seen, 1)
	assert.NotEmpty(t, seen[0])
}

func TestMetricsCountersReachHandlers(t *testing.T) {
	bot := newBot(t)
	c := bot.NewContext(textUpdate(11, 4, "hi"))

	h := LoggerMiddleware(MessageMetricsMiddleware(func(c tele.Context) error {
		tghelpers.CountSent(tghelpers.BuildContext(c), true)
		return errors.New("done")
	}))
	assert.EqualError(t, h(c), "done")

	msgs, kb := GetCounters(c)
	assert.Equal(t, 1, msgs)
	assert.True(t, kb)
}

func TestLimiterPrunesIdleUsers(t *testing.T) {
	lim := &limiter{interval: time.Second, seen: make(map[int64]time.Time)}
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, lim.allow(1, t0))
	assert.True(t, lim.allow(2, t0.Add(100*time.Millisecond)))
	assert.False(t, lim.allow(1, t0.Add(500*time.Millisecond)))

	assert.True(t, lim.allow(3, t0.Add(2*time.Minute)))
	assert.Len(t, lim.seen, 1)
	assert.True(t, lim.allow(1, t0.Add(2*time.Minute)))
}
