package sender

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/expensebot/core/telegram/helpers"
	"github.com/m3rciful/expensebot/core/telegram/keyboard"
)

type sent struct {
	to   string
	what interface{}
	opts []interface{}
}

type fakeAPI struct {
	sent      []sent
	responded []*tele.CallbackResponse
	ids       []string
	err       error
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sent{to: to.Recipient(), what: what, opts: opts})
	return &tele.Message{}, nil
}

func (f *fakeAPI) Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, c.ID)
	f.responded = append(f.responded, resp...)
	return nil
}

func TestSendMessageWithKeyboard(t *testing.T) {
	api := &fakeAPI{}
	ctx, counters := tghelpers.WithCounters(context.Background())

	err := New(api).SendMessage(ctx, 42, "<b>hi</b>", keyboard.Rows{{{Text: "A", Data: "a"}}})
	require.NoError(t, err)
	require.Len(t, api.sent, 1)
	assert.Equal(t, "42", api.sent[0].to)
	assert.Equal(t, "<b>hi</b>", api.sent[0].what)

	opts, ok := api.sent[0].opts[0].(*tele.SendOptions)
	require.True(t, ok)
	assert.Equal(t, tele.ModeHTML, opts.ParseMode)
	require.NotNil(t, opts.ReplyMarkup)
	assert.Equal(t, "a", opts.ReplyMarkup.InlineKeyboard[0][0].Data)

	assert.Equal(t, 1, counters.Messages())
	assert.True(t, counters.Keyboard())
}

func TestSendMessageWithoutKeyboard(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, New(api).SendMessage(context.Background(), 1, "plain", nil))
	opts := api.sent[0].opts[0].(*tele.SendOptions)
	assert.Nil(t, opts.ReplyMarkup)
}

func TestSendPhoto(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, New(api).SendPhoto(context.Background(), 7, []byte("\x89PNG"), "chart"))
	photo, ok := api.sent[0].what.(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "chart", photo.Caption)
}

func TestAnswerCallback(t *testing.T) {
	api := &fakeAPI{}
	s := New(api)
	require.NoError(t, s.AnswerCallback(context.Background(), "cb-1", "denied"))
	require.NoError(t, s.AnswerCallback(context.Background(), "", "ignored"))

	assert.Equal(t, []string{"cb-1"}, api.ids)
	require.Len(t, api.responded, 1)
	assert.Equal(t, "denied", api.responded[0].Text)
}

func TestSendFailureIsReturned(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	ctx, counters := tghelpers.WithCounters(context.Background())

	err := New(api).SendMessage(ctx, 1, "x", nil)
	assert.EqualError(t, err, "boom")
	assert.Zero(t, counters.Messages())
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "timeout", classifyError(context.DeadlineExceeded))
	assert.Equal(t, "dial", classifyError(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.Equal(t, "dns", classifyError(&net.DNSError{Err: "no such host"}))
	assert.Equal(t, "http_4xx", classifyError(errors.New("telegram: chat not found (400)")))
	assert.Equal(t, "http_5xx", classifyError(errors.New("telegram: internal (502)")))
	assert.Equal(t, "unknown", classifyError(errors.New("odd")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(classifyError(context.DeadlineExceeded)))
	assert.True(t, retryable(classifyError(errors.New("telegram: internal (502)"))))
	assert.False(t, retryable(classifyError(errors.New("telegram: chat not found (400)"))))
	assert.False(t, retryable(classifyError(context.Canceled)))
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123:ABC-def_9/sendMessage": timeout`)
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout`, sanitizeErrorMessage(err))
}
