package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		cb      *tele.Callback
		key     string
		payload string
	}{
		{cb: nil},
		{cb: &tele.Callback{Unique: "pick", Data: "42"}, key: "pick", payload: "42"},
		{cb: &tele.Callback{Data: "month_variable_June"}, key: "month", payload: "variable_June"},
		{cb: &tele.Callback{Data: "\fpick|7"}, key: "pick", payload: "7"},
		{cb: &tele.Callback{Data: "noop"}, key: "noop"},
	}
	for _, tc := range cases {
		key, payload := ParseCallback(tc.cb)
		assert.Equal(t, tc.key, key)
		assert.Equal(t, tc.payload, payload)
	}
}
