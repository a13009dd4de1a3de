package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallback splits callback data into a routing key and its payload.
// Buttons created with a telebot unique carry the key in Unique; raw data is
// split at the first '|' or '_'.
func ParseCallback(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	i := strings.IndexAny(raw, "|_")
	if i < 0 {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(raw[:i]), raw[i+1:]
}
