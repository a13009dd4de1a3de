// Package keyboard builds Telegram inline keyboards from plain button grids.
package keyboard

import tele "gopkg.in/telebot.v4"

// Button is a single inline button. Data is sent back verbatim in the callback.
type Button struct {
	Text string
	Data string
}

// Rows is a keyboard laid out row by row.
type Rows [][]Button

// Chunk splits a flat list of buttons into rows with up to n buttons per row.
// If n <= 1, every button gets its own row.
func Chunk(buttons []Button, n int) Rows {
	if n < 1 {
		n = 1
	}
	var rows Rows
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}

// Len counts the buttons across all rows.
func (r Rows) Len() int {
	n := 0
	for _, row := range r {
		n += len(row)
	}
	return n
}

// Inline converts rows into an inline reply markup. Empty rows are dropped;
// an empty keyboard yields nil so the message is sent without markup.
func Inline(rows Rows) *tele.ReplyMarkup {
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		inline = append(inline, r)
	}
	if len(inline) == 0 {
		return nil
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}

// RemoveKeyboard returns a markup that hides a reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
