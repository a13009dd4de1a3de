// Package menu renders conversation screens. Every function is pure: it maps
// the current selection state to text and a grid of buttons whose data are
// navigation tokens.
package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/expensebot/core/telegram/keyboard"
	"github.com/m3rciful/expensebot/internal/nav"
	"github.com/m3rciful/expensebot/internal/preset"
	"github.com/m3rciful/expensebot/internal/txn"
)

// Fixed messages.
const (
	MsgWelcome      = "🤖 Welcome to your Expense Tracker!\n\nAny transactions?"
	MsgHelp         = "🤖 Expense Tracker Commands:\n\n• /start - Show main menu\n• /help - Show this help\n• /cancel - Cancel current operation\n\nUse the menu buttons to add expenses easily!"
	MsgCancelled    = "❌ Operation cancelled. Use /start to begin again."
	MsgError        = "❌ Something went wrong. Please try again."
	MsgAccessDenied = "⛔ Sorry, you are not allowed to use this bot."
	MsgSelfTransfer = "❌ FROM and TO accounts must be different."
	MsgReportError  = "❌ Error fetching transactions. Please try again."
)

// Button is one inline button; Data is an encoded navigation token.
type Button = keyboard.Button

// Keyboard is a grid of buttons, row by row.
type Keyboard = keyboard.Rows

// Screen is a message with an optional keyboard.
type Screen struct {
	Text     string
	Keyboard Keyboard
}

func button(text string, tok nav.Token) Button {
	return Button{Text: text, Data: nav.Encode(tok)}
}

func rows(buttons []Button, perRow int) Keyboard {
	return keyboard.Chunk(buttons, perRow)
}

func single(b Button) []Button { return []Button{b} }

// Main is the top-level menu.
func Main() Screen {
	return Screen{
		Text: MsgWelcome,
		Keyboard: Keyboard{
			single(button("➕ Add Transaction", nav.Menu(nav.ScreenAdd))),
			single(button("📊 Recent Transactions", nav.Menu(nav.ScreenRecent))),
			single(button("🔄 Recurring Transactions", nav.Menu(nav.ScreenRecurring))),
			single(button("📈 Weekly Summary", nav.Menu(nav.ScreenWeekly))),
		},
	}
}

var addLabels = map[txn.Type]string{
	txn.Variable: "💸 Add Variable Expenses",
	txn.Transfer: "💰 Add Money Transfer",
	txn.Income:   "💵 Add Income",
	txn.Fixed:    "🏠 Add Fixed Expense",
	txn.Savings:  "🏦 Add Savings",
}

// Add lets the user pick a transaction type.
func Add() Screen {
	kb := make(Keyboard, 0, len(txn.Types)+1)
	for _, t := range txn.Types {
		kb = append(kb, single(button(addLabels[t], nav.New(t))))
	}
	kb = append(kb, single(button("⬅️ Back to Main Menu", nav.Back(nav.ScreenMain))))
	return Screen{
		Text:     "➕ <b>Add Transaction</b>\n\nSelect the type of transaction you want to add:",
		Keyboard: kb,
	}
}

var recentLabels = map[txn.Type]string{
	txn.Variable: "💸 Recent Variable Expenses",
	txn.Transfer: "💰 Recent Money Transfers",
	txn.Income:   "💵 Recent Income",
	txn.Fixed:    "🏠 Recent Fixed Expenses",
	txn.Savings:  "🏦 Recent Savings",
}

// Recent lets the user pick which records to list.
func Recent() Screen {
	kb := make(Keyboard, 0, len(txn.Types)+1)
	for _, t := range txn.Types {
		kb = append(kb, single(button(recentLabels[t], nav.Recent(t))))
	}
	kb = append(kb, single(button("⬅️ Back to Main Menu", nav.Back(nav.ScreenMain))))
	return Screen{
		Text:     "📊 <b>Recent Transactions</b>\n\nSelect a category to view the latest 5 transactions:",
		Keyboard: kb,
	}
}

// RecentNav follows a recent listing.
func RecentNav() Keyboard {
	return Keyboard{
		single(button("⬅️ Back to Recent Menu", nav.Back(nav.ScreenRecent))),
		single(button("🏠 Main Menu", nav.Back(nav.ScreenMain))),
	}
}

// Recurring lists the presets.
func Recurring(presets []preset.Preset) Screen {
	kb := make(Keyboard, 0, len(presets)+1)
	for _, p := range presets {
		kb = append(kb, single(button(p.Label(), nav.Preset(p.Key))))
	}
	kb = append(kb, single(button("⬅️ Back to Main Menu", nav.Back(nav.ScreenMain))))
	return Screen{
		Text:     "🔄 <b>Recurring Transactions</b>\n\nSelect a recurring transaction to add it quickly:",
		Keyboard: kb,
	}
}

// WeeklyWeeks is the number of weeks offered by the weekly summary menu.
const WeeklyWeeks = 3

// Weekly lets the user pick a week relative to now.
func Weekly(now time.Time) Screen {
	var b strings.Builder
	b.WriteString("📊 <b>Weekly Summary</b>\n\nSelect which week you want to analyze:\n")
	kb := make(Keyboard, 0, WeeklyWeeks+1)
	for i := 0; i < WeeklyWeeks; i++ {
		label := txn.WeekLabel(i)
		fmt.Fprintf(&b, "\n📅 <b>%s:</b> %s", label, txn.WeekOf(now, i).Range())
		kb = append(kb, single(button("📅 "+label, nav.Weekly(i))))
	}
	kb = append(kb, single(button("⬅️ Back to Main Menu", nav.Back(nav.ScreenMain))))
	return Screen{Text: b.String(), Keyboard: kb}
}

// WeeklyNav follows a weekly summary.
func WeeklyNav() Keyboard {
	return Keyboard{
		single(button("⬅️ Back to Week Selection", nav.Back(nav.ScreenWeekly))),
		single(button("🏠 Main Menu", nav.Back(nav.ScreenMain))),
	}
}

// Home is a single main-menu button.
func Home() Keyboard {
	return Keyboard{single(button("🏠 Main Menu", nav.Back(nav.ScreenMain)))}
}
