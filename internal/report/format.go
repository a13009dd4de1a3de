package report

import (
	"fmt"
	"strings"

	"github.com/m3rciful/expensebot/core/telegram/format"
	"github.com/m3rciful/expensebot/internal/txn"
)

var recentTitles = map[txn.Type]string{
	txn.Variable: "Variable Expenses",
	txn.Transfer: "Money Transfers",
	txn.Income:   "Income",
	txn.Fixed:    "Fixed Expenses",
	txn.Savings:  "Savings",
}

func dot(category string) string {
	if d, ok := txn.CategoryDots[category]; ok {
		return d
	}
	return "⚪"
}

// FormatRecent renders a recent listing of type t.
func FormatRecent(t txn.Type, entries []txn.Entry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("📭 No recent %s transactions found.", t)
	}
	m, _ := txn.ModuleFor(t)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Recent %s</b>\n\n", m.Emoji, recentTitles[t])
	for i, e := range entries {
		b.WriteString(formatEntry(t, e, i+1))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "📋 Showing latest %d transactions", len(entries))
	return b.String()
}

func formatEntry(t txn.Type, e txn.Entry, n int) string {
	date := e.Date
	if date == "" {
		date = "Unknown Date"
	}
	desc := e.Title
	if desc == "" {
		desc = "No description"
	}
	amount := e.Number(txn.PropAmount)
	if t == txn.Transfer || t == txn.Savings {
		amount = e.Number(txn.PropAmountOut)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%d.</b> %s\n📅 %s | 💰 %s", n, format.EscapeHTML(desc), date, format.Thousands(amount))

	text := func(name string) string { return format.EscapeHTML(e.Text(name)) }
	switch t {
	case txn.Variable:
		if c := e.Text(txn.PropCategory); c != "" {
			fmt.Fprintf(&b, "\n%s %s", dot(c), format.EscapeHTML(c))
		}
		if g := text(txn.PropShoppingGroup); g != "" {
			fmt.Fprintf(&b, " | 🛍️ %s", g)
		}
		if a := text(txn.PropAccount); a != "" {
			fmt.Fprintf(&b, "\n🏦 %s", a)
		}
	case txn.Transfer:
		writeMovement(&b, e)
		if tt := text(txn.PropTransferType); tt != "" {
			fmt.Fprintf(&b, " | 🔄 %s", tt)
		}
		writeFee(&b, e)
	case txn.Income:
		if g := text(txn.PropIncomeGroup); g != "" {
			fmt.Fprintf(&b, "\n💵 %s", g)
		}
		if a := text(txn.PropAccount); a != "" {
			fmt.Fprintf(&b, "\n🏦 %s", a)
		}
	case txn.Fixed:
		if it := text(txn.PropItem); it != "" {
			fmt.Fprintf(&b, "\n🏠 %s", it)
		}
		if a := text(txn.PropAccount); a != "" {
			fmt.Fprintf(&b, "\n🏦 %s", a)
		}
	case txn.Savings:
		if p := text(txn.PropSavingsPlan); p != "" {
			fmt.Fprintf(&b, "\n🏦 %s", p)
		}
		writeMovement(&b, e)
		writeFee(&b, e)
	}
	return b.String()
}

func writeMovement(b *strings.Builder, e txn.Entry) {
	from, to := e.Text(txn.PropFromAccount), e.Text(txn.PropToAccount)
	if from != "" && to != "" {
		fmt.Fprintf(b, "\n💸 %s → %s", format.EscapeHTML(from), format.EscapeHTML(to))
	}
}

func writeFee(b *strings.Builder, e txn.Entry) {
	if fee := e.Number(txn.PropAdminTax); fee > 0 {
		fmt.Fprintf(b, "\n💳 Admin/Tax: %s", format.Thousands(fee))
	}
}

// FormatWeekly renders a weekly summary.
func FormatWeekly(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Weekly Summary: %s</b>\n\n", s.Week.Range())
	fmt.Fprintf(&b, "📈 <b>Total Expenses:</b> %s\n\n", format.IDR(s.Total))

	if s.Total > 0 && len(s.Categories) > 0 {
		b.WriteString("🔝 <b>Top Categories:</b>\n")
		for _, c := range s.Categories {
			fmt.Fprintf(&b, "%s %s: %s (%d%%)\n", dot(c.Category), format.EscapeHTML(c.Category), format.IDR(c.Amount), c.Percent)
		}
		b.WriteString("\n")
	}

	if len(s.TopItems) == 0 {
		b.WriteString("💸 <b>No transactions found for this week</b>")
		return b.String()
	}
	b.WriteString("💸 <b>Top 5 Most Costly Items:</b>\n")
	for i, it := range s.TopItems {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, format.EscapeHTML(it.Description), format.IDR(it.Amount))
	}
	return b.String()
}
