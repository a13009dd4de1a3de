package menu

import (
	"fmt"
	"strings"

	"github.com/m3rciful/expensebot/core/telegram/format"
	"github.com/m3rciful/expensebot/internal/nav"
	"github.com/m3rciful/expensebot/internal/preset"
	"github.com/m3rciful/expensebot/internal/txn"
)

var prompts = map[txn.Step]string{
	txn.StepMonth:         "📅 Which month?",
	txn.StepCategory:      "📂 Select Category:",
	txn.StepShoppingGroup: "🛍️ Select Shopping Group:",
	txn.StepAccount:       "🏦 Select Account:",
	txn.StepItem:          "🏠 Select Fixed Expense Item:",
	txn.StepIncomeGroup:   "💵 Select Income Group:",
	txn.StepFromAccount:   "💰 Select Account to Transfer FROM:",
	txn.StepToAccount:     "Select Account to Transfer TO:",
	txn.StepTransferType:  "Select Transfer Type:",
	txn.StepSavingsPlan:   "🏦 Select Savings Plan:",

	txn.StepAmount:      "💰 Please type the amount (numbers only):",
	txn.StepAmountOut:   "💵 Please enter the amount out (numbers only):",
	txn.StepAdminTax:    "💳 Please enter the admin or tax fee amount (enter 0 if no fee):",
	txn.StepDescription: "📝 Please describe the transaction:",
}

// legends explain the choices of a step below its prompt.
var legends = map[txn.Step][]string{
	txn.StepCategory: {
		"🟢 <b>Survival:</b> Food, Hygiene, Kids, Transport",
		"🟡 <b>Optional:</b> Clothes, Skin Care, Snacks, Cafe & Resto, Vacation, Gifts",
		"🔵 <b>Culture:</b> Books, Films, Course, Music",
		"🔴 <b>Extra:</b> Hospital, House Renov, Electronic Broken, Someone's Loan",
	},
	txn.StepIncomeGroup: {
		"💰 <b>Salary:</b> Regular salary payments",
		"🔄 <b>Normalize:</b> Balance transfers and normalizations",
		"👥 <b>Hutang Teman:</b> Money from friends/debt collection",
	},
	txn.StepTransferType: {
		"🔄 <b>Transfer:</b> Regular money transfer between accounts",
		"💸 <b>Withdraw:</b> Cash withdrawal from account",
		"📈 <b>Top Up:</b> Adding money to account/wallet",
	},
	txn.StepSavingsPlan: {
		"🏠 <b>KPR Bom 3 tahun:</b> Long-term house savings",
		"🚨 <b>KPR 3 month Urgent:</b> Short-term urgent house fund",
		"💰 <b>Emergency Fund:</b> Emergency money reserve",
		"🎯 <b>Custom Plan:</b> Other savings goal",
	},
}

var fieldLabels = map[txn.Step]string{
	txn.StepMonth:         "📅 Month",
	txn.StepCategory:      "📂 Category",
	txn.StepShoppingGroup: "🛍️ Shopping Group",
	txn.StepAccount:       "🏦 Account",
	txn.StepItem:          "🏠 Item",
	txn.StepIncomeGroup:   "💵 Income Group",
	txn.StepFromAccount:   "💸 FROM",
	txn.StepToAccount:     "💰 TO",
	txn.StepTransferType:  "🔄 Type",
	txn.StepSavingsPlan:   "🏦 Plan",
}

// width is the number of buttons per row of a selection grid.
func width(step txn.Step) int {
	switch step {
	case txn.StepMonth:
		return 3
	case txn.StepAccount, txn.StepFromAccount, txn.StepToAccount, txn.StepShoppingGroup:
		return 2
	}
	return 1
}

// Prompt returns the question asked for a step.
func Prompt(step txn.Step) string { return prompts[step] }

// Step renders the choice screen of a selection step. Each option carries the
// prior selections of the flow plus its own value; the back button re-renders
// the previous open selection, or the menu the flow was started from.
func Step(f txn.Flow, step txn.Step, d txn.Draft) Screen {
	prior := f.Prior(step, d)
	opts := txn.Options(step, d)
	buttons := make([]Button, 0, len(opts))
	for _, o := range opts {
		vals := append(append([]string(nil), prior...), o.Value)
		buttons = append(buttons, button(o.Label, selectToken(f, step, vals)))
	}
	kb := rows(buttons, width(step))
	kb = append(kb, single(backButton(f, step, d)))

	var b strings.Builder
	b.WriteString(header(f, step, d))
	b.WriteString(prompts[step])
	if lines := legends[step]; len(lines) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(lines, "\n"))
	}
	return Screen{Text: b.String(), Keyboard: kb}
}

// Input renders the prompt of a free-text step.
func Input(f txn.Flow, step txn.Step, d txn.Draft) Screen {
	return Screen{
		Text:     header(f, step, d) + prompts[step],
		Keyboard: Keyboard{single(backButton(f, step, d))},
	}
}

// Invalid is the corrective message of a rejected free-text answer.
func Invalid(step txn.Step) string {
	switch step {
	case txn.StepAmount:
		return "❌ Please enter a valid amount (numbers only):"
	case txn.StepAmountOut:
		return "❌ Please enter a valid amount out (numbers only):"
	case txn.StepAdminTax:
		return "❌ Please enter a valid admin or tax fee amount (0 or more):"
	case txn.StepDescription:
		return "❌ Please enter a description:"
	}
	return MsgError
}

func selectToken(f txn.Flow, step txn.Step, vals []string) nav.Token {
	if f.Preset != "" {
		return nav.PresetSelect(f.Preset, step, vals...)
	}
	return nav.Select(f.Type, step, vals...)
}

func backButton(f txn.Flow, step txn.Step, d txn.Draft) Button {
	prev, ok := f.Previous(step)
	switch {
	case ok && f.Preset != "":
		return button("⬅️ Back", nav.BackToPreset(f.Preset, prev, f.Prior(prev, d)...))
	case ok:
		return button("⬅️ Back", nav.BackTo(f.Type, prev, f.Prior(prev, d)...))
	case f.Preset != "":
		return button("⬅️ Back to Recurring Menu", nav.Back(nav.ScreenRecurring))
	}
	return button("⬅️ Back", nav.Back(nav.ScreenAdd))
}

// header lists the selections made before step and every preset field.
func header(f txn.Flow, step txn.Step, d txn.Draft) string {
	var b strings.Builder
	if p, ok := preset.Lookup(f.Preset); ok {
		fmt.Fprintf(&b, "%s %s\n", p.Emoji, format.Bold(p.Name))
	}
	before := true
	for _, s := range f.Selections {
		if s == step {
			before = false
			continue
		}
		if !before && !f.Locked.Has(s) {
			continue
		}
		v := d.Text(s)
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", fieldLabels[s], format.Bold(v))
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// Success summarizes a stored record.
func Success(rec txn.Record) string {
	var b strings.Builder
	switch r := rec.(type) {
	case txn.VariableExpense:
		b.WriteString("✅ Added successfully!\n\n")
		fmt.Fprintf(&b, "💰 Amount: %s\n", format.IDR(r.Amount))
		fmt.Fprintf(&b, "📝 Description: %s\n", format.EscapeHTML(r.Description))
		fmt.Fprintf(&b, "📂 Category: %s\n", r.Category)
		fmt.Fprintf(&b, "🛍️ Shopping Group: %s\n", r.ShoppingGroup)
		fmt.Fprintf(&b, "🏦 Account: %s\n", r.Account)
		fmt.Fprintf(&b, "📅 Month: %s", r.Month)
	case txn.FixedExpense:
		b.WriteString("✅ Fixed Expense Added Successfully!\n\n")
		fmt.Fprintf(&b, "💰 Amount: %s\n", format.IDR(r.Amount))
		fmt.Fprintf(&b, "📝 Description: %s\n", format.EscapeHTML(r.Description))
		fmt.Fprintf(&b, "🏠 Item: %s\n", r.Item)
		fmt.Fprintf(&b, "🏦 Account: %s\n", r.Account)
		fmt.Fprintf(&b, "📅 Month: %s", r.Month)
	case txn.IncomeRecord:
		b.WriteString("✅ Income Added Successfully!\n\n")
		fmt.Fprintf(&b, "💰 Amount: %s\n", format.IDR(r.Amount))
		fmt.Fprintf(&b, "📝 Description: %s\n", format.EscapeHTML(r.Description))
		fmt.Fprintf(&b, "💵 Income Group: %s\n", r.Group)
		fmt.Fprintf(&b, "🏦 Account: %s\n", r.Account)
		fmt.Fprintf(&b, "📅 Month: %s", r.Month)
	case txn.TransferRecord:
		b.WriteString("✅ Transfer Added Successfully!\n\n")
		movement(&b, r.Movement)
		fmt.Fprintf(&b, "📝 Description: %s\n", format.EscapeHTML(r.Description))
		fmt.Fprintf(&b, "🔄 Type: %s", r.TransferType)
	case txn.SavingsRecord:
		b.WriteString("✅ Savings Added Successfully!\n\n")
		fmt.Fprintf(&b, "🏦 Plan: %s\n", r.Plan)
		fmt.Fprintf(&b, "📅 Month: %s\n", r.Month)
		movement(&b, r.Movement)
		fmt.Fprintf(&b, "📝 Description: %s", format.EscapeHTML(r.Description))
	default:
		b.WriteString("✅ Transaction added successfully!")
	}
	return b.String()
}

func movement(b *strings.Builder, m txn.Movement) {
	fmt.Fprintf(b, "💸 FROM: %s\n", m.From)
	fmt.Fprintf(b, "💰 TO: %s\n", m.To)
	fmt.Fprintf(b, "💵 Amount Out: %s\n", format.IDR(m.AmountOut))
	fmt.Fprintf(b, "💳 Admin or Tax: %s\n", format.IDR(m.AdminTax))
	fmt.Fprintf(b, "💰 Total Out: %s\n", format.IDR(m.TotalOut))
}
