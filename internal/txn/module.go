package txn

import (
	"errors"
	"fmt"
	"time"
)

// ErrIncomplete is returned when a draft is finalized with a required field missing.
var ErrIncomplete = errors.New("transaction incomplete")

// DateLayout is the calendar date format of persisted records.
const DateLayout = "2006-01-02"

// Module is the policy of one transaction type: which selections and inputs it
// collects, in order, and how a complete draft becomes a record.
type Module struct {
	Type       Type
	Title      string
	Emoji      string
	Selections []Step
	Inputs     []Step

	build func(d Draft, now time.Time) Record
}

var modules = map[Type]Module{
	Variable: {
		Type: Variable, Title: "Variable Expense", Emoji: "💸",
		Selections: []Step{StepMonth, StepCategory, StepShoppingGroup, StepAccount},
		Inputs:     []Step{StepAmount, StepDescription},
		build: func(d Draft, now time.Time) Record {
			return VariableExpense{
				Date: now.Format(DateLayout), Month: d.Month,
				Category: d.Category, ShoppingGroup: d.ShoppingGroup, Account: d.Account,
				Amount: *d.Amount, Description: d.Description,
			}
		},
	},
	Fixed: {
		Type: Fixed, Title: "Fixed Expense", Emoji: "🏠",
		Selections: []Step{StepItem, StepMonth, StepAccount},
		Inputs:     []Step{StepAmount, StepDescription},
		build: func(d Draft, now time.Time) Record {
			return FixedExpense{
				Date: now.Format(DateLayout), Month: d.Month,
				Item: d.Item, Account: d.Account,
				Amount: *d.Amount, Description: d.Description,
			}
		},
	},
	Income: {
		Type: Income, Title: "Income", Emoji: "💵",
		Selections: []Step{StepIncomeGroup, StepMonth, StepAccount},
		Inputs:     []Step{StepAmount, StepDescription},
		build: func(d Draft, now time.Time) Record {
			return IncomeRecord{
				Date: now.Format(DateLayout), Month: d.Month,
				Group: d.IncomeGroup, Account: d.Account,
				Amount: *d.Amount, Description: d.Description,
			}
		},
	},
	Transfer: {
		Type: Transfer, Title: "Money Transfer", Emoji: "💰",
		Selections: []Step{StepFromAccount, StepToAccount, StepTransferType},
		Inputs:     []Step{StepAmountOut, StepAdminTax, StepDescription},
		build: func(d Draft, now time.Time) Record {
			return TransferRecord{
				Movement:     newMovement(d.FromAccount, d.ToAccount, *d.AmountOut, *d.AdminTax),
				Date:         now.Format(DateLayout),
				Month:        MonthName(now),
				TransferType: d.TransferType,
				Description:  d.Description,
			}
		},
	},
	Savings: {
		Type: Savings, Title: "Savings", Emoji: "🏦",
		Selections: []Step{StepSavingsPlan, StepMonth, StepFromAccount, StepToAccount},
		Inputs:     []Step{StepAmountOut, StepAdminTax, StepDescription},
		build: func(d Draft, now time.Time) Record {
			return SavingsRecord{
				Movement:    newMovement(d.FromAccount, d.ToAccount, *d.AmountOut, *d.AdminTax),
				Date:        now.Format(DateLayout),
				Month:       d.Month,
				Plan:        d.SavingsPlan,
				Description: d.Description,
			}
		},
	},
}

// ModuleFor returns the module of a transaction type.
func ModuleFor(t Type) (Module, bool) {
	m, ok := modules[t]
	return m, ok
}

// Steps returns selections followed by inputs.
func (m Module) Steps() []Step {
	out := make([]Step, 0, len(m.Selections)+len(m.Inputs))
	out = append(out, m.Selections...)
	return append(out, m.Inputs...)
}

// First returns the opening step of the module.
func (m Module) First() Step {
	return m.Selections[0]
}

// Build checks that every step of the module is present in d and assembles the
// record dated now.
func (m Module) Build(d Draft, now time.Time) (Record, error) {
	for _, s := range m.Steps() {
		if !d.Has(s) {
			return nil, fmt.Errorf("%w: %s needs %s", ErrIncomplete, m.Type, s)
		}
	}
	if m.Type == Transfer || m.Type == Savings {
		if d.FromAccount == d.ToAccount {
			return nil, fmt.Errorf("%w: %s from and to are both %s", ErrIncomplete, m.Type, d.FromAccount)
		}
	}
	return m.build(d, now), nil
}

// Flow is a module walked with some of its steps already filled in, as
// recurring presets do. Locked steps are never asked.
type Flow struct {
	Module
	Preset string
	Locked Draft
}

// NewFlow returns the plain flow of a type.
func NewFlow(t Type) (Flow, bool) {
	m, ok := ModuleFor(t)
	if !ok {
		return Flow{}, false
	}
	return Flow{Module: m}, true
}

func (f Flow) locked(s Step) bool { return f.Locked.Has(s) }

// OpenSelections lists the selection steps the user is asked for.
func (f Flow) OpenSelections() []Step {
	out := make([]Step, 0, len(f.Selections))
	for _, s := range f.Selections {
		if !f.locked(s) {
			out = append(out, s)
		}
	}
	return out
}

// Start returns the earliest step not filled in by the flow's preset.
func (f Flow) Start() (Step, bool) {
	for _, s := range f.Steps() {
		if !f.locked(s) {
			return s, true
		}
	}
	return "", false
}

// Next returns the first open step after the given one; false means the draft
// is ready to be finalized.
func (f Flow) Next(after Step) (Step, bool) {
	steps := f.Steps()
	for i, s := range steps {
		if s != after {
			continue
		}
		for _, n := range steps[i+1:] {
			if !f.locked(n) {
				return n, true
			}
		}
		return "", false
	}
	return "", false
}

// Previous returns the open selection step before the given one.
func (f Flow) Previous(step Step) (Step, bool) {
	open := f.OpenSelections()
	if step.FreeText() {
		if len(open) == 0 {
			return "", false
		}
		return open[len(open)-1], true
	}
	for i, s := range open {
		if s == step && i > 0 {
			return open[i-1], true
		}
	}
	return "", false
}

// Prior returns the token values of the open selections made before step, in order.
func (f Flow) Prior(step Step, d Draft) []string {
	var out []string
	for _, s := range f.OpenSelections() {
		if s == step {
			break
		}
		out = append(out, TokenValue(s, d.Text(s)))
	}
	return out
}

// Index returns the position of step among the open selections, or -1.
func (f Flow) Index(step Step) int {
	for i, s := range f.OpenSelections() {
		if s == step {
			return i
		}
	}
	return -1
}
