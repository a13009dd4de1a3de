// Package txn holds the transaction catalogs, the per-type step sequences and
// the typed records a finished conversation produces.
package txn

import "sort"

// Type identifies one of the five transaction flows.
type Type string

const (
	Variable Type = "variable"
	Fixed    Type = "fixed"
	Income   Type = "income"
	Transfer Type = "transfer"
	Savings  Type = "savings"
)

// Types lists the transaction types in menu order.
var Types = []Type{Variable, Transfer, Income, Fixed, Savings}

// ParseType converts a wire value into a Type.
func ParseType(s string) (Type, bool) {
	t := Type(s)
	return t, t.Valid()
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case Variable, Fixed, Income, Transfer, Savings:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// Step is a position in a type's step sequence.
type Step string

const (
	StepMonth         Step = "month"
	StepCategory      Step = "category"
	StepShoppingGroup Step = "shoppingGroup"
	StepAccount       Step = "account"
	StepItem          Step = "item"
	StepIncomeGroup   Step = "incomeGroup"
	StepFromAccount   Step = "fromAccount"
	StepToAccount     Step = "toAccount"
	StepTransferType  Step = "transferType"
	StepSavingsPlan   Step = "savingsPlan"

	StepAmount      Step = "amount"
	StepAmountOut   Step = "amountOut"
	StepAdminTax    Step = "adminTax"
	StepDescription Step = "description"
)

// wire action names of selection steps; each name maps to exactly one step.
var stepActions = map[Step]string{
	StepMonth:         "month",
	StepCategory:      "category",
	StepShoppingGroup: "group",
	StepAccount:       "account",
	StepItem:          "item",
	StepIncomeGroup:   "source",
	StepFromAccount:   "from",
	StepToAccount:     "to",
	StepTransferType:  "type",
	StepSavingsPlan:   "plan",
}

var actionSteps = func() map[string]Step {
	m := make(map[string]Step, len(stepActions))
	for s, a := range stepActions {
		m[a] = s
	}
	return m
}()

// Action returns the wire action of a selection step, or "" for free-text steps.
func (s Step) Action() string { return stepActions[s] }

// SelectionActions lists the wire actions of every selection step, sorted.
func SelectionActions() []string {
	out := make([]string, 0, len(actionSteps))
	for a := range actionSteps {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// StepForAction resolves a wire action back into its selection step.
func StepForAction(action string) (Step, bool) {
	s, ok := actionSteps[action]
	return s, ok
}

// FreeText reports whether the step is answered by a typed message rather than a button.
func (s Step) FreeText() bool {
	switch s {
	case StepAmount, StepAmountOut, StepAdminTax, StepDescription:
		return true
	}
	return false
}

// Numeric reports whether the step expects an integer amount.
func (s Step) Numeric() bool {
	switch s {
	case StepAmount, StepAmountOut, StepAdminTax:
		return true
	}
	return false
}

func (s Step) String() string { return string(s) }
