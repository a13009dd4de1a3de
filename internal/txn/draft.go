package txn

// Draft accumulates the fields of a transaction across conversation turns.
// Empty strings and nil amounts mean "not collected yet".
type Draft struct {
	Month         string `json:"month,omitempty"`
	Category      string `json:"category,omitempty"`
	ShoppingGroup string `json:"shopping_group,omitempty"`
	Account       string `json:"account,omitempty"`
	Item          string `json:"item,omitempty"`
	IncomeGroup   string `json:"income_group,omitempty"`
	FromAccount   string `json:"from_account,omitempty"`
	ToAccount     string `json:"to_account,omitempty"`
	TransferType  string `json:"transfer_type,omitempty"`
	SavingsPlan   string `json:"savings_plan,omitempty"`

	Amount    *int64 `json:"amount,omitempty"`
	AmountOut *int64 `json:"amount_out,omitempty"`
	AdminTax  *int64 `json:"admin_tax,omitempty"`

	Description string `json:"description,omitempty"`
}

// Has reports whether the field collected by step is present.
func (d Draft) Has(step Step) bool {
	if step.Numeric() {
		return d.amount(step) != nil
	}
	return d.Text(step) != ""
}

// Text returns the string field of a selection or description step.
func (d Draft) Text(step Step) string {
	switch step {
	case StepMonth:
		return d.Month
	case StepCategory:
		return d.Category
	case StepShoppingGroup:
		return d.ShoppingGroup
	case StepAccount:
		return d.Account
	case StepItem:
		return d.Item
	case StepIncomeGroup:
		return d.IncomeGroup
	case StepFromAccount:
		return d.FromAccount
	case StepToAccount:
		return d.ToAccount
	case StepTransferType:
		return d.TransferType
	case StepSavingsPlan:
		return d.SavingsPlan
	case StepDescription:
		return d.Description
	}
	return ""
}

// Number returns the amount collected by a numeric step.
func (d Draft) Number(step Step) (int64, bool) {
	p := d.amount(step)
	if p == nil {
		return 0, false
	}
	return *p, true
}

func (d Draft) amount(step Step) *int64 {
	switch step {
	case StepAmount:
		return d.Amount
	case StepAmountOut:
		return d.AmountOut
	case StepAdminTax:
		return d.AdminTax
	}
	return nil
}

// WithText returns a copy of d with the string field of step set.
func (d Draft) WithText(step Step, v string) Draft {
	switch step {
	case StepMonth:
		d.Month = v
	case StepCategory:
		d.Category = v
	case StepShoppingGroup:
		d.ShoppingGroup = v
	case StepAccount:
		d.Account = v
	case StepItem:
		d.Item = v
	case StepIncomeGroup:
		d.IncomeGroup = v
	case StepFromAccount:
		d.FromAccount = v
	case StepToAccount:
		d.ToAccount = v
	case StepTransferType:
		d.TransferType = v
	case StepSavingsPlan:
		d.SavingsPlan = v
	case StepDescription:
		d.Description = v
	}
	return d
}

// WithNumber returns a copy of d with the amount of a numeric step set.
func (d Draft) WithNumber(step Step, n int64) Draft {
	v := n
	switch step {
	case StepAmount:
		d.Amount = &v
	case StepAmountOut:
		d.AmountOut = &v
	case StepAdminTax:
		d.AdminTax = &v
	}
	return d
}

// Merge overlays every present field of o onto d.
func (d Draft) Merge(o Draft) Draft {
	for _, s := range allSteps {
		if !o.Has(s) {
			continue
		}
		if s.Numeric() {
			n, _ := o.Number(s)
			d = d.WithNumber(s, n)
			continue
		}
		d = d.WithText(s, o.Text(s))
	}
	return d
}

var allSteps = []Step{
	StepMonth, StepCategory, StepShoppingGroup, StepAccount, StepItem, StepIncomeGroup,
	StepFromAccount, StepToAccount, StepTransferType, StepSavingsPlan,
	StepAmount, StepAmountOut, StepAdminTax, StepDescription,
}
