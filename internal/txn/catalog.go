package txn

// Months are the month labels used for selection and record routing.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Categories are the variable-expense categories.
var Categories = []string{"Survival", "Optional", "Extra", "Culture"}

// CategoryDots colour-codes categories in listings and summaries.
var CategoryDots = map[string]string{
	"Survival": "🟢",
	"Optional": "🟡",
	"Culture":  "🔵",
	"Extra":    "🔴",
}

// ShoppingGroups are the variable-expense shopping groups.
var ShoppingGroups = []string{
	"Food", "Transportation", "Entertainment", "Skin Care", "Other",
	"Talang", "Normalize", "Unexpected", "Together Expense",
}

// Accounts are the money accounts a transaction can touch.
var Accounts = []string{
	"Cash", "CC BNI", "CC BCA", "Brizzi", "GoPay", "OVO", "ShopeePay", "SeaBank",
	"DANA", "Jago", "Krom", "BCA", "BNI", "DANA+", "eMas", "Emas Fisik",
}

// FixedItems are the recurring bills selectable as fixed expenses.
var FixedItems = []string{
	"Groceries", "Internet", "Iuran Komplek", "Cats", "Listrik", "Motor Gas", "Galon Air",
	"Litany - Khilaf", "Litany - Mamah", "Litany - Rangga",
	"Argil - Khilaf", "Argil - Mamah", "Argil - Dicky",
}

// IncomeGroups classify income.
var IncomeGroups = []string{"Salary", "Normalize", "Hutang Teman"}

// TransferTypes classify money movements between accounts.
var TransferTypes = []string{"Transfer", "Withdraw", "Top Up"}

// SavingsPlan is a savings goal; Key is the short wire form.
type SavingsPlan struct {
	Key  string
	Name string
}

// SavingsPlans are the savings goals.
var SavingsPlans = []SavingsPlan{
	{Key: "kpr3y", Name: "KPR Bom 3 tahun"},
	{Key: "kpr3m", Name: "KPR 3 month Urgent Savings"},
	{Key: "emergency", Name: "Emergency Fund"},
	{Key: "custom", Name: "Custom Plan"},
}

// Option is one selectable choice of a step: Label is shown, Value travels in tokens.
type Option struct {
	Label string
	Value string
}

// Options lists the choices of a selection step given what is already chosen.
// The destination account never offers the source account.
func Options(step Step, d Draft) []Option {
	switch step {
	case StepMonth:
		return plain(Months)
	case StepCategory:
		return plain(Categories)
	case StepShoppingGroup:
		return plain(ShoppingGroups)
	case StepAccount, StepFromAccount:
		return plain(Accounts)
	case StepToAccount:
		out := make([]Option, 0, len(Accounts)-1)
		for _, a := range Accounts {
			if a == d.FromAccount {
				continue
			}
			out = append(out, Option{Label: a, Value: a})
		}
		return out
	case StepItem:
		return plain(FixedItems)
	case StepIncomeGroup:
		return plain(IncomeGroups)
	case StepTransferType:
		return plain(TransferTypes)
	case StepSavingsPlan:
		out := make([]Option, 0, len(SavingsPlans))
		for _, p := range SavingsPlans {
			out = append(out, Option{Label: p.Name, Value: p.Key})
		}
		return out
	}
	return nil
}

// Resolve maps a token value of a selection step to the field value stored in
// the draft. It fails for values outside the step's catalog.
func Resolve(step Step, d Draft, value string) (string, bool) {
	for _, o := range Options(step, d) {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// TokenValue is the inverse of Resolve for a stored field value.
func TokenValue(step Step, field string) string {
	if step == StepSavingsPlan {
		for _, p := range SavingsPlans {
			if p.Name == field {
				return p.Key
			}
		}
	}
	return field
}

func plain(values []string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Label: v, Value: v}
	}
	return out
}
