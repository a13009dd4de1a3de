package txn

// Property names shared by every persistence backend.
const (
	PropAmount        = "Amount"
	PropCategory      = "Category"
	PropShoppingGroup = "Shopping Group"
	PropAccount       = "Account"
	PropItem          = "Item"
	PropIncomeGroup   = "Income Group"
	PropFromAccount   = "From Account"
	PropToAccount     = "To Account"
	PropTransferType  = "Transfer Type"
	PropSavingsPlan   = "Savings Plan"
	PropAmountOut     = "Amount Out"
	PropAdminTax      = "Admin Tax"
	PropTotalOut      = "Total Out"
	PropAmountIn      = "Amount In"
)

// Kind tells a backend how to store a property.
type Kind string

const (
	KindNumber Kind = "number"
	KindSelect Kind = "select"
)

// Property is one named field of a persisted entry. Select properties may be
// linked to a record of another collection; Link holds that record's id.
type Property struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Text   string `json:"text,omitempty"`
	Number int64  `json:"number,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Entry is the backend-neutral shape of a stored transaction.
type Entry struct {
	ID         string     `json:"id,omitempty"`
	Type       Type       `json:"type"`
	Title      string     `json:"title"`
	Date       string     `json:"date"`
	Month      string     `json:"month"`
	Properties []Property `json:"properties"`
}

// Prop finds a property by name.
func (e Entry) Prop(name string) (Property, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Text returns the label of a select property.
func (e Entry) Text(name string) string {
	p, _ := e.Prop(name)
	return p.Text
}

// Number returns the value of a number property.
func (e Entry) Number(name string) int64 {
	p, _ := e.Prop(name)
	return p.Number
}

func num(name string, v int64) Property {
	return Property{Name: name, Kind: KindNumber, Number: v}
}

func sel(name, v string) Property {
	return Property{Name: name, Kind: KindSelect, Text: v}
}

// Record is a finalized transaction of one of the five types.
type Record interface {
	Type() Type
	Entry() Entry
}

// VariableExpense is a day-to-day spend.
type VariableExpense struct {
	Date          string
	Month         string
	Category      string
	ShoppingGroup string
	Account       string
	Amount        int64
	Description   string
}

func (r VariableExpense) Type() Type { return Variable }

func (r VariableExpense) Entry() Entry {
	return Entry{
		Type: Variable, Title: r.Description, Date: r.Date, Month: r.Month,
		Properties: []Property{
			num(PropAmount, r.Amount),
			sel(PropCategory, r.Category),
			sel(PropShoppingGroup, r.ShoppingGroup),
			sel(PropAccount, r.Account),
		},
	}
}

// FixedExpense is a recurring bill.
type FixedExpense struct {
	Date        string
	Month       string
	Item        string
	Account     string
	Amount      int64
	Description string
}

func (r FixedExpense) Type() Type { return Fixed }

func (r FixedExpense) Entry() Entry {
	return Entry{
		Type: Fixed, Title: r.Description, Date: r.Date, Month: r.Month,
		Properties: []Property{
			num(PropAmount, r.Amount),
			sel(PropItem, r.Item),
			sel(PropAccount, r.Account),
		},
	}
}

// IncomeRecord is money received into an account.
type IncomeRecord struct {
	Date        string
	Month       string
	Group       string
	Account     string
	Amount      int64
	Description string
}

func (r IncomeRecord) Type() Type { return Income }

func (r IncomeRecord) Entry() Entry {
	return Entry{
		Type: Income, Title: r.Description, Date: r.Date, Month: r.Month,
		Properties: []Property{
			num(PropAmount, r.Amount),
			sel(PropIncomeGroup, r.Group),
			sel(PropAccount, r.Account),
		},
	}
}

// Movement carries the amounts shared by transfers and savings. AmountIn is
// what reaches the destination; AdminTax is charged on top of it.
type Movement struct {
	From      string
	To        string
	AmountOut int64
	AdminTax  int64
	TotalOut  int64
	AmountIn  int64
}

func newMovement(from, to string, out, fee int64) Movement {
	return Movement{
		From: from, To: to,
		AmountOut: out, AdminTax: fee,
		TotalOut: out + fee,
		AmountIn: out,
	}
}

func (m Movement) properties() []Property {
	return []Property{
		sel(PropFromAccount, m.From),
		sel(PropToAccount, m.To),
		num(PropAmountOut, m.AmountOut),
		num(PropAdminTax, m.AdminTax),
		num(PropTotalOut, m.TotalOut),
		num(PropAmountIn, m.AmountIn),
	}
}

// TransferRecord moves money between two accounts.
type TransferRecord struct {
	Movement
	Date         string
	Month        string
	TransferType string
	Description  string
}

func (r TransferRecord) Type() Type { return Transfer }

func (r TransferRecord) Entry() Entry {
	props := append(r.Movement.properties(), sel(PropTransferType, r.TransferType))
	return Entry{Type: Transfer, Title: r.Description, Date: r.Date, Month: r.Month, Properties: props}
}

// SavingsRecord moves money towards a savings plan.
type SavingsRecord struct {
	Movement
	Date        string
	Month       string
	Plan        string
	Description string
}

func (r SavingsRecord) Type() Type { return Savings }

func (r SavingsRecord) Entry() Entry {
	props := append([]Property{sel(PropSavingsPlan, r.Plan)}, r.Movement.properties()...)
	return Entry{Type: Savings, Title: r.Description, Date: r.Date, Month: r.Month, Properties: props}
}
