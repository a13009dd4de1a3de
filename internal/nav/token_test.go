package nav

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/expensebot/internal/txn"
)

func TestRoundTrip(t *testing.T) {
	tokens := []Token{
		Menu(ScreenMain),
		Menu(ScreenWeekly),
		New(txn.Savings),
		Select(txn.Variable, txn.StepCategory, "June", "Survival"),
		Select(txn.Variable, txn.StepAccount, "June", "Survival", "Together Expense", "Emas Fisik"),
		Select(txn.Transfer, txn.StepTransferType, "BCA", "GoPay", "Top Up"),
		Select(txn.Income, txn.StepIncomeGroup, "Hutang Teman"),
		Back(ScreenMain),
		Back(ScreenRecurring),
		BackTo(txn.Variable, txn.StepShoppingGroup, "June", "Survival"),
		BackTo(txn.Savings, txn.StepToAccount, "kpr3y", "May", "BCA"),
		Preset("lunch-office"),
		PresetSelect("lunch-office", txn.StepAccount, "June", "Cash"),
		BackToPreset("lunch-office", txn.StepMonth),
		Recent(txn.Fixed),
		Weekly(2),
	}
	for _, want := range tokens {
		wire := Encode(want)
		got, err := Decode(wire)
		require.NoError(t, err, wire)
		assert.Equal(t, want, got, wire)
	}
}

func TestWireForm(t *testing.T) {
	assert.Equal(t, "category_variable_June_Survival", Encode(Select(txn.Variable, txn.StepCategory, "June", "Survival")))
	assert.Equal(t, "back_main", Encode(Back(ScreenMain)))
	assert.Equal(t, "recurring_select_lunch-office", Encode(Preset("lunch-office")))
	assert.Equal(t, "weekly_1", Encode(Weekly(1)))
}

func TestEscapedValues(t *testing.T) {
	tok := Select(txn.Variable, txn.StepMonth, "a_b%c")
	wire := Encode(tok)
	assert.Equal(t, "month_variable_a%5Fb%25c", wire)

	got, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b%c"}, got.Values)
}

func TestDecodeStripsTelebotPrefix(t *testing.T) {
	got, err := Decode("\fnew_income")
	require.NoError(t, err)
	assert.Equal(t, New(txn.Income), got)
}

func TestDecodeMalformed(t *testing.T) {
	for _, data := range []string{
		"",
		"bogus",
		"add_transaction",
		"new_lottery",
		"new",
		"menu_nowhere",
		"month_variable",
		"category_unknown_June",
		"weekly_x",
		"weekly_-1",
		"recurring_select",
		"recurring_month_lunch-office",
		"back",
		"back_nowhere_variable",
		"month_variable_bad%2",
		"month_variable_bad%41",
	} {
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrMalformed, "data %q", data)
	}
}

func TestActionsCoverEncodedTokens(t *testing.T) {
	heads := map[string]bool{}
	for _, a := range Actions() {
		heads[a] = true
	}
	for _, tok := range []Token{
		Menu(ScreenAdd),
		New(txn.Transfer),
		Select(txn.Transfer, txn.StepFromAccount, "BCA"),
		Back(ScreenMain),
		Preset("internet"),
		Recent(txn.Income),
		Weekly(1),
	} {
		head, _, _ := strings.Cut(Encode(tok), "_")
		assert.True(t, heads[head], head)
	}
}
