package txn

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"15000", 15000, true},
		{"5,000", 5000, true},
		{"Rp 12.500", 12500, true},
		{"15000 lunch", 15000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"99999999999999999999", 0, false},
		{"9223372036854775807", 0, false},
		{"1000000000000000", MaxAmount, true},
		{"1000000000000001", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseFee(t *testing.T) {
	n, err := ParseFee("0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = ParseFee("2,500")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), n)

	_, err = ParseFee("-5")
	assert.ErrorIs(t, err, ErrInvalidFee)
	_, err = ParseFee("none")
	assert.ErrorIs(t, err, ErrInvalidFee)
	_, err = ParseFee("1000000000000001")
	assert.ErrorIs(t, err, ErrInvalidFee)

	n, err = ParseFee("1000000000000000")
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, n)
}

func TestToAccountOptionsExcludeFrom(t *testing.T) {
	for _, from := range Accounts {
		opts := Options(StepToAccount, Draft{FromAccount: from})
		assert.Len(t, opts, len(Accounts)-1)
		for _, o := range opts {
			assert.NotEqual(t, from, o.Value)
		}
	}
}

func TestResolveSavingsPlanKey(t *testing.T) {
	name, ok := Resolve(StepSavingsPlan, Draft{}, "emergency")
	require.True(t, ok)
	assert.Equal(t, "Emergency Fund", name)
	assert.Equal(t, "emergency", TokenValue(StepSavingsPlan, name))

	_, ok = Resolve(StepCategory, Draft{}, "Luxury")
	assert.False(t, ok)
}

func TestStepActionsRoundTrip(t *testing.T) {
	for step, action := range stepActions {
		got, ok := StepForAction(action)
		require.True(t, ok)
		assert.Equal(t, step, got)
	}
	_, ok := StepForAction("amount")
	assert.False(t, ok)
}

func TestDraftMerge(t *testing.T) {
	d := Draft{Month: "June"}.WithNumber(StepAmount, 100)
	d = d.Merge(Draft{Category: "Survival"}.WithNumber(StepAdminTax, 0))

	assert.Equal(t, "June", d.Month)
	assert.Equal(t, "Survival", d.Category)
	assert.True(t, d.Has(StepAdminTax))
	fee, _ := d.Number(StepAdminTax)
	assert.Equal(t, int64(0), fee)
	assert.False(t, d.Has(StepAmountOut))
}

func TestBuildVariable(t *testing.T) {
	now := time.Date(2025, time.June, 14, 9, 0, 0, 0, time.UTC)
	m, _ := ModuleFor(Variable)
	d := Draft{Month: "June", Category: "Survival", ShoppingGroup: "Food", Account: "Cash", Description: "lunch"}.
		WithNumber(StepAmount, 15000)

	rec, err := m.Build(d, now)
	require.NoError(t, err)
	assert.Equal(t, VariableExpense{
		Date: "2025-06-14", Month: "June", Category: "Survival", ShoppingGroup: "Food",
		Account: "Cash", Amount: 15000, Description: "lunch",
	}, rec)
}

func TestBuildIncomplete(t *testing.T) {
	m, _ := ModuleFor(Fixed)
	_, err := m.Build(Draft{Item: "Internet", Month: "May"}, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))
}

func TestBuildMovementTotals(t *testing.T) {
	now := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	for _, typ := range []Type{Transfer, Savings} {
		m, _ := ModuleFor(typ)
		for _, fee := range []int64{0, 2500} {
			d := Draft{
				Month: "March", SavingsPlan: "Emergency Fund", TransferType: "Top Up",
				FromAccount: "BCA", ToAccount: "GoPay", Description: "move",
			}.WithNumber(StepAmountOut, 100000).WithNumber(StepAdminTax, fee)

			rec, err := m.Build(d, now)
			require.NoError(t, err)
			e := rec.Entry()
			assert.Equal(t, e.Number(PropAmountOut)+e.Number(PropAdminTax), e.Number(PropTotalOut))
			assert.Equal(t, e.Number(PropAmountOut), e.Number(PropAmountIn))
			assert.Equal(t, "March", e.Month)
		}
	}
}

func TestBuildRejectsSelfTransfer(t *testing.T) {
	m, _ := ModuleFor(Transfer)
	d := Draft{FromAccount: "BCA", ToAccount: "BCA", TransferType: "Transfer", Description: "x"}.
		WithNumber(StepAmountOut, 1).WithNumber(StepAdminTax, 0)
	_, err := m.Build(d, time.Now())
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestFlowSkipsLockedSteps(t *testing.T) {
	m, _ := ModuleFor(Fixed)
	f := Flow{Module: m, Preset: "internet", Locked: Draft{Item: "Internet", Month: "May", Account: "BCA", Description: "Monthly internet"}}

	start, ok := f.Start()
	require.True(t, ok)
	assert.Equal(t, StepAmount, start)

	_, ok = f.Next(StepAmount)
	assert.False(t, ok, "description is locked so amount is the last step")
	assert.Empty(t, f.OpenSelections())
}

func TestFlowNextAndPrior(t *testing.T) {
	f, _ := NewFlow(Variable)
	next, ok := f.Next(StepCategory)
	require.True(t, ok)
	assert.Equal(t, StepShoppingGroup, next)

	next, ok = f.Next(StepAccount)
	require.True(t, ok)
	assert.Equal(t, StepAmount, next)

	d := Draft{Month: "June", Category: "Survival", ShoppingGroup: "Food"}
	assert.Equal(t, []string{"June", "Survival", "Food"}, f.Prior(StepAccount, d))

	prev, ok := f.Previous(StepShoppingGroup)
	require.True(t, ok)
	assert.Equal(t, StepCategory, prev)
	_, ok = f.Previous(StepMonth)
	assert.False(t, ok)
}

func TestWeekOf(t *testing.T) {
	// Wednesday.
	now := time.Date(2025, time.January, 8, 15, 30, 0, 0, time.UTC)
	w := WeekOf(now, 0)
	assert.Equal(t, "2025-01-05", w.Start.Format(DateLayout))
	assert.Equal(t, "2025-01-11", w.End.Format(DateLayout))

	prev := WeekOf(now, 1)
	assert.Equal(t, "2024-12-29", prev.Start.Format(DateLayout))
	assert.Equal(t, []string{"December", "January"}, prev.Months())
	assert.Equal(t, "Dec 29 - Jan 4, 2025", prev.Range())
}

func TestPreviousMonthAtMonthEnd(t *testing.T) {
	cases := map[string]time.Time{
		"February": time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC),
		"April":    time.Date(2025, time.May, 31, 9, 0, 0, 0, time.UTC),
		"November": time.Date(2025, time.December, 31, 9, 0, 0, 0, time.UTC),
		"December": time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	for want, now := range cases {
		assert.Equal(t, want, PreviousMonth(now), "at %s", now.Format(time.DateOnly))
	}
}
