package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/expensebot/internal/store"
	"github.com/m3rciful/expensebot/internal/txn"
)

func testConfig() Config {
	return Config{
		Collections: map[txn.Type]Route{
			txn.Variable: {Default: "variable", Months: map[string]string{"June": "variable-june"}},
			txn.Transfer: {Default: "transfers"},
		},
		Relations: map[string]string{
			txn.PropAccount:     "accounts",
			txn.PropFromAccount: "accounts",
			txn.PropToAccount:   "accounts",
		},
	}
}

func lunch(month string) txn.VariableExpense {
	return txn.VariableExpense{
		Date: "2025-06-02", Month: month, Category: "Survival", ShoppingGroup: "Food",
		Account: "BCA", Amount: 15000, Description: "lunch",
	}
}

func TestCollectionPrefersMonth(t *testing.T) {
	w := New(store.NewMemory(), testConfig())

	got, err := w.Collection(txn.Variable, "June")
	require.NoError(t, err)
	assert.Equal(t, "variable-june", got)

	got, err = w.Collection(txn.Variable, "July")
	require.NoError(t, err)
	assert.Equal(t, "variable", got)

	_, err = w.Collection(txn.Savings, "June")
	assert.ErrorIs(t, err, ErrNoCollection)
}

func TestCollectionsDeduplicates(t *testing.T) {
	w := New(store.NewMemory(), testConfig())
	assert.Equal(t, []string{"variable-june", "variable"}, w.Collections(txn.Variable, "June", "July", "August"))
	assert.Equal(t, []string{"transfers"}, w.Collections(txn.Transfer))
	assert.Empty(t, w.Collections(txn.Income, "June"))
}

func TestSubmitLinksKnownLabels(t *testing.T) {
	mem := store.NewMemory()
	bca := mem.AddLabel("accounts", "BCA")
	w := New(mem, testConfig())

	id, err := w.Submit(context.Background(), lunch("June"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	saved := mem.Entries("variable-june")
	require.Len(t, saved, 1)
	acc, ok := saved[0].Prop(txn.PropAccount)
	require.True(t, ok)
	assert.Equal(t, bca, acc.Link)
	assert.Equal(t, "BCA", acc.Text)
	cat, _ := saved[0].Prop(txn.PropCategory)
	assert.Empty(t, cat.Link)
}

func TestSubmitLeavesMissUnlinked(t *testing.T) {
	mem := store.NewMemory()
	w := New(mem, testConfig())

	_, err := w.Submit(context.Background(), lunch("July"))
	require.NoError(t, err)

	saved := mem.Entries("variable")
	require.Len(t, saved, 1)
	acc, _ := saved[0].Prop(txn.PropAccount)
	assert.Empty(t, acc.Link)
	assert.Equal(t, "BCA", acc.Text)
}

type failingStore struct {
	store.Store
	findErr   error
	createErr error
	created   []txn.Entry
}

func (f *failingStore) FindByLabel(context.Context, string, string) (string, bool, error) {
	return "", false, f.findErr
}

func (f *failingStore) CreateRecord(_ context.Context, _ string, e txn.Entry) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, e)
	return "id-1", nil
}

func TestSubmitToleratesLookupFailure(t *testing.T) {
	st := &failingStore{findErr: errors.New("timeout")}
	w := New(st, testConfig())

	id, err := w.Submit(context.Background(), lunch("June"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	require.Len(t, st.created, 1)
	acc, _ := st.created[0].Prop(txn.PropAccount)
	assert.Empty(t, acc.Link)
}

func TestSubmitPropagatesCreateFailure(t *testing.T) {
	boom := errors.New("boom")
	w := New(&failingStore{createErr: boom}, testConfig())

	_, err := w.Submit(context.Background(), lunch("June"))
	assert.ErrorIs(t, err, boom)
}

func TestSubmitWithoutCollection(t *testing.T) {
	mem := store.NewMemory()
	w := New(mem, testConfig())

	_, err := w.Submit(context.Background(), txn.IncomeRecord{Month: "June", Amount: 1})
	assert.ErrorIs(t, err, ErrNoCollection)
}
