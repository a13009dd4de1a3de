package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/expensebot/internal/txn"
)

func entry(title, date string) txn.Entry {
	return txn.Entry{Type: txn.Variable, Title: title, Date: date, Month: "June"}
}

func TestMemoryRecentIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, e := range []txn.Entry{
		entry("a", "2025-06-01"),
		entry("b", "2025-06-03"),
		entry("c", "2025-06-03"),
		entry("d", "2025-06-02"),
	} {
		_, err := m.CreateRecord(ctx, "june", e)
		require.NoError(t, err)
	}

	got, err := m.QueryRecent(ctx, "june", 3)
	require.NoError(t, err)
	var titles []string
	for _, e := range got {
		titles = append(titles, e.Title)
		assert.NotEmpty(t, e.ID)
	}
	assert.Equal(t, []string{"c", "b", "d"}, titles)
}

func TestMemoryRangeIsInclusive(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, d := range []string{"2025-06-01", "2025-06-07", "2025-06-08"} {
		_, err := m.CreateRecord(ctx, "june", entry(d, d))
		require.NoError(t, err)
	}
	got, err := m.QueryRange(ctx, "june", "2025-06-01", "2025-06-07")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMemoryFindByLabel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id := m.AddLabel("accounts", "BCA")

	got, found, err := m.FindByLabel(ctx, "accounts", "BCA")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, got)

	_, found, err = m.FindByLabel(ctx, "accounts", "Jago")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryRejectsEmptyCollection(t *testing.T) {
	_, err := NewMemory().CreateRecord(context.Background(), "", entry("a", "2025-06-01"))
	assert.ErrorIs(t, err, ErrEmptyCollection)
}
