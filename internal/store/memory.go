package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/m3rciful/expensebot/internal/txn"
)

type memoryRow struct {
	entry txn.Entry
	seq   int
}

// Memory keeps entries in process memory. It is used in development and tests.
type Memory struct {
	mu          sync.RWMutex
	seq         int
	collections map[string][]memoryRow
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]memoryRow)}
}

func (m *Memory) CreateRecord(_ context.Context, collection string, e txn.Entry) (string, error) {
	if collection == "" {
		return "", ErrEmptyCollection
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = uuid.NewString()
	e.Properties = append([]txn.Property(nil), e.Properties...)
	m.seq++
	m.collections[collection] = append(m.collections[collection], memoryRow{entry: e, seq: m.seq})
	return e.ID, nil
}

// newest orders rows by date, then insertion, descending.
func newest(rows []memoryRow) []memoryRow {
	out := append([]memoryRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].entry.Date != out[j].entry.Date {
			return out[i].entry.Date > out[j].entry.Date
		}
		return out[i].seq > out[j].seq
	})
	return out
}

func (m *Memory) QueryRecent(_ context.Context, collection string, limit int) ([]txn.Entry, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	m.mu.RLock()
	rows := newest(m.collections[collection])
	m.mu.RUnlock()

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]txn.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry)
	}
	return out, nil
}

func (m *Memory) QueryRange(_ context.Context, collection, from, to string) ([]txn.Entry, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	m.mu.RLock()
	rows := newest(m.collections[collection])
	m.mu.RUnlock()

	var out []txn.Entry
	for _, r := range rows {
		if r.entry.Date >= from && r.entry.Date <= to {
			out = append(out, r.entry)
		}
	}
	return out, nil
}

func (m *Memory) FindByLabel(_ context.Context, collection, label string) (string, bool, error) {
	if collection == "" {
		return "", false, ErrEmptyCollection
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.collections[collection] {
		if r.entry.Title == label {
			return r.entry.ID, true, nil
		}
	}
	return "", false, nil
}

// AddLabel registers a relation target and returns its id.
func (m *Memory) AddLabel(collection, label string) string {
	id, _ := m.CreateRecord(context.Background(), collection, txn.Entry{Title: label})
	return id
}

// Entries returns every entry of a collection in insertion order.
func (m *Memory) Entries(collection string) []txn.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.collections[collection]
	out := make([]txn.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry)
	}
	return out
}
