package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/expensebot/internal/txn"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore() (Store, *clock) {
	c := &clock{now: time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)}
	return NewMemoryStore(24*time.Hour, c.Now), c
}

func TestCreateStartsAtFirstStep(t *testing.T) {
	s, _ := newStore()
	sess := s.Create(7, txn.Savings)
	assert.Equal(t, txn.StepSavingsPlan, sess.Step)
	assert.False(t, sess.AwaitingInput)
	assert.Equal(t, txn.Draft{}, sess.Draft)
}

func TestCreateOverwrites(t *testing.T) {
	s, _ := newStore()
	s.Create(7, txn.Variable)
	s.MergeFields(7, txn.Draft{Month: "June"})
	s.Create(7, txn.Income)

	got, ok := s.Get(7)
	require.True(t, ok)
	assert.Equal(t, txn.Income, got.Type)
	assert.Empty(t, got.Draft.Month)
}

func TestMergeAndPatch(t *testing.T) {
	s, _ := newStore()
	s.Create(7, txn.Variable)
	s.MergeFields(7, txn.Draft{Month: "June", Category: "Survival"})
	s.MergeFields(7, txn.Draft{Category: "Extra"})
	s.Patch(7, Patch{Step: StepPtr(txn.StepAmount), AwaitingInput: BoolPtr(true)})

	got, ok := s.Get(7)
	require.True(t, ok)
	assert.Equal(t, "June", got.Draft.Month)
	assert.Equal(t, "Extra", got.Draft.Category)
	assert.Equal(t, txn.StepAmount, got.Step)
	assert.True(t, got.AwaitingInput)
	assert.Empty(t, got.Preset)
}

func TestMutationsWithoutSessionAreNoops(t *testing.T) {
	s, _ := newStore()
	s.MergeFields(9, txn.Draft{Month: "June"})
	s.Patch(9, Patch{AwaitingInput: BoolPtr(true)})
	_, ok := s.Get(9)
	assert.False(t, ok)
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := newStore()
	s.Create(7, txn.Variable)
	got, _ := s.Get(7)
	got.Draft.Month = "June"

	again, _ := s.Get(7)
	assert.Empty(t, again.Draft.Month)
}

func TestExpiredSessionIsAbsent(t *testing.T) {
	s, c := newStore()
	s.Create(7, txn.Variable)
	c.Advance(23 * time.Hour)
	s.Patch(7, Patch{AwaitingInput: BoolPtr(true)})
	_, ok := s.Get(7)
	require.True(t, ok)

	c.Advance(time.Hour)
	_, ok = s.Get(7)
	assert.False(t, ok)

	s.MergeFields(7, txn.Draft{Month: "June"})
	assert.Equal(t, 1, s.Sweep(c.Now()))
	_, ok = s.Get(7)
	assert.False(t, ok)
}

func TestSweepKeepsLiveSessions(t *testing.T) {
	s, c := newStore()
	s.Create(1, txn.Variable)
	c.Advance(12 * time.Hour)
	s.Create(2, txn.Fixed)
	c.Advance(13 * time.Hour)

	assert.Equal(t, 1, s.Sweep(c.Now()))
	_, ok := s.Get(2)
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	s, _ := newStore()
	s.Create(7, txn.Variable)
	s.Clear(7)
	_, ok := s.Get(7)
	assert.False(t, ok)
}

func TestLockerSerializesPerUser(t *testing.T) {
	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(42)
			defer unlock()

			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
	assert.Equal(t, 0, l.Len())
}
