// Package session keeps the in-progress conversation of each user: which
// transaction type is being entered, the current step and the draft collected
// so far.
package session

import (
	"time"

	"github.com/m3rciful/expensebot/internal/txn"
)

// DefaultTTL is how long a session stays usable after it was created.
const DefaultTTL = 24 * time.Hour

// Session is one user's active flow.
type Session struct {
	UserID        int64
	Type          txn.Type
	Step          txn.Step
	AwaitingInput bool
	Draft         txn.Draft
	// Preset is the key of the recurring preset that seeded the draft.
	Preset    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patch changes the position of a session; nil fields are left alone.
type Patch struct {
	Step          *txn.Step
	AwaitingInput *bool
	Preset        *string
}

// Store holds at most one session per user. Expired sessions behave as absent.
type Store interface {
	// Get returns a copy of the user's session.
	Get(userID int64) (Session, bool)
	// Create replaces any session of the user with a fresh one positioned at
	// the first step of t.
	Create(userID int64, t txn.Type) Session
	// MergeFields overlays the present fields of d onto the draft. No-op
	// without a session.
	MergeFields(userID int64, d txn.Draft)
	// Patch applies p. No-op without a session.
	Patch(userID int64, p Patch)
	Clear(userID int64)
	// Sweep drops sessions expired at now and reports how many were removed.
	Sweep(now time.Time) int
}

// StepPtr is a helper for building patches.
func StepPtr(s txn.Step) *txn.Step { return &s }

// BoolPtr is a helper for building patches.
func BoolPtr(b bool) *bool { return &b }

// StringPtr is a helper for building patches.
func StringPtr(s string) *string { return &s }
