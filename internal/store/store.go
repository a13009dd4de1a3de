// Package store defines the persistence collaborator records are written to
// and read back from, plus an in-process implementation.
package store

import (
	"context"
	"errors"

	"github.com/m3rciful/expensebot/internal/txn"
)

// ErrEmptyCollection is returned when a call names no collection.
var ErrEmptyCollection = errors.New("store: empty collection key")

// Store persists entries into named collections. A collection is a database
// id for the Notion backend and a logical partition of the records table for
// the SQL ones.
type Store interface {
	// CreateRecord writes e and returns the id the backend assigned.
	CreateRecord(ctx context.Context, collection string, e txn.Entry) (string, error)
	// QueryRecent returns up to limit entries, newest first.
	QueryRecent(ctx context.Context, collection string, limit int) ([]txn.Entry, error)
	// QueryRange returns entries dated within [from, to], both YYYY-MM-DD.
	QueryRange(ctx context.Context, collection, from, to string) ([]txn.Entry, error)
	// FindByLabel resolves a display name to the id of the record carrying it.
	// A miss is reported with found=false and a nil error.
	FindByLabel(ctx context.Context, collection, label string) (id string, found bool, err error)
}
