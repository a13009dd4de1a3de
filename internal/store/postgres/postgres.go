// Package postgres stores records in the records table created by the
// migrations directory.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/expensebot/core/logger"
	"github.com/m3rciful/expensebot/internal/store"
	"github.com/m3rciful/expensebot/internal/txn"
)

const selectColumns = `id, collection, type, title,
	COALESCE(to_char(date, 'YYYY-MM-DD'), '') AS date, month, properties`

type row struct {
	ID         string `db:"id"`
	Collection string `db:"collection"`
	Type       string `db:"type"`
	Title      string `db:"title"`
	Date       string `db:"date"`
	Month      string `db:"month"`
	Properties string `db:"properties"`
}

func fromEntry(collection string, e txn.Entry) (row, error) {
	props := e.Properties
	if props == nil {
		props = []txn.Property{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return row{}, fmt.Errorf("encode properties: %w", err)
	}
	return row{
		ID:         uuid.NewString(),
		Collection: collection,
		Type:       string(e.Type),
		Title:      e.Title,
		Date:       e.Date,
		Month:      e.Month,
		Properties: string(raw),
	}, nil
}

func (r row) entry() (txn.Entry, error) {
	e := txn.Entry{
		ID:    r.ID,
		Type:  txn.Type(r.Type),
		Title: r.Title,
		Date:  r.Date,
		Month: r.Month,
	}
	if len(r.Properties) > 0 {
		if err := json.Unmarshal([]byte(r.Properties), &e.Properties); err != nil {
			return txn.Entry{}, fmt.Errorf("decode properties of %s: %w", r.ID, err)
		}
	}
	return e, nil
}

// Store implements store.Store on a sqlx handle.
type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateRecord(ctx context.Context, collection string, e txn.Entry) (string, error) {
	if collection == "" {
		return "", store.ErrEmptyCollection
	}
	r, err := fromEntry(collection, e)
	if err != nil {
		return "", err
	}
	start := time.Now()
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO records (id, collection, type, title, date, month, properties)
		VALUES (:id, :collection, :type, :title, CAST(NULLIF(:date, '') AS date), :month, :properties)`, r)
	logCall(ctx, "store.create", collection, start, err)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return r.ID, nil
}

func (s *Store) QueryRecent(ctx context.Context, collection string, limit int) ([]txn.Entry, error) {
	if collection == "" {
		return nil, store.ErrEmptyCollection
	}
	var rows []row
	start := time.Now()
	err := s.db.SelectContext(ctx, &rows, `SELECT `+selectColumns+`
		FROM records WHERE collection = $1
		ORDER BY date DESC NULLS LAST, created_at DESC
		LIMIT $2`, collection, limit)
	logCall(ctx, "store.query_recent", collection, start, err)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	return entries(rows)
}

func (s *Store) QueryRange(ctx context.Context, collection, from, to string) ([]txn.Entry, error) {
	if collection == "" {
		return nil, store.ErrEmptyCollection
	}
	var rows []row
	start := time.Now()
	err := s.db.SelectContext(ctx, &rows, `SELECT `+selectColumns+`
		FROM records WHERE collection = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date DESC, created_at DESC`, collection, from, to)
	logCall(ctx, "store.query_range", collection, start, err)
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	return entries(rows)
}

func (s *Store) FindByLabel(ctx context.Context, collection, label string) (string, bool, error) {
	if collection == "" {
		return "", false, store.ErrEmptyCollection
	}
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT id FROM records WHERE collection = $1 AND title = $2 ORDER BY created_at LIMIT 1`,
		collection, label)
	if err != nil {
		return "", false, fmt.Errorf("find by label: %w", err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

func entries(rows []row) ([]txn.Entry, error) {
	out := make([]txn.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func logCall(ctx context.Context, event, collection string, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("backend", "postgres"),
		slog.String("collection", collection),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		logger.Warn(ctx, logger.Store, event, append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
		return
	}
	logger.Debug(ctx, logger.Store, event, append(attrs, slog.String("status", "ok"))...)
}
