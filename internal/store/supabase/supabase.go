// Package supabase stores records in the records table through Supabase's
// PostgREST endpoint.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/m3rciful/expensebot/core/logger"
	"github.com/m3rciful/expensebot/internal/store"
	"github.com/m3rciful/expensebot/internal/txn"
)

const table = "records"

type record struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Type       string          `json:"type"`
	Title      string          `json:"title"`
	Date       *string         `json:"date"`
	Month      string          `json:"month"`
	Properties json.RawMessage `json:"properties"`
}

func (r record) entry() (txn.Entry, error) {
	e := txn.Entry{ID: r.ID, Type: txn.Type(r.Type), Title: r.Title, Month: r.Month}
	if r.Date != nil {
		e.Date = *r.Date
	}
	if len(r.Properties) > 0 {
		if err := json.Unmarshal(r.Properties, &e.Properties); err != nil {
			return txn.Entry{}, fmt.Errorf("decode properties of %s: %w", r.ID, err)
		}
	}
	return e, nil
}

// Store implements store.Store over a Supabase project.
type Store struct {
	client *supabase.Client
}

var _ store.Store = (*Store)(nil)

// New connects to the project at url with an API key.
func New(url, key string) (*Store, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) CreateRecord(ctx context.Context, collection string, e txn.Entry) (string, error) {
	if collection == "" {
		return "", store.ErrEmptyCollection
	}
	props := e.Properties
	if props == nil {
		props = []txn.Property{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("encode properties: %w", err)
	}
	r := record{
		ID:         uuid.NewString(),
		Collection: collection,
		Type:       string(e.Type),
		Title:      e.Title,
		Month:      e.Month,
		Properties: raw,
	}
	if e.Date != "" {
		r.Date = &e.Date
	}

	start := time.Now()
	var created []record
	_, err = s.client.From(table).Insert(r, false, "", "representation", "").ExecuteTo(&created)
	logCall(ctx, "store.create", collection, start, err)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	if len(created) > 0 && created[0].ID != "" {
		return created[0].ID, nil
	}
	return r.ID, nil
}

func (s *Store) QueryRecent(ctx context.Context, collection string, limit int) ([]txn.Entry, error) {
	if collection == "" {
		return nil, store.ErrEmptyCollection
	}
	q := s.client.From(table).
		Select("*", "", false).
		Eq("collection", collection).
		Order("date", &postgrest.OrderOpts{Ascending: false}).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		q = q.Limit(limit, "")
	}
	return s.fetch(ctx, "store.query_recent", collection, q)
}

func (s *Store) QueryRange(ctx context.Context, collection, from, to string) ([]txn.Entry, error) {
	if collection == "" {
		return nil, store.ErrEmptyCollection
	}
	q := s.client.From(table).
		Select("*", "", false).
		Eq("collection", collection).
		And(fmt.Sprintf("date.gte.%s,date.lte.%s", from, to), "").
		Order("date", &postgrest.OrderOpts{Ascending: false})
	return s.fetch(ctx, "store.query_range", collection, q)
}

func (s *Store) FindByLabel(ctx context.Context, collection, label string) (string, bool, error) {
	if collection == "" {
		return "", false, store.ErrEmptyCollection
	}
	var rows []record
	_, err := s.client.From(table).
		Select("id", "", false).
		Eq("collection", collection).
		Eq("title", label).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return "", false, fmt.Errorf("find by label: %w", err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].ID, true, nil
}

func (s *Store) fetch(ctx context.Context, event, collection string, q *postgrest.FilterBuilder) ([]txn.Entry, error) {
	start := time.Now()
	var rows []record
	_, err := q.ExecuteTo(&rows)
	logCall(ctx, event, collection, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", event, err)
	}
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
		slog.String("backend", "supabase"),
		slog.String("collection", collection),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		logger.Warn(ctx, logger.Store, event, append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
		return
	}
	logger.Debug(ctx, logger.Store, event, append(attrs, slog.String("status", "ok"))...)
}
