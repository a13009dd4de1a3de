// Package ledger routes finished transactions to their storage collection and
// links select properties to records of related collections.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/expensebot/core/logger"
	"github.com/m3rciful/expensebot/internal/store"
	"github.com/m3rciful/expensebot/internal/txn"
)

// ErrNoCollection is returned when no collection is configured for a record.
var ErrNoCollection = errors.New("no collection configured")

// Route names the collections of one transaction type. Months overrides
// Default for a given month label.
type Route struct {
	Default string            `yaml:"default"`
	Months  map[string]string `yaml:"months"`
}

// Config maps transaction types to collections and property names to the
// collections holding their linked records.
type Config struct {
	Collections map[txn.Type]Route `yaml:"collections"`
	Relations   map[string]string  `yaml:"relations"`
}

// Writer persists records through a store.
type Writer struct {
	store store.Store
	cfg   Config
}

// New returns a Writer over st.
func New(st store.Store, cfg Config) *Writer {
	return &Writer{store: st, cfg: cfg}
}

// Store exposes the backend for read paths such as reports.
func (w *Writer) Store() store.Store { return w.store }

// Collection resolves the collection key of type t for month.
func (w *Writer) Collection(t txn.Type, month string) (string, error) {
	route, ok := w.cfg.Collections[t]
	if ok {
		if key := route.Months[month]; key != "" {
			return key, nil
		}
		if route.Default != "" {
			return route.Default, nil
		}
	}
	return "", fmt.Errorf("%w: %s %s", ErrNoCollection, t, month)
}

// Collections returns the distinct collections of t covering months, in
// order. Months without a collection are skipped.
func (w *Writer) Collections(t txn.Type, months ...string) []string {
	if len(months) == 0 {
		months = []string{""}
	}
	seen := make(map[string]bool, len(months))
	var out []string
	for _, m := range months {
		key, err := w.Collection(t, m)
		if err != nil || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

// Submit stores rec and returns the id of the new record.
func (w *Writer) Submit(ctx context.Context, rec txn.Record) (string, error) {
	start := time.Now()
	entry := rec.Entry()
	collection, err := w.Collection(rec.Type(), entry.Month)
	if err != nil {
		w.log(ctx, slog.LevelError, "ledger.submit", rec.Type(), "", start, err)
		return "", err
	}

	entry.Properties = w.link(ctx, entry.Properties)

	id, err := w.store.CreateRecord(ctx, collection, entry)
	if err != nil {
		err = fmt.Errorf("create %s record: %w", rec.Type(), err)
		w.log(ctx, slog.LevelError, "ledger.submit", rec.Type(), collection, start, err)
		return "", err
	}
	w.log(ctx, slog.LevelInfo, "ledger.submit", rec.Type(), collection, start, nil, slog.String("record_id", id))
	return id, nil
}

// link resolves every property that has a relation collection. A miss or a
// failed lookup leaves the property as a plain label.
func (w *Writer) link(ctx context.Context, props []txn.Property) []txn.Property {
	out := make([]txn.Property, len(props))
	copy(out, props)
	for i, p := range out {
		collection, ok := w.cfg.Relations[p.Name]
		if !ok || p.Kind != txn.KindSelect || p.Text == "" {
			continue
		}
		id, found, err := w.store.FindByLabel(ctx, collection, p.Text)
		switch {
		case err != nil:
			logger.Log(ctx, logger.Ledger, slog.LevelWarn, "ledger.relation",
				slog.String("status", "fail"),
				slog.String("property", p.Name),
				slog.String("label", p.Text),
				slog.String("err", err.Error()))
		case !found:
			logger.Log(ctx, logger.Ledger, slog.LevelWarn, "ledger.relation",
				slog.String("status", "skip"),
				slog.String("property", p.Name),
				slog.String("label", p.Text))
		default:
			out[i].Link = id
		}
	}
	return out
}

func (w *Writer) log(ctx context.Context, level slog.Level, event string, t txn.Type, collection string, start time.Time, err error, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("txn_type", t.String()),
		slog.String("collection", collection),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs[0] = slog.String("status", "fail")
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	logger.Log(ctx, logger.Ledger, level, event, append(attrs, extra...)...)
}
