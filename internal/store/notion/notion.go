package notion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jomei/notionapi"

	"github.com/m3rciful/expensebot/core/logger"
	"github.com/m3rciful/expensebot/internal/store"
	"github.com/m3rciful/expensebot/internal/txn"
)

// Config configures the Notion backend.
type Config struct {
	Token   string
	BaseURL string
	// TitleProperty names the title column of transaction databases.
	TitleProperty string
	// RelationTitleProperty names the title column of linked databases
	// such as accounts or categories.
	RelationTitleProperty string
	// Types maps a database id to the transaction type it holds.
	Types      map[string]txn.Type
	HTTPClient *http.Client
}

func (c *Config) normalize() {
	if c.TitleProperty == "" {
		c.TitleProperty = "Transaction"
	}
	if c.RelationTitleProperty == "" {
		c.RelationTitleProperty = "Name"
	}
}

// Store implements store.Store on top of Notion databases.
type Store struct {
	cfg Config
	api *notionapi.Client

	mu     sync.RWMutex
	labels map[string]string
}

var _ store.Store = (*Store)(nil)

// New returns a Store using the integration token in cfg.
func New(cfg Config) (*Store, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion: missing token")
	}
	cfg.normalize()
	api, err := newClient(cfg.Token, cfg.BaseURL, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &Store{cfg: cfg, api: api, labels: make(map[string]string)}, nil
}

var newestFirst = []notionapi.SortObject{{Property: propDate, Direction: notionapi.SortOrderDESC}}

func (s *Store) CreateRecord(ctx context.Context, collection string, e txn.Entry) (string, error) {
	if collection == "" {
		return "", store.ErrEmptyCollection
	}
	start := time.Now()
	created, err := s.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{DatabaseID: notionapi.DatabaseID(collection)},
		Properties: encode(e, s.cfg.TitleProperty),
	})
	logCall(ctx, "store.create", collection, start, err)
	if err != nil {
		return "", fmt.Errorf("notion create: %w", err)
	}
	return string(created.ID), nil
}

func (s *Store) QueryRecent(ctx context.Context, collection string, limit int) ([]txn.Entry, error) {
	if collection == "" {
		return nil, store.ErrEmptyCollection
	}
	return s.query(ctx, "store.query_recent", collection, &notionapi.DatabaseQueryRequest{
		Sorts:    newestFirst,
		PageSize: limit,
	})
}

func (s *Store) QueryRange(ctx context.Context, collection, from, to string) ([]txn.Entry, error) {
	if collection == "" {
		return nil, store.ErrEmptyCollection
	}
	lo, hi := day(from), day(to)
	if lo == nil || hi == nil {
		return nil, fmt.Errorf("notion range: bad dates %q..%q", from, to)
	}
	endOfDay := notionapi.Date(time.Time(*hi).Add(24*time.Hour - time.Second))
	hi = &endOfDay
	return s.query(ctx, "store.query_range", collection, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.AndCompoundFilter{
			notionapi.PropertyFilter{Property: propDate, Date: &notionapi.DateFilterCondition{OnOrAfter: lo}},
			notionapi.PropertyFilter{Property: propDate, Date: &notionapi.DateFilterCondition{OnOrBefore: hi}},
		},
		Sorts: newestFirst,
	})
}

func (s *Store) FindByLabel(ctx context.Context, collection, label string) (string, bool, error) {
	if collection == "" {
		return "", false, store.ErrEmptyCollection
	}
	res, err := s.api.Database.Query(ctx, notionapi.DatabaseID(collection), &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: s.cfg.RelationTitleProperty,
			RichText: &notionapi.TextFilterCondition{Equals: label},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", false, fmt.Errorf("find by label: %w", err)
	}
	if len(res.Results) == 0 {
		return "", false, nil
	}
	id := string(res.Results[0].ID)
	s.remember(id, label)
	return id, true, nil
}

func (s *Store) query(ctx context.Context, event, collection string, q *notionapi.DatabaseQueryRequest) ([]txn.Entry, error) {
	start := time.Now()
	res, err := s.api.Database.Query(ctx, notionapi.DatabaseID(collection), q)
	logCall(ctx, event, collection, start, err)
	if err != nil {
		return nil, fmt.Errorf("notion query: %w", err)
	}
	t := s.cfg.Types[collection]
	out := make([]txn.Entry, 0, len(res.Results))
	for _, p := range res.Results {
		out = append(out, decode(p, t, s.cfg.TitleProperty, func(id string) string {
			return s.label(ctx, id)
		}))
	}
	return out, nil
}

func (s *Store) remember(id, label string) {
	s.mu.Lock()
	s.labels[id] = label
	s.mu.Unlock()
}

// label returns the title of a related page, fetching it once.
func (s *Store) label(ctx context.Context, id string) string {
	s.mu.RLock()
	l, ok := s.labels[id]
	s.mu.RUnlock()
	if ok {
		return l
	}
	p, err := s.api.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		logger.Warn(ctx, logger.Store, "store.resolve_label",
			slog.String("backend", "notion"),
			slog.String("page_id", id),
			slog.String("err", err.Error()))
		return ""
	}
	l = pageTitle(p.Properties)
	s.remember(id, l)
	return l
}

func logCall(ctx context.Context, event, collection string, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("backend", "notion"),
		slog.String("collection", collection),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		logger.Warn(ctx, logger.Store, event, append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
		return
	}
	logger.Debug(ctx, logger.Store, event, append(attrs, slog.String("status", "ok"))...)
}
