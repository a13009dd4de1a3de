// Package report builds the recent-records listing and the weekly spending
// summary from stored entries.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/expensebot/core/logger"
	"github.com/m3rciful/expensebot/internal/store"
	"github.com/m3rciful/expensebot/internal/txn"
)

// RecentLimit is the number of records a recent listing shows.
const RecentLimit = 5

const (
	topCategories = 4
	topItems      = 5
)

// Router resolves the collections of a transaction type for month labels.
type Router interface {
	Collections(t txn.Type, months ...string) []string
}

// Reporter reads entries back for summaries.
type Reporter struct {
	store  store.Store
	router Router
	now    func() time.Time
}

// New returns a Reporter. now supplies the clock in the configured time zone.
func New(st store.Store, router Router, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{store: st, router: router, now: now}
}

// Recent returns the newest limit entries of type t across the collections of
// the current and the previous month.
func (r *Reporter) Recent(ctx context.Context, t txn.Type, limit int) ([]txn.Entry, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	start := time.Now()
	now := r.now()
	months := []string{txn.MonthName(now), txn.PreviousMonth(now)}
	collections := r.router.Collections(t, months...)

	var all []txn.Entry
	for _, c := range collections {
		entries, err := r.store.QueryRecent(ctx, c, limit)
		if err != nil {
			r.log(ctx, "report.recent", start, err, slog.String("txn_type", t.String()), slog.String("collection", c))
			return nil, fmt.Errorf("recent %s: %w", t, err)
		}
		all = append(all, entries...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date > all[j].Date })
	if len(all) > limit {
		all = all[:limit]
	}
	r.log(ctx, "report.recent", start, nil,
		slog.String("txn_type", t.String()),
		slog.Int("collections", len(collections)),
		slog.Int("count", len(all)))
	return all, nil
}

// Share is one category's part of a week's spending.
type Share struct {
	Category string
	Amount   int64
	Percent  int64
}

// Item is one costly purchase of a week.
type Item struct {
	Description string
	Amount      int64
}

// Summary aggregates the variable expenses of one week.
type Summary struct {
	Week       txn.Week
	Total      int64
	Categories []Share
	TopItems   []Item
	// All carries every non-empty category, for charting.
	All []Share
}

// Weekly summarizes the variable expenses of the week offset weeks back.
func (r *Reporter) Weekly(ctx context.Context, offset int) (Summary, error) {
	start := time.Now()
	week := txn.WeekOf(r.now(), offset)
	from, to := week.Start.Format(txn.DateLayout), week.End.Format(txn.DateLayout)

	var entries []txn.Entry
	for _, c := range r.router.Collections(txn.Variable, week.Months()...) {
		got, err := r.store.QueryRange(ctx, c, from, to)
		if err != nil {
			r.log(ctx, "report.weekly", start, err, slog.String("collection", c))
			return Summary{}, fmt.Errorf("weekly summary: %w", err)
		}
		entries = append(entries, got...)
	}

	s := Summarize(week, entries)
	r.log(ctx, "report.weekly", start, nil,
		slog.Int("offset", offset),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("count", len(entries)),
		slog.Int64("total", s.Total))
	return s, nil
}

// Summarize aggregates entries into a weekly summary.
func Summarize(week txn.Week, entries []txn.Entry) Summary {
	s := Summary{Week: week}
	byCategory := make(map[string]int64)
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		amount := e.Number(txn.PropAmount)
		s.Total += amount
		if cat := e.Text(txn.PropCategory); cat != "" {
			byCategory[cat] += amount
		}
		desc := e.Title
		if desc == "" {
			desc = "No description"
		}
		items = append(items, Item{Description: desc, Amount: amount})
	}

	for cat, amount := range byCategory {
		if amount > 0 {
			s.All = append(s.All, Share{Category: cat, Amount: amount, Percent: percent(amount, s.Total)})
		}
	}
	sort.Slice(s.All, func(i, j int) bool {
		if s.All[i].Amount != s.All[j].Amount {
			return s.All[i].Amount > s.All[j].Amount
		}
		return s.All[i].Category < s.All[j].Category
	})
	s.Categories = s.All
	if len(s.Categories) > topCategories {
		s.Categories = s.Categories[:topCategories]
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Amount > items[j].Amount })
	if len(items) > topItems {
		items = items[:topItems]
	}
	s.TopItems = items
	return s
}

// percent rounds part/total to a whole percentage, halves away from zero.
func percent(part, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(0).
		IntPart()
}

func (r *Reporter) log(ctx context.Context, event string, start time.Time, err error, attrs ...slog.Attr) {
	level := slog.LevelInfo
	base := []slog.Attr{slog.String("status", "ok"), slog.Duration("duration", logger.Took(start))}
	if err != nil {
		level = slog.LevelWarn
		base = []slog.Attr{slog.String("status", "fail"), slog.Duration("duration", logger.Took(start)), slog.String("err", err.Error())}
	}
	logger.Log(ctx, logger.Report, level, event, append(base, attrs...)...)
}
