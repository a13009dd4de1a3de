package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/expensebot/core/bootstrap"
	"github.com/m3rciful/expensebot/core/logger"
	"github.com/m3rciful/expensebot/internal/config"
	"github.com/m3rciful/expensebot/internal/store"
	"github.com/m3rciful/expensebot/internal/store/notion"
	"github.com/m3rciful/expensebot/internal/store/postgres"
	"github.com/m3rciful/expensebot/internal/store/supabase"
	"github.com/m3rciful/expensebot/internal/txn"
)

// openStore builds the configured records backend and makes sure the relation
// collections hold every catalog label. db is only used by the postgres
// backend. Notion relation databases are managed in Notion and never seeded.
func openStore(ctx context.Context, cfg *config.Config, db *sqlx.DB) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("app: postgres backend without a database connection")
		}
		st = postgres.New(db)
	case config.BackendSupabase:
		st, err = supabase.New(cfg.Store.Supabase.URL, cfg.Store.Supabase.Key)
	case config.BackendNotion:
		ns, err := notion.New(notion.Config{
			Token:                 cfg.Store.Notion.Token,
			BaseURL:               cfg.Store.Notion.BaseURL,
			TitleProperty:         cfg.Store.Notion.TitleProperty,
			RelationTitleProperty: cfg.Store.Notion.RelationTitleProperty,
			Types:                 collectionTypes(cfg),
		})
		if err != nil {
			return nil, err
		}
		return ns, nil
	default:
		st = store.NewMemory()
	}
	if err != nil {
		return nil, err
	}

	seeders := bootstrap.Modules{Seeders: []bootstrap.Seeder{relationSeeder(cfg.Ledger.Relations)}}
	if err := seeders.Seed(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// collectionTypes maps every configured collection to the type it holds.
func collectionTypes(cfg *config.Config) map[string]txn.Type {
	out := make(map[string]txn.Type)
	for t, route := range cfg.Ledger.Collections {
		if route.Default != "" {
			out[route.Default] = t
		}
		for _, key := range route.Months {
			out[key] = t
		}
	}
	return out
}

// relationLabels are the catalog values a related collection holds, per property.
func relationLabels(property string) []string {
	switch property {
	case txn.PropCategory:
		return txn.Categories
	case txn.PropShoppingGroup:
		return txn.ShoppingGroups
	case txn.PropAccount, txn.PropFromAccount, txn.PropToAccount:
		return txn.Accounts
	case txn.PropItem:
		return txn.FixedItems
	case txn.PropIncomeGroup:
		return txn.IncomeGroups
	case txn.PropTransferType:
		return txn.TransferTypes
	case txn.PropSavingsPlan:
		names := make([]string, len(txn.SavingsPlans))
		for i, p := range txn.SavingsPlans {
			names[i] = p.Name
		}
		return names
	}
	return nil
}

// relationSeeder adds the catalog labels that relation properties link to
// and that a collection does not hold yet. Running it again adds nothing.
func relationSeeder(relations map[string]string) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
		st, ok := storage.(store.Store)
		if !ok {
			return fmt.Errorf("app: relation seeder needs a records store, got %T", storage)
		}
		start := time.Now()
		added := 0
		seen := make(map[string]map[string]bool)
		for property, collection := range relations {
			if collection == "" {
				continue
			}
			if seen[collection] == nil {
				seen[collection] = make(map[string]bool)
			}
			for _, label := range relationLabels(property) {
				if seen[collection][label] {
					continue
				}
				seen[collection][label] = true
				_, found, err := st.FindByLabel(ctx, collection, label)
				if err != nil {
					return fmt.Errorf("app: seed %s: %w", collection, err)
				}
				if found {
					continue
				}
				if _, err := st.CreateRecord(ctx, collection, txn.Entry{Title: label}); err != nil {
					return fmt.Errorf("app: seed %s %q: %w", collection, label, err)
				}
				added++
			}
		}
		logger.Info(ctx, logger.Store, "store.seed_relations",
			slog.String("status", "ok"),
			slog.Int("collections", len(seen)),
			slog.Int("added", added),
			slog.Duration("duration", logger.Took(start)))
		return nil
	})
}
