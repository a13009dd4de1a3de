package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/expensebot/core/logger"
)

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// RunMigrations applies every pending up migration.
func RunMigrations(ctx context.Context, cfg Config) error {
	return Migrate(ctx, cfg, Up)
}

// Migrate moves the schema fully up, or one step down.
func Migrate(ctx context.Context, cfg Config, dir Direction) error {
	cfg.Normalize()
	if err := WaitForPostgres(ctx, cfg.URL(), 30*time.Second); err != nil {
		logger.Error(ctx, logger.Migrate, "db.migrate",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("database not ready: %w", err)
	}

	path, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	files := listMigrationFiles(path)
	preview, truncated := logger.SummarizeStrings(files, 6)
	logger.Debug(ctx, logger.Migrate, "db.migrate.resolve",
		slog.String("path", path),
		slog.Int("count", len(files)),
		slog.String("files_preview", preview),
		slog.Bool("files_truncated", truncated),
	)

	m, err := migrate.New("file://"+path, cfg.URL())
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	fromVer, _, _ := m.Version()

	start := time.Now()
	switch dir {
	case Down:
		err = m.Steps(-1)
	default:
		err = m.Up()
	}
	took := time.Since(start)

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, logger.Migrate, "db.migrate.apply",
			slog.String("status", "fail"),
			slog.String("op", string(dir)),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migrate %s: %w", dir, err)
	}

	toVer, _, _ := m.Version()
	logger.Info(ctx, logger.Migrate, "db.migrate.summary",
		slog.String("status", "ok"),
		slog.String("op", string(dir)),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("files", countApplied(files, uint64(fromVer), uint64(toVer))),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return nil
}

func listMigrationFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(name, ".up.sql") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// countApplied counts the files between two versions in either direction.
func countApplied(files []string, from, to uint64) int {
	if from > to {
		from, to = to, from
	}
	c := 0
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			c++
		}
	}
	return c
}
