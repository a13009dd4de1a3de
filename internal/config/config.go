// Package config loads the bot configuration: the shared core settings plus
// sessions, the storage backend and the collection layout.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	coreconfig "github.com/m3rciful/expensebot/core/config"
	coredatabase "github.com/m3rciful/expensebot/core/database"
	"github.com/m3rciful/expensebot/internal/ledger"
	"github.com/m3rciful/expensebot/internal/session"
	"github.com/m3rciful/expensebot/internal/txn"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendNotion   = "notion"
)

const defaultSweepInterval = 10 * time.Minute

// SessionConfig controls in-progress conversations.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SESSION_SWEEP_INTERVAL"`
}

// SupabaseConfig holds the PostgREST endpoint of the supabase backend.
type SupabaseConfig struct {
	URL string `yaml:"url" envconfig:"SUPABASE_URL"`
	Key string `yaml:"key" envconfig:"SUPABASE_KEY"`
}

// NotionConfig holds the Notion integration settings.
type NotionConfig struct {
	Token                 string `yaml:"token" envconfig:"NOTION_TOKEN"`
	BaseURL               string `yaml:"base_url" envconfig:"NOTION_BASE_URL"`
	TitleProperty         string `yaml:"title_property"`
	RelationTitleProperty string `yaml:"relation_title_property"`
}

// StoreConfig selects and configures the records backend.
type StoreConfig struct {
	Backend  string              `yaml:"backend" envconfig:"STORE_BACKEND"`
	Database coredatabase.Config `yaml:"database"`
	Supabase SupabaseConfig      `yaml:"supabase"`
	Notion   NotionConfig        `yaml:"notion"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	TimeZone string        `yaml:"time_zone" envconfig:"TIME_ZONE"`
	Session  SessionConfig `yaml:"session"`
	Store    StoreConfig   `yaml:"store"`
	Ledger   ledger.Config `yaml:"ledger" ignored:"true"`

	location *time.Location
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// Location is the time zone used for dates and months.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Load reads an optional .env file next to the working directory, then the
// YAML file at path, then the environment, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize fills defaults and validates the configuration.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	tz := strings.TrimSpace(cfg.TimeZone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid time_zone %q: %w", cfg.TimeZone, err)
	}
	cfg.TimeZone = tz
	cfg.location = loc

	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = session.DefaultTTL
	}
	if cfg.Session.SweepInterval <= 0 {
		cfg.Session.SweepInterval = defaultSweepInterval
	}

	if err := normalizeStore(&cfg.Store); err != nil {
		return err
	}
	return validateLedger(cfg.Ledger)
}

func normalizeStore(s *StoreConfig) error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		s.Backend = BackendMemory
	}
	switch s.Backend {
	case BackendMemory:
	case BackendPostgres:
		s.Database.Normalize()
		if err := s.Database.Validate(); err != nil {
			return fmt.Errorf("store.database: %w", err)
		}
	case BackendSupabase:
		if strings.TrimSpace(s.Supabase.URL) == "" || strings.TrimSpace(s.Supabase.Key) == "" {
			return fmt.Errorf("store.supabase.url and store.supabase.key are required for the supabase backend")
		}
	case BackendNotion:
		if strings.TrimSpace(s.Notion.Token) == "" {
			return fmt.Errorf("store.notion.token is required for the notion backend")
		}
	default:
		return fmt.Errorf("invalid store.backend %q; allowed: memory, postgres, supabase, notion", s.Backend)
	}
	return nil
}

func validateLedger(l ledger.Config) error {
	for t, route := range l.Collections {
		if !t.Valid() {
			return fmt.Errorf("ledger.collections: unknown transaction type %q", t)
		}
		for month := range route.Months {
			if !isMonth(month) {
				return fmt.Errorf("ledger.collections.%s.months: unknown month %q", t, month)
			}
		}
	}
	return nil
}

func isMonth(name string) bool {
	for _, m := range txn.Months {
		if m == name {
			return true
		}
	}
	return false
}
