package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Access:   AccessConfig{AllowedUsers: []int64{42}},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = " Polling "
	cfg.RateLimit.ExcludeUpdates = []string{"Callback"}

	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, []string{UpdateCallback}, cfg.RateLimit.ExcludeUpdates)
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"token":     func(c *Config) { c.Telegram.Token = "" },
		"run mode":  func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" },
		"webhook":   func(c *Config) { c.Telegram.RunMode = RunModeWebhook },
		"exclude":   func(c *Config) { c.RateLimit.ExcludeUpdates = []string{"poll"} },
		"no access": func(c *Config) { c.Access.AllowedUsers = nil },
		"bad id":    func(c *Config) { c.Access.AllowedUsers = []int64{-5} },
		"interval":  func(c *Config) { c.RateLimit.IntervalMS = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, Normalize(cfg))
		})
	}
}

func TestNormalizeReportsAllProblems(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{RunMode: "fax"}}
	err := Normalize(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.token")
	assert.Contains(t, err.Error(), "run_mode")
	assert.Contains(t, err.Error(), "access.allowed_users")
}

func TestNormalizeAllowAll(t *testing.T) {
	cfg := validConfig()
	cfg.Access = AccessConfig{AllowAll: true}
	assert.NoError(t, Normalize(cfg))
}

func TestLoadOverlaysEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: from-file
  run_mode: longpoll
access:
  allowed_users: [1, 2]
`), 0o600))
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_ALLOWED_USERS", "7,8,9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, []int64{7, 8, 9}, cfg.Access.AllowedUsers)
}
