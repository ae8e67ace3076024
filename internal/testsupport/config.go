package testsupport

import (
	"testing"

	"sonarrbot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp state dir per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Telegram.BotToken = "test-token"
	cfg.Sonarr.URL = "http://127.0.0.1:8989"
	cfg.Sonarr.APIKey = "test-api-key"
	cfg.Bot.Password = "test-password"
	cfg.Bot.StateDir = t.TempDir()

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithOwner sets the admin user id on the test config.
func WithOwner(id int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Bot.Owner = id
	}
}

// WithPassword overrides the shared bot password on the test config.
func WithPassword(password string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Bot.Password = password
	}
}

// WithMaxResults caps how many lookup results the bot offers.
func WithMaxResults(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Bot.MaxResults = n
	}
}
