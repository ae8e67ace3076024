package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sonarrbot/internal/config"
)

func TestLoadDefaultsUseEnvCredentialsAndExpandPaths(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("SONARR_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[bot]\npassword = \"hunter2\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Telegram.BotToken != "123:abc" {
		t.Fatalf("expected bot token from env, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Sonarr.APIKey != "test-key" {
		t.Fatalf("expected sonarr key from env, got %q", cfg.Sonarr.APIKey)
	}
	wantState := filepath.Join(tempHome, ".local", "share", "sonarrbot")
	if cfg.Bot.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Bot.StateDir, wantState)
	}
	if cfg.Cache.TTLSeconds != 120 || cfg.Cache.SweepSeconds != 150 {
		t.Fatalf("unexpected cache defaults: %d/%d", cfg.Cache.TTLSeconds, cfg.Cache.SweepSeconds)
	}
	if cfg.Bot.MaxResults != 10 {
		t.Fatalf("unexpected max results: %d", cfg.Bot.MaxResults)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(cfg.Bot.StateDir); err != nil {
		t.Fatalf("expected state dir created: %v", err)
	}
}

func TestLoadParsesFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[telegram]
bot_token = "999:zzz"

[sonarr]
url = "https://sonarr.example/"
api_key = "abc"
url_base = "sonarr/"

[bot]
password = "pw"
owner = 42
max_results = 5

[cache]
ttl_seconds = 60
sweep_seconds = 75
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Sonarr.URL != "https://sonarr.example" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Sonarr.URL)
	}
	if cfg.Sonarr.URLBase != "/sonarr" {
		t.Fatalf("expected url base normalized, got %q", cfg.Sonarr.URLBase)
	}
	if cfg.Bot.Owner != 42 {
		t.Fatalf("unexpected owner: %d", cfg.Bot.Owner)
	}
	if cfg.Cache.TTLSeconds != 60 || cfg.Cache.SweepSeconds != 75 {
		t.Fatalf("unexpected cache settings: %d/%d", cfg.Cache.TTLSeconds, cfg.Cache.SweepSeconds)
	}
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantMsg string
	}{
		{
			name:    "missing telegram token",
			mutate:  func(c *config.Config) { c.Telegram.BotToken = "" },
			wantMsg: "telegram.bot_token",
		},
		{
			name:    "missing sonarr key",
			mutate:  func(c *config.Config) { c.Sonarr.APIKey = "" },
			wantMsg: "sonarr.api_key",
		},
		{
			name:    "missing password",
			mutate:  func(c *config.Config) { c.Bot.Password = "" },
			wantMsg: "bot.password",
		},
		{
			name:    "too many results",
			mutate:  func(c *config.Config) { c.Bot.MaxResults = 30 },
			wantMsg: "bot.max_results",
		},
		{
			name:    "bad log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantMsg: "logging.format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Telegram.BotToken = "1:a"
			cfg.Sonarr.APIKey = "k"
			cfg.Bot.Password = "pw"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[sonarr]") {
		t.Fatal("sample config missing [sonarr] section")
	}
}
