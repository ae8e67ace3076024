package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Telegram contains credentials for the Telegram bot API.
type Telegram struct {
	BotToken string `toml:"bot_token"`
}

// Sonarr contains connection settings for the Sonarr API.
type Sonarr struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	URLBase        string `toml:"url_base"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Bot contains access policy and chat behavior settings.
type Bot struct {
	Password        string `toml:"password"`
	Owner           int64  `toml:"owner"`
	BroadcastChatID int64  `toml:"broadcast_chat_id"`
	MaxResults      int    `toml:"max_results"`
	Language        string `toml:"language"`
	StateDir        string `toml:"state_dir"`
}

// Cache contains lifetimes for the per-user option cache.
type Cache struct {
	TTLSeconds   int `toml:"ttl_seconds"`
	SweepSeconds int `toml:"sweep_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sonarrbot.
//
// Configuration sections by subsystem:
//   - Telegram: bot API token
//   - Sonarr: server URL, API key, and request timeout
//   - Bot: authorization password, owner id, broadcast chat, result caps
//   - Cache: option cache TTL and sweep interval
//   - Logging: log format and level
type Config struct {
	Telegram Telegram `toml:"telegram"`
	Sonarr   Sonarr   `toml:"sonarr"`
	Bot      Bot      `toml:"bot"`
	Cache    Cache    `toml:"cache"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sonarrbot/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sonarrbot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory the bot writes into
// (ACL database, lock file, log output).
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Bot.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Bot.StateDir, err)
	}
	return nil
}

// CacheTTL returns the option cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// CacheSweepInterval returns the option cache background sweep cadence.
func (c *Config) CacheSweepInterval() time.Duration {
	return time.Duration(c.Cache.SweepSeconds) * time.Second
}

// SonarrTimeout returns the per-request timeout for Sonarr API calls.
func (c *Config) SonarrTimeout() time.Duration {
	return time.Duration(c.Sonarr.RequestTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
