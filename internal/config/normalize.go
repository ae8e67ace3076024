package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSonarr(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeBot()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Bot.StateDir, err = expandPath(c.Bot.StateDir); err != nil {
		return fmt.Errorf("bot.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	if c.Telegram.BotToken == "" {
		if env := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); env != "" {
			c.Telegram.BotToken = env
		}
	}
}

func (c *Config) normalizeSonarr() error {
	c.Sonarr.URL = strings.TrimRight(strings.TrimSpace(c.Sonarr.URL), "/")
	c.Sonarr.APIKey = strings.TrimSpace(c.Sonarr.APIKey)
	if c.Sonarr.APIKey == "" {
		if env := strings.TrimSpace(os.Getenv("SONARR_API_KEY")); env != "" {
			c.Sonarr.APIKey = env
		}
	}

	base := strings.TrimSpace(c.Sonarr.URLBase)
	base = strings.Trim(base, "/")
	if base != "" {
		base = "/" + base
	}
	c.Sonarr.URLBase = base

	if c.Sonarr.URL != "" {
		if _, err := url.Parse(c.Sonarr.URL); err != nil {
			return fmt.Errorf("sonarr.url: %w", err)
		}
	}
	if c.Sonarr.RequestTimeout <= 0 {
		c.Sonarr.RequestTimeout = defaultRequestTimeout
	}
	return nil
}

func (c *Config) normalizeBot() {
	c.Bot.Password = strings.TrimSpace(c.Bot.Password)
	c.Bot.Language = strings.ToLower(strings.TrimSpace(c.Bot.Language))
	if c.Bot.Language == "" {
		c.Bot.Language = defaultLanguage
	}
	if c.Bot.MaxResults <= 0 {
		c.Bot.MaxResults = defaultMaxResults
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = defaultCacheTTL
	}
	if c.Cache.SweepSeconds <= 0 {
		c.Cache.SweepSeconds = defaultCacheSweep
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
