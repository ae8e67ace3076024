package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateSonarr(); err != nil {
		return err
	}
	if err := c.validateBot(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTelegram() error {
	if c.Telegram.BotToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/sonarrbot/config.toml"
		}
		return fmt.Errorf("telegram.bot_token is required. Set TELEGRAM_BOT_TOKEN env var or edit %s (create with 'sonarrbot config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSonarr() error {
	if c.Sonarr.URL == "" {
		return errors.New("sonarr.url must be set")
	}
	if c.Sonarr.APIKey == "" {
		return errors.New("sonarr.api_key is required. Set SONARR_API_KEY env var or edit the config file")
	}
	return nil
}

func (c *Config) validateBot() error {
	if c.Bot.Password == "" {
		return errors.New("bot.password must be set so /auth can grant access")
	}
	if c.Bot.Owner < 0 {
		return errors.New("bot.owner must be a Telegram user id (or 0 before bootstrap)")
	}
	if c.Bot.MaxResults > 25 {
		return errors.New("bot.max_results must be 25 or fewer to fit a reply keyboard")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTLSeconds <= 0 {
		return errors.New("cache.ttl_seconds must be positive")
	}
	if c.Cache.SweepSeconds <= 0 {
		return errors.New("cache.sweep_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
