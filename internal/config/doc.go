// Package config loads, normalizes, and validates sonarrbot configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the bot and CLI need: Telegram credentials, Sonarr connection details,
// bot policy (password, owner, result caps), cache lifetimes, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
