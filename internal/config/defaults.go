package config

const (
	defaultStateDir       = "~/.local/share/sonarrbot"
	defaultSonarrURL      = "http://localhost:8989"
	defaultRequestTimeout = 30
	defaultMaxResults     = 10
	defaultCacheTTL       = 120
	defaultCacheSweep     = 150
	defaultLanguage       = "en"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Sonarr: Sonarr{
			URL:            defaultSonarrURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Bot: Bot{
			MaxResults: defaultMaxResults,
			Language:   defaultLanguage,
			StateDir:   defaultStateDir,
		},
		Cache: Cache{
			TTLSeconds:   defaultCacheTTL,
			SweepSeconds: defaultCacheSweep,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
