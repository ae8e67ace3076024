// Package notify renders the one-shot import notification sent when the
// media server finishes importing an episode. The server invokes the
// notify subcommand with the import details passed as environment
// variables; no conversational state is involved.
package notify

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"sonarrbot/internal/config"
	"sonarrbot/internal/logging"
	"sonarrbot/internal/telegram"
)

// Event carries the import attributes the media server exports.
type Event struct {
	SeriesTitle    string
	SeasonNumber   string
	EpisodeNumbers string
	AirDates       string
	Quality        string
	FilePath       string
}

// EventFromEnv reads the import attributes from the environment, filling
// any missing field with an explicit placeholder.
func EventFromEnv() Event {
	return Event{
		SeriesTitle:    envOr("sonarr_series_title", "Unknown Title"),
		SeasonNumber:   envOr("sonarr_episodefile_seasonnumber", "Unknown Season"),
		EpisodeNumbers: envOr("sonarr_episodefile_episodenumbers", "Unknown Episode"),
		AirDates:       envOr("sonarr_episodefile_episodeairdates", "Unknown Air Date"),
		Quality:        envOr("sonarr_episodefile_quality", "Unknown Quality"),
		FilePath:       envOr("sonarr_episodefile_path", ""),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Format renders the import notice. The file size comes from the
// imported file on disk and falls back to zero when the file cannot be
// read.
func Format(event Event) string {
	lines := []string{
		"*Episode Imported*",
		fmt.Sprintf("%s - %sx%s", event.SeriesTitle, event.SeasonNumber, event.EpisodeNumbers),
		fmt.Sprintf("*Aired:* %s", event.AirDates),
		fmt.Sprintf("*Quality:* %s", event.Quality),
		fmt.Sprintf("*Size:* %.1f MB", fileSizeMB(event.FilePath)),
	}
	return strings.Join(lines, "\n")
}

// fileSizeMB returns the file size rounded to a tenth of a megabyte, or
// zero when the file is missing or unreadable.
func fileSizeMB(path string) float64 {
	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	mb := float64(info.Size()) / (1 << 20)
	return float64(int64(mb*10+0.5)) / 10
}

// Send delivers the formatted notice to the configured broadcast chat.
func Send(cfg *config.Config, messenger telegram.Messenger, event Event, logger *slog.Logger) error {
	log := logging.NewComponentLogger(logger, "notify")
	if cfg.Bot.BroadcastChatID == 0 {
		return fmt.Errorf("broadcast_chat_id is not configured")
	}

	message := Format(event)
	if err := messenger.Send(telegram.Outgoing{
		ChatID:    cfg.Bot.BroadcastChatID,
		Text:      message,
		Markdown:  true,
		NoPreview: true,
	}); err != nil {
		return fmt.Errorf("send import notice: %w", err)
	}

	log.Info("import notice sent",
		logging.String("series", event.SeriesTitle),
		logging.Int64("chat_id", cfg.Bot.BroadcastChatID))
	return nil
}
