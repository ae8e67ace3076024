package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"sonarrbot/internal/acl"
	"sonarrbot/internal/logging"
	"sonarrbot/internal/optioncache"
	"sonarrbot/internal/sonarr"
	"sonarrbot/internal/telegram"
)

const (
	upcomingDefaultDays = 3
	upcomingMaxDays     = 30
)

func (b *Bot) handleCommand(ctx context.Context, log *slog.Logger, update telegram.Update, text string) error {
	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}
	args := fields[1:]
	log = log.With(logging.String(logging.FieldCommand, command))

	switch command {
	case "/auth":
		return b.cmdAuth(ctx, log, update, args)
	case "/start":
		if b.requireUser(update) {
			b.cmdStart(update)
		}
	case "/query", "/q":
		if b.requireUser(update) {
			b.cmdQuery(ctx, log, update, strings.Join(args, " "))
		}
	case "/library":
		if b.requireUser(update) {
			b.cmdLibrary(ctx, log, update, strings.Join(args, " "))
		}
	case "/upcoming":
		if b.requireUser(update) {
			b.cmdUpcoming(ctx, log, update, args)
		}
	case "/clear":
		if b.requireUser(update) {
			b.cmdClear(log, update)
		}
	case "/users":
		if b.requireAdmin(update) {
			b.cmdUsers(update)
		}
	case "/revoke":
		if b.requireAdmin(update) {
			b.cmdRevoke(log, update)
		}
	case "/unrevoke":
		if b.requireAdmin(update) {
			b.cmdUnrevoke(log, update)
		}
	case "/rss":
		if b.requireAdmin(update) {
			b.cmdServerCommand(ctx, log, update, sonarr.CommandRSSSync, "RSS Sync command sent.")
		}
	case "/refresh":
		if b.requireAdmin(update) {
			b.cmdServerCommand(ctx, log, update, sonarr.CommandRefreshSeries, "Refresh series command sent.")
		}
	case "/wanted":
		if b.requireAdmin(update) {
			b.cmdServerCommand(ctx, log, update, sonarr.CommandMissingEpisodeSearch, "Search for wanted episodes started.")
		}
	default:
		log.Info("unknown command", logging.String("text", text))
	}
	return nil
}

func (b *Bot) cmdAuth(ctx context.Context, log *slog.Logger, update telegram.Update, args []string) error {
	if b.gate.IsAuthorized(update.UserID) {
		b.replyText(update.ChatID, b.catalog.T("alreadyAuthorized"))
		return nil
	}
	if b.gate.IsRevoked(update.UserID) {
		b.replyText(update.ChatID, b.catalog.T("revokedCannotAuth"))
		return nil
	}
	if len(args) != 1 || args[0] != b.cfg.Bot.Password {
		log.Info("authorization rejected")
		b.replyText(update.ChatID, b.catalog.T("invalidPassword"))
		return nil
	}

	first, err := b.gate.Authorize(ctx, recordFrom(update))
	if err != nil {
		if errors.Is(err, acl.ErrPersist) {
			return err
		}
		b.replyError(update.ChatID, err)
		return nil
	}

	log.Info("user granted access")
	b.replyText(update.ChatID, b.catalog.T("authorized"))

	if first && !b.gate.OwnerConfigured() {
		b.promptOwnerConfig(update)
	}
	if owner := b.gate.Owner(); owner != 0 && owner != update.UserID {
		b.replyText(owner, displayName(update)+" has been granted access.")
	}
	return nil
}

func (b *Bot) cmdStart(update telegram.Update) {
	lines := []string{
		"Hello " + displayName(update) + ", use /q to search",
		"",
		"`/q [series name]` to continue...",
	}
	b.replyMarkdown(update.ChatID, strings.Join(lines, "\n"))
}

func (b *Bot) cmdQuery(ctx context.Context, log *slog.Logger, update telegram.Update, term string) {
	if term == "" {
		b.replyMarkdown(update.ChatID, "Usage: `/q [series name]`")
		return
	}

	results, err := b.sonarr.Lookup(ctx, term)
	if err != nil {
		log.Warn("series lookup failed", logging.Error(err))
		b.replyError(update.ChatID, err)
		return
	}
	if len(results) == 0 {
		b.replyError(update.ChatID, fmt.Errorf("could not find %s, try searching again", term))
		return
	}
	if max := b.cfg.Bot.MaxResults; max > 0 && len(results) > max {
		results = results[:max]
	}

	lines := []string{fmt.Sprintf("*Found %d series:*", len(results))}
	options := make([]string, 0, len(results))
	for i, series := range results {
		year := ""
		if series.Year > 0 {
			year = fmt.Sprintf(" - _%d_", series.Year)
		}
		lines = append(lines, fmt.Sprintf("*%d*) [%s](http://thetvdb.com/?tab=series&id=%d)%s", i+1, series.Title, series.TVDBID, year))
		options = append(options, series.KeyboardValue())
	}
	lines = append(lines, b.catalog.T("selectFromMenu"))

	b.cache.Set(update.UserID, optioncache.SlotSeriesList, results)
	b.cache.Set(update.UserID, optioncache.SlotState, StateAwaitingSeriesChoice)

	log.Info("series search", logging.String("term", term), logging.Int("results", len(results)))
	b.replyKeyboard(update.ChatID, strings.Join(lines, "\n"), telegram.SingleRows(options))
}

func (b *Bot) cmdLibrary(ctx context.Context, log *slog.Logger, update telegram.Update, filter string) {
	series, err := b.sonarr.Series(ctx)
	if err != nil {
		log.Warn("library listing failed", logging.Error(err))
		b.replyError(update.ChatID, err)
		return
	}

	matches := series
	if filter != "" {
		needle := strings.ToLower(filter)
		matches = matches[:0:0]
		for _, entry := range series {
			if strings.Contains(strings.ToLower(entry.Title), needle) {
				matches = append(matches, entry)
			}
		}
	}
	if len(matches) == 0 {
		if filter != "" {
			b.replyError(update.ChatID, fmt.Errorf("could not find %s in your library", filter))
			return
		}
		b.replyText(update.ChatID, "Your library is empty.")
		return
	}

	lines := []string{fmt.Sprintf("*Library (%d series):*", len(matches))}
	for i, entry := range matches {
		lines = append(lines, fmt.Sprintf("*%d*) %s (%s, %d seasons)", i+1, entry.KeyboardValue(), entry.Status, entry.SeasonCount))
	}
	b.replyMarkdown(update.ChatID, strings.Join(lines, "\n"))
}

func (b *Bot) cmdUpcoming(ctx context.Context, log *slog.Logger, update telegram.Update, args []string) {
	days := upcomingDefaultDays
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 || parsed > upcomingMaxDays {
			b.replyError(update.ChatID, fmt.Errorf("days must be a number between 1 and %d", upcomingMaxDays))
			return
		}
		days = parsed
	}

	entries, err := b.sonarr.Calendar(ctx, days)
	if err != nil {
		log.Warn("calendar fetch failed", logging.Error(err))
		b.replyError(update.ChatID, err)
		return
	}
	if len(entries) == 0 {
		b.replyText(update.ChatID, fmt.Sprintf("No episodes airing in the next %d days.", days))
		return
	}

	lines := []string{fmt.Sprintf("*Upcoming episodes (%d days):*", days)}
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("*%s* S%02dE%02d airs %s", entry.Series.Title, entry.SeasonNumber, entry.EpisodeNumber, entry.AirDate))
	}
	b.replyMarkdown(update.ChatID, strings.Join(lines, "\n"))
}

func (b *Bot) cmdClear(log *slog.Logger, update telegram.Update) {
	b.clearWizard(update.UserID)
	log.Info("cleared flow state")
	b.send(telegram.Outgoing{
		ChatID:       update.ChatID,
		Text:         b.catalog.T("cleared"),
		HideKeyboard: true,
	})
}

func (b *Bot) cmdUsers(update telegram.Update) {
	allowed := b.gate.Allowed()
	if len(allowed) == 0 {
		b.replyText(update.ChatID, b.catalog.T("noAllowedUsers"))
		return
	}
	lines := []string{"*Allowed Users:*"}
	for i, record := range allowed {
		lines = append(lines, fmt.Sprintf("*%d*) %s", i+1, record.DisplayName()))
	}
	b.replyMarkdown(update.ChatID, strings.Join(lines, "\n"))
}

func (b *Bot) cmdRevoke(log *slog.Logger, update telegram.Update) {
	allowed := b.gate.Allowed()
	if len(allowed) == 0 {
		b.replyText(update.ChatID, b.catalog.T("noAllowedUsers"))
		return
	}

	lines := []string{"*Allowed Users:*"}
	options := make([]string, 0, len(allowed))
	for i, record := range allowed {
		lines = append(lines, fmt.Sprintf("*%d*) %s", i+1, record.DisplayName()))
		options = append(options, record.KeyboardValue())
	}
	lines = append(lines, b.catalog.T("selectFromMenu"))

	b.cache.Set(update.UserID, optioncache.SlotRevokeList, allowed)
	b.cache.Set(update.UserID, optioncache.SlotState, StateAwaitingRevokeTarget)

	log.Info("revoke menu offered", logging.Int("candidates", len(allowed)))
	b.replyKeyboard(update.ChatID, strings.Join(lines, "\n"), telegram.PairRows(options))
}

func (b *Bot) cmdUnrevoke(log *slog.Logger, update telegram.Update) {
	revoked := b.gate.Revoked()
	if len(revoked) == 0 {
		b.replyText(update.ChatID, b.catalog.T("noRevokedUsers"))
		return
	}

	lines := []string{"*Revoked Users:*"}
	options := make([]string, 0, len(revoked))
	for i, record := range revoked {
		lines = append(lines, fmt.Sprintf("*%d*) %s", i+1, record.DisplayName()))
		options = append(options, record.KeyboardValue())
	}
	lines = append(lines, b.catalog.T("selectFromMenu"))

	b.cache.Set(update.UserID, optioncache.SlotUnrevokeList, revoked)
	b.cache.Set(update.UserID, optioncache.SlotState, StateAwaitingUnrevokeTarget)

	log.Info("unrevoke menu offered", logging.Int("candidates", len(revoked)))
	b.replyKeyboard(update.ChatID, strings.Join(lines, "\n"), telegram.PairRows(options))
}

func (b *Bot) cmdServerCommand(ctx context.Context, log *slog.Logger, update telegram.Update, name, confirmation string) {
	if err := b.sonarr.RunCommand(ctx, name); err != nil {
		log.Warn("server command failed", logging.String("name", name), logging.Error(err))
		b.replyError(update.ChatID, err)
		return
	}
	log.Info("server command sent", logging.String("name", name))
	b.replyText(update.ChatID, confirmation)
}
