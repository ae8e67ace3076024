package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sonarrbot/internal/logging"
	"sonarrbot/internal/optioncache"
	"sonarrbot/internal/selection"
	"sonarrbot/internal/sonarr"
	"sonarrbot/internal/telegram"
)

// cachedValue fetches a typed entry from the option cache. ok is false
// when the entry is absent, expired, or holds a different type.
func cachedValue[T any](cache *optioncache.Cache, userID int64, slot optioncache.Slot) (T, bool) {
	var zero T
	value, ok := cache.Get(userID, slot)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// abortExpired tells the user their flow lapsed. The stale state is left
// in place; the entry command or /clear starts over.
func (b *Bot) abortExpired(log *slog.Logger, update telegram.Update) {
	log.Info("flow expired")
	b.replyErrorKey(update.ChatID, "tryAgain")
}

func (b *Bot) handleSeriesChoice(ctx context.Context, log *slog.Logger, update telegram.Update, text string) {
	seriesList, ok := cachedValue[[]sonarr.Series](b.cache, update.UserID, optioncache.SlotSeriesList)
	if !ok || len(seriesList) == 0 {
		b.abortExpired(log, update)
		return
	}

	series, err := selection.Resolve(seriesList, text)
	if err != nil {
		b.replyError(update.ChatID, fmt.Errorf("could not find the series with title %s", text))
		return
	}
	b.cache.Set(update.UserID, optioncache.SlotSeriesID, series)

	profiles, err := b.sonarr.Profiles(ctx)
	if err != nil {
		log.Warn("profile listing failed", logging.Error(err))
		b.replyError(update.ChatID, err)
		return
	}
	if len(profiles) == 0 {
		b.replyError(update.ChatID, errors.New("could not get profiles, try searching again"))
		return
	}
	if _, ok := b.cache.Get(update.UserID, optioncache.SlotSeriesList); !ok {
		b.abortExpired(log, update)
		return
	}

	lines := []string{fmt.Sprintf("*Found %d profiles:*", len(profiles))}
	options := make([]string, 0, len(profiles))
	for i, profile := range profiles {
		lines = append(lines, fmt.Sprintf("*%d*) %s", i+1, profile.Name))
		options = append(options, profile.KeyboardValue())
	}
	lines = append(lines, b.catalog.T("selectFromMenu"))

	b.cache.Set(update.UserID, optioncache.SlotProfileList, profiles)
	b.cache.Set(update.UserID, optioncache.SlotState, StateAwaitingProfileChoice)

	log.Info("series chosen", logging.String("title", series.Title))
	b.replyKeyboard(update.ChatID, strings.Join(lines, "\n"), telegram.PairRows(options))
}

func (b *Bot) handleProfileChoice(ctx context.Context, log *slog.Logger, update telegram.Update, text string) {
	profiles, ok := cachedValue[[]sonarr.Profile](b.cache, update.UserID, optioncache.SlotProfileList)
	if !ok || len(profiles) == 0 {
		b.abortExpired(log, update)
		return
	}
	// The series list from the opening search must still be live; its
	// TTL started a step earlier than the profile list's.
	if _, ok := b.cache.Get(update.UserID, optioncache.SlotSeriesList); !ok {
		b.abortExpired(log, update)
		return
	}

	profile, err := selection.Resolve(profiles, text)
	if err != nil {
		b.replyError(update.ChatID, fmt.Errorf("could not find the profile %s", text))
		return
	}
	b.cache.Set(update.UserID, optioncache.SlotProfileID, profile)

	folders, err := b.sonarr.RootFolders(ctx)
	if err != nil {
		log.Warn("root folder listing failed", logging.Error(err))
		b.replyError(update.ChatID, err)
		return
	}
	if len(folders) == 0 {
		b.replyError(update.ChatID, errors.New("could not get folders, try searching again"))
		return
	}

	lines := []string{fmt.Sprintf("*Found %d folders:*", len(folders))}
	options := make([]string, 0, len(folders))
	for i, folder := range folders {
		lines = append(lines, fmt.Sprintf("*%d*) %s", i+1, folder.Path))
		options = append(options, folder.KeyboardValue())
	}
	lines = append(lines, b.catalog.T("selectFromMenu"))

	b.cache.Set(update.UserID, optioncache.SlotFolderList, folders)
	b.cache.Set(update.UserID, optioncache.SlotState, StateAwaitingFolderChoice)

	log.Info("profile chosen", logging.String("name", profile.Name))
	b.replyKeyboard(update.ChatID, strings.Join(lines, "\n"), telegram.SingleRows(options))
}

func (b *Bot) handleFolderChoice(log *slog.Logger, update telegram.Update, text string) {
	folders, ok := cachedValue[[]sonarr.RootFolder](b.cache, update.UserID, optioncache.SlotFolderList)
	if !ok || len(folders) == 0 {
		b.abortExpired(log, update)
		return
	}
	if _, ok := b.cache.Get(update.UserID, optioncache.SlotSeriesID); !ok {
		b.abortExpired(log, update)
		return
	}

	folder, err := selection.Resolve(folders, text)
	if err != nil {
		b.replyError(update.ChatID, fmt.Errorf("could not find the folder %s", text))
		return
	}
	b.cache.Set(update.UserID, optioncache.SlotFolderID, folder)

	policies := sonarr.MonitorPolicies()
	lines := []string{"*Select which seasons to monitor:*"}
	options := make([]string, 0, len(policies))
	for i, policy := range policies {
		lines = append(lines, fmt.Sprintf("*%d*) %s", i+1, policy))
		options = append(options, policy.KeyboardValue())
	}
	lines = append(lines, b.catalog.T("selectFromMenu"))

	b.cache.Set(update.UserID, optioncache.SlotMonitorList, policies)
	b.cache.Set(update.UserID, optioncache.SlotState, StateAwaitingMonitorChoice)

	log.Info("folder chosen", logging.String("path", folder.Path))
	b.replyKeyboard(update.ChatID, strings.Join(lines, "\n"), telegram.PairRows(options))
}

func (b *Bot) handleMonitorChoice(ctx context.Context, log *slog.Logger, update telegram.Update, text string) {
	series, seriesOK := cachedValue[sonarr.Series](b.cache, update.UserID, optioncache.SlotSeriesID)
	profile, profileOK := cachedValue[sonarr.Profile](b.cache, update.UserID, optioncache.SlotProfileID)
	folder, folderOK := cachedValue[sonarr.RootFolder](b.cache, update.UserID, optioncache.SlotFolderID)
	policies, policiesOK := cachedValue[[]sonarr.MonitorPolicy](b.cache, update.UserID, optioncache.SlotMonitorList)
	if !seriesOK || !profileOK || !folderOK || !policiesOK {
		b.abortExpired(log, update)
		return
	}

	policy, err := selection.Resolve(policies, text)
	if err != nil {
		b.replyError(update.ChatID, fmt.Errorf("could not find the monitor type %s", text))
		return
	}

	// The wizard ends here whether or not the submission succeeds.
	defer b.clearWizard(update.UserID)

	request := sonarr.BuildAddRequest(series, profile.ID, folder.Path, policy)
	log.Info("adding series",
		logging.String("title", series.Title),
		logging.String("monitor", string(policy)),
		logging.String("folder", folder.Path))

	if err := b.sonarr.AddSeries(ctx, request); err != nil {
		log.Warn("add series failed", logging.Error(err))
		b.replyError(update.ChatID, err)
		return
	}
	b.replyMarkdown(update.ChatID, fmt.Sprintf("Series `%s` added", series.Title))
}
