package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sonarrbot/internal/acl"
	"sonarrbot/internal/config"
	"sonarrbot/internal/i18n"
	"sonarrbot/internal/logging"
	"sonarrbot/internal/optioncache"
	"sonarrbot/internal/sonarr"
	"sonarrbot/internal/telegram"
)

// Bot routes inbound chat messages to command handlers and flow steps.
type Bot struct {
	cfg       *config.Config
	gate      *acl.Gate
	cache     *optioncache.Cache
	sonarr    *sonarr.Client
	catalog   *i18n.Catalog
	messenger telegram.Messenger
	logger    *slog.Logger
}

// New wires a bot from its collaborators.
func New(cfg *config.Config, gate *acl.Gate, cache *optioncache.Cache, client *sonarr.Client, catalog *i18n.Catalog, messenger telegram.Messenger, logger *slog.Logger) *Bot {
	return &Bot{
		cfg:       cfg,
		gate:      gate,
		cache:     cache,
		sonarr:    client,
		catalog:   catalog,
		messenger: messenger,
		logger:    logging.NewComponentLogger(logger, "bot"),
	}
}

// HandleUpdate processes one inbound message. User-facing failures are
// delivered as chat replies and return nil; a non-nil error means the
// process can no longer serve safely (the access list failed to persist)
// and the caller must shut down.
func (b *Bot) HandleUpdate(ctx context.Context, update telegram.Update) error {
	text := strings.TrimSpace(update.Text)
	if text == "" {
		return nil
	}

	log := b.logger.With(
		logging.String(logging.FieldRequestID, uuid.NewString()),
		logging.Int64(logging.FieldUserID, update.UserID),
	)

	current := b.currentState(update.UserID)

	// A leading slash routes to command matching, except while a folder
	// choice is pending: root folder paths start with a slash too.
	if strings.HasPrefix(text, "/") && current != StateAwaitingFolderChoice {
		return b.handleCommand(ctx, log, update, text)
	}
	return b.handleFreeform(ctx, log, update, current, text)
}

func (b *Bot) currentState(userID int64) State {
	value, ok := b.cache.Get(userID, optioncache.SlotState)
	if !ok {
		return ""
	}
	state, ok := value.(State)
	if !ok {
		return ""
	}
	return state
}

func (b *Bot) handleFreeform(ctx context.Context, log *slog.Logger, update telegram.Update, current State, text string) error {
	if !b.gate.IsAuthorized(update.UserID) {
		b.replyErrorKey(update.ChatID, "notAuthorized")
		return nil
	}

	log = log.With(logging.String(logging.FieldStep, string(current)))

	switch current {
	case StateAwaitingSeriesChoice:
		b.handleSeriesChoice(ctx, log, update, text)
	case StateAwaitingProfileChoice:
		b.handleProfileChoice(ctx, log, update, text)
	case StateAwaitingFolderChoice:
		b.handleFolderChoice(log, update, text)
	case StateAwaitingMonitorChoice:
		b.handleMonitorChoice(ctx, log, update, text)
	case StateAwaitingRevokeTarget:
		if !b.requireAdmin(update) {
			return nil
		}
		b.handleRevokeTarget(log, update, text)
	case StateAwaitingRevokeConfirm:
		if !b.requireAdmin(update) {
			return nil
		}
		return b.handleRevokeConfirm(ctx, log, update, text)
	case StateAwaitingUnrevokeTarget:
		if !b.requireAdmin(update) {
			return nil
		}
		b.handleUnrevokeTarget(log, update, text)
	case StateAwaitingUnrevokeConfirm:
		if !b.requireAdmin(update) {
			return nil
		}
		return b.handleUnrevokeConfirm(ctx, log, update, text)
	default:
		log.Info("unroutable message", logging.String("text", text))
		b.replyErrorKey(update.ChatID, "unsureStartOver")
	}
	return nil
}

// requireUser replies with a denial and returns false when the sender is
// not in the allowed set.
func (b *Bot) requireUser(update telegram.Update) bool {
	if b.gate.IsAuthorized(update.UserID) {
		return true
	}
	b.replyErrorKey(update.ChatID, "notAuthorized")
	return false
}

// requireAdmin replies with a denial and returns false when the sender is
// not the configured owner. An authorized user on an owner-less install
// is prompted to claim ownership instead.
func (b *Bot) requireAdmin(update telegram.Update) bool {
	if !b.gate.OwnerConfigured() && b.gate.IsAuthorized(update.UserID) {
		b.promptOwnerConfig(update)
		return false
	}
	if b.gate.IsAdmin(update.UserID) {
		return true
	}
	b.replyErrorKey(update.ChatID, "adminOnly")
	return false
}

func (b *Bot) promptOwnerConfig(update telegram.Update) {
	lines := []string{
		fmt.Sprintf("Your User ID: %d", update.UserID),
		"Please add your User ID to the config file field labeled 'owner'.",
		"Please restart the bot once this has been updated.",
	}
	b.replyText(update.ChatID, strings.Join(lines, "\n"))
}

// clearWizard removes every flow-related cache entry for the user.
func (b *Bot) clearWizard(userID int64) {
	for _, slot := range optioncache.WizardSlots {
		b.cache.Delete(userID, slot)
	}
}

func (b *Bot) send(msg telegram.Outgoing) {
	if err := b.messenger.Send(msg); err != nil {
		b.logger.Warn("send failed",
			logging.Int64("chat_id", msg.ChatID),
			logging.Error(err))
	}
}

func (b *Bot) replyText(chatID int64, text string) {
	b.send(telegram.Outgoing{ChatID: chatID, Text: text})
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	b.send(telegram.Outgoing{ChatID: chatID, Text: text, Markdown: true, NoPreview: true})
}

func (b *Bot) replyKeyboard(chatID int64, text string, rows [][]string) {
	b.send(telegram.Outgoing{
		ChatID:    chatID,
		Text:      text,
		Markdown:  true,
		NoPreview: true,
		Keyboard:  rows,
		OneTime:   true,
	})
}

// replyErrorKey surfaces a localized denial message.
func (b *Bot) replyErrorKey(chatID int64, key string) {
	b.replyError(chatID, errors.New(b.catalog.T(key)))
}

// replyError surfaces a failure in chat without touching any keyboard
// already on screen, so the user can retry their selection.
func (b *Bot) replyError(chatID int64, err error) {
	b.send(telegram.Outgoing{
		ChatID:   chatID,
		Text:     "Oh no! " + err.Error(),
		Markdown: true,
	})
}

func displayName(update telegram.Update) string {
	return acl.Record{
		ID:        update.UserID,
		Username:  update.Username,
		FirstName: update.FirstName,
		LastName:  update.LastName,
	}.DisplayName()
}

func recordFrom(update telegram.Update) acl.Record {
	return acl.Record{
		ID:        update.UserID,
		Username:  update.Username,
		FirstName: update.FirstName,
		LastName:  update.LastName,
	}
}
