package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sonarrbot/internal/acl"
	"sonarrbot/internal/logging"
	"sonarrbot/internal/optioncache"
	"sonarrbot/internal/selection"
	"sonarrbot/internal/telegram"
)

// confirmRows is the fixed yes/no keyboard for destructive admin steps.
func confirmRows() [][]string {
	return [][]string{{"NO"}, {"yes"}}
}

func (b *Bot) handleRevokeTarget(log *slog.Logger, update telegram.Update, text string) {
	candidates, ok := cachedValue[[]acl.Record](b.cache, update.UserID, optioncache.SlotRevokeList)
	if !ok || len(candidates) == 0 {
		b.abortExpired(log, update)
		return
	}

	target, err := selection.Resolve(candidates, text)
	if err != nil {
		b.replyError(update.ChatID, fmt.Errorf("could not find the user %s", text))
		return
	}

	b.cache.Set(update.UserID, optioncache.SlotRevokeTarget, target)
	b.cache.Set(update.UserID, optioncache.SlotState, StateAwaitingRevokeConfirm)

	log.Info("revoke target selected", logging.Int64("target_id", target.ID))
	b.replyKeyboard(update.ChatID,
		fmt.Sprintf("Are you sure you want to revoke access for %s?", target.DisplayName()),
		confirmRows())
}

func (b *Bot) handleRevokeConfirm(ctx context.Context, log *slog.Logger, update telegram.Update, text string) error {
	target, ok := cachedValue[acl.Record](b.cache, update.UserID, optioncache.SlotRevokeTarget)
	if !ok {
		b.abortExpired(log, update)
		return nil
	}

	// Anything other than a literal "yes" declines.
	if text != "yes" {
		b.clearWizard(update.UserID)
		log.Info("revoke declined", logging.Int64("target_id", target.ID))
		b.replyMarkdown(update.ChatID, fmt.Sprintf("Access for %s has *NOT* been revoked.", target.DisplayName()))
		return nil
	}

	_, err := b.gate.Revoke(ctx, target.ID)
	b.clearWizard(update.UserID)
	if err != nil {
		if errors.Is(err, acl.ErrPersist) {
			return err
		}
		log.Warn("revoke failed", logging.Int64("target_id", target.ID), logging.Error(err))
		b.replyError(update.ChatID, err)
		return nil
	}

	log.Info("user revoked", logging.Int64("target_id", target.ID))
	b.replyMarkdown(update.ChatID, fmt.Sprintf("Access for %s has been revoked.", target.DisplayName()))
	return nil
}

func (b *Bot) handleUnrevokeTarget(log *slog.Logger, update telegram.Update, text string) {
	candidates, ok := cachedValue[[]acl.Record](b.cache, update.UserID, optioncache.SlotUnrevokeList)
	if !ok || len(candidates) == 0 {
		b.abortExpired(log, update)
		return
	}

	target, err := selection.Resolve(candidates, text)
	if err != nil {
		b.replyError(update.ChatID, fmt.Errorf("could not find the user %s", text))
		return
	}

	b.cache.Set(update.UserID, optioncache.SlotRevokeTarget, target)
	b.cache.Set(update.UserID, optioncache.SlotState, StateAwaitingUnrevokeConfirm)

	log.Info("unrevoke target selected", logging.Int64("target_id", target.ID))
	b.replyKeyboard(update.ChatID,
		fmt.Sprintf("Are you sure you want to unrevoke access for %s?", target.DisplayName()),
		confirmRows())
}

func (b *Bot) handleUnrevokeConfirm(ctx context.Context, log *slog.Logger, update telegram.Update, text string) error {
	target, ok := cachedValue[acl.Record](b.cache, update.UserID, optioncache.SlotRevokeTarget)
	if !ok {
		b.abortExpired(log, update)
		return nil
	}

	if text != "yes" {
		b.clearWizard(update.UserID)
		log.Info("unrevoke declined", logging.Int64("target_id", target.ID))
		b.replyMarkdown(update.ChatID, fmt.Sprintf("Access for %s has *NOT* been unrevoked.", target.DisplayName()))
		return nil
	}

	_, err := b.gate.Unrevoke(ctx, target.ID)
	b.clearWizard(update.UserID)
	if err != nil {
		if errors.Is(err, acl.ErrPersist) {
			return err
		}
		log.Warn("unrevoke failed", logging.Int64("target_id", target.ID), logging.Error(err))
		b.replyError(update.ChatID, err)
		return nil
	}

	log.Info("user unrevoked", logging.Int64("target_id", target.ID))
	b.replyMarkdown(update.ChatID, fmt.Sprintf("Access for %s has been unrevoked.", target.DisplayName()))
	return nil
}
