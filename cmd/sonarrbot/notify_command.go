package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sonarrbot/internal/logging"
	"sonarrbot/internal/notify"
	"sonarrbot/internal/telegram"
)

// newNotifyCommand sends one import notice and exits. The media server
// invokes this as its post-import hook with the episode details in the
// environment.
func newNotifyCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Send an episode import notice to the broadcast chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			client, err := telegram.NewClient(cfg.Telegram.BotToken, logger)
			if err != nil {
				return err
			}

			return notify.Send(cfg, client, notify.EventFromEnv(), logger)
		},
	}
}
