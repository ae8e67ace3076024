package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sonarrbot/internal/acl"
	"sonarrbot/internal/bot"
	"sonarrbot/internal/daemon"
	"sonarrbot/internal/i18n"
	"sonarrbot/internal/logging"
	"sonarrbot/internal/optioncache"
	"sonarrbot/internal/sonarr"
	"sonarrbot/internal/telegram"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var logFormat string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			switch logFormat {
			case "auto":
				// Interactive terminals get the console format; service
				// managers capture JSON.
				if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
					cfg.Logging.Format = "console"
				} else {
					cfg.Logging.Format = "json"
				}
			case "console", "json":
				cfg.Logging.Format = logFormat
			default:
				return fmt.Errorf("invalid log format %q (want auto, console, or json)", logFormat)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			gate, err := acl.Open(cfg, logger)
			if err != nil {
				return fmt.Errorf("open access list: %w", err)
			}
			defer gate.Close()

			catalog, err := i18n.New(cfg.Bot.Language)
			if err != nil {
				return fmt.Errorf("load translations: %w", err)
			}

			client, err := telegram.NewClient(cfg.Telegram.BotToken, logger)
			if err != nil {
				return err
			}

			cache := optioncache.New(cfg.CacheTTL())
			sonarrClient := sonarr.New(cfg, logger)
			b := bot.New(cfg, gate, cache, sonarrClient, catalog, client, logger)

			d, err := daemon.New(cfg, cache, b, client, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := d.Start(ctx); err != nil {
				return err
			}

			// Wait returns on shutdown signal or on a fatal handler error.
			err = d.Wait()
			d.Stop()
			return err
		},
	}

	cmd.Flags().StringVar(&logFormat, "log-format", "auto", "Log output format: auto, console, or json")
	return cmd
}
