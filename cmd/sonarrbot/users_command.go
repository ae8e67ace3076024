package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sonarrbot/internal/acl"
	"sonarrbot/internal/logging"
)

// newUsersCommand prints the access list from the local state directory,
// for inspection without going through the bot.
func newUsersCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Show allowed and revoked users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			gate, err := acl.Open(cfg, logging.NewNop())
			if err != nil {
				return fmt.Errorf("open access list: %w", err)
			}
			defer gate.Close()

			allowed := gate.Allowed()
			revoked := gate.Revoked()

			out := cmd.OutOrStdout()
			if len(allowed)+len(revoked) == 0 {
				fmt.Fprintln(out, "No users recorded yet.")
				return nil
			}

			fmt.Fprintln(out, renderUserTable(allowed, revoked))
			return nil
		},
	}
}
