package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				manager, err := a.authManager()
				if err != nil {
					return err
				}
				if err := manager.SignOut(cmd.Context()); err != nil {
					// The local session is gone even when the provider call failed
					a.log.Warn().Err(err).Msg("Sign out failed at provider")
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
				return nil
			})
		},
	}
}
