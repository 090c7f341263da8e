package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the cached OpenSubtitles session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if !s.client.RestoreToken() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Logging out from OpenSubtitles...")
		if err := s.client.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logout successful.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(logoutCmd)
}
