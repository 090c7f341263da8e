package cmd

import (
	"fmt"

	"github.com/angelospk/subfetch/internal/retry"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to OpenSubtitles and cache the session token",
	Long: `Logs in with the configured username and password. The session token is
stored in the configured cache so later commands can reuse it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Logging in to OpenSubtitles...")

		resp, err := retry.Get(cmd.Context(), s.policy, s.client.Login)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).", resp.User.Username, resp.User.Level)
		if n := s.client.RemainingDownloads(); n >= 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " %d downloads remaining.", n)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(loginCmd)
}
