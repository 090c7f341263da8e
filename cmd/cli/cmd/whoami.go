package cmd

import (
	"context"
	"fmt"

	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in account and its download quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		if err := s.client.Authenticate(ctx); err != nil {
			return err
		}
		user, err := withRelogin(ctx, s, func(ctx context.Context) (*opensubtitles.User, error) {
			return s.client.UserInfo(ctx)
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User:      %s (id %d)\n", user.Username, user.UserID)
		fmt.Fprintf(out, "Level:     %s\n", user.Level)
		if user.VIP {
			fmt.Fprintln(out, "VIP:       yes")
		}
		fmt.Fprintf(out, "Allowed:   %d downloads per day\n", user.AllowedDownloads)
		if user.RemainingDownloads != nil {
			fmt.Fprintf(out, "Remaining: %d\n", *user.RemainingDownloads)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(whoamiCmd)
}
