package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

var disconnectCmd = &cobra.Command{
	Use:   "disconnect [platform]",
	Short: "Remove a platform's stored tokens",
	Long: `Delete the stored OAuth tokens for a platform.

The OAuth app settings in the config file are kept; reconnecting does
not require re-entering them.`,
	Args: cobra.ExactArgs(1),
	RunE: runDisconnect,
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	if tokenManager == nil {
		return errors.New("token services not configured")
	}

	platform, err := domain.ParsePlatformID(args[0])
	if err != nil {
		return err
	}

	if err := tokenManager.Disconnect(cmd.Context(), platform); err != nil {
		return err
	}

	cmd.Printf("Disconnected %s.\n", platform.DisplayName())
	return nil
}
