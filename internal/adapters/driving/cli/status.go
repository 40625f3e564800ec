package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show platform connections and recent runs",
	RunE:  runStatus,
}

var statusRuns int

func init() {
	statusCmd.Flags().IntVar(&statusRuns, "runs", 5, "Number of recent runs to show (0 = none)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if tokenManager == nil {
		return errors.New("token services not configured")
	}

	cmd.Println("Platforms:")
	for _, platform := range domain.AllPlatforms() {
		state := "not connected"
		if tokenManager.IsConnected(cmd.Context(), platform) {
			state = "connected"
		}
		cmd.Printf("  %-16s%s\n", platform.DisplayName(), state)
	}

	if statusRuns <= 0 || runStore == nil {
		return nil
	}

	runs, err := runStore.ListRuns(cmd.Context(), statusRuns)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return nil
	}

	cmd.Println("\nRecent runs:")
	for _, run := range runs {
		failed := 0
		for _, res := range run.Resources {
			if res.Status == domain.StatusFailed {
				failed++
			}
		}
		verdict := "ok"
		if failed > 0 {
			verdict = "partial"
		}
		cmd.Printf("  %s  %-8s%-24s%s\n",
			run.StartedAt.Format("2006-01-02 15:04"), verdict, run.ProjectName, run.RunID)
	}

	return nil
}
