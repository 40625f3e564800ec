package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

var checkCmd = &cobra.Command{
	Use:   "check [project-name]",
	Short: "Check all platforms for an existing project",
	Long: `Probe the record store, task board, and document store for a project
matching the candidate name.

Matching is case-insensitive and bidirectional: "FEP" matches "FEP Outreach"
and vice versa. A platform you supply a URL for is not probed; the URL is
treated as an affirmed match.

A platform that cannot be probed (not connected, transport failure) is
reported as skipped, never as "no duplicate".

Examples:
  kickoff check "Water Quality Dashboard"
  kickoff check "FEP Outreach" --task-board-url https://board.example.com/p/123`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// Flags for check.
var (
	checkRecordStoreURL string
	checkTaskBoardURL   string
	checkDocStoreURL    string
)

func init() {
	checkCmd.Flags().StringVar(
		&checkRecordStoreURL, "record-store-url", "", "Known record-store entry URL (skips the probe)")
	checkCmd.Flags().StringVar(
		&checkTaskBoardURL, "task-board-url", "", "Known task-board project URL (skips the probe)")
	checkCmd.Flags().StringVar(
		&checkDocStoreURL, "doc-store-url", "", "Known doc-store folder URL (skips the probe)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if duplicateChecker == nil {
		return errors.New("duplicate checker not configured")
	}

	existing := domain.ExistingURLs{
		RecordStore: checkRecordStoreURL,
		TaskBoard:   checkTaskBoardURL,
		DocStore:    checkDocStoreURL,
	}

	report, err := duplicateChecker.CheckAll(cmd.Context(), args[0], existing)
	if err != nil {
		return err
	}

	printReport(cmd, report)
	return nil
}

// printReport renders one line per platform plus a closing verdict.
func printReport(cmd *cobra.Command, report *domain.DuplicateReport) {
	cmd.Printf("Duplicate check for %q\n\n", report.CandidateName)

	for _, platform := range domain.ProvisionOrder {
		result := report.Result(platform)
		cmd.Printf("  %-16s", platform.DisplayName())

		switch {
		case result.UserProvided:
			cmd.Printf("linked     %s\n", result.MatchedURL)
		case result.SkippedProbe:
			cmd.Printf("skipped    %s\n", result.ProbeError)
		case result.Found:
			label := result.MatchedLabel
			if label == "" {
				label = result.MatchedResourceID
			}
			cmd.Printf("match      %s", label)
			if result.MatchedURL != "" {
				cmd.Printf("  %s", result.MatchedURL)
			}
			cmd.Println()
			if len(result.AllMatches) > 1 {
				for _, extra := range result.AllMatches[1:] {
					cmd.Printf("  %-16s           also: %s  %s\n", "", extra.Label, extra.URL)
				}
			}
		default:
			cmd.Println("no match")
		}
	}

	cmd.Println()
	switch {
	case report.HasDuplicates():
		cmd.Println("Possible duplicates found. Review matches before provisioning.")
	case report.HasSkippedProbes():
		cmd.Println("No duplicates found on the checked platforms; some platforms could not be checked.")
	default:
		cmd.Println("No duplicates found.")
	}
}
