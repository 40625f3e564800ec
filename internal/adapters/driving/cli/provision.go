package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/meridian-labs/kickoff-cli/internal/adapters/driving/tui"
	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

var provisionCmd = &cobra.Command{
	Use:   "provision [project-name]",
	Short: "Provision a project across all platforms",
	Long: `Check for duplicates, resolve them, and provision the project on the
record store, task board, and document store, in that order.

Each platform succeeds or fails on its own; one platform failing never
rolls back another. After provisioning, the task-board and doc-store URLs
are written back onto the record-store entry (best effort).

Resolution choices per platform:
  record-store:  update-existing | create-new | skip
  task-board:    use-existing    | create-new | skip
  doc-store:     keep-existing   | create-new | skip | recreate

Defaults come from configuration (resolution.* keys). Use --interactive
to pick choices in a terminal UI, or the per-platform flags to set them
directly.

Examples:
  kickoff provision "Harbor Survey" --lead "J. Ortiz"
  kickoff provision "FEP Outreach" --interactive
  kickoff provision "FEP Outreach" --task-board use-existing --doc-store skip
  kickoff provision "Harbor Survey" --field "Region=North" --task "Kickoff meeting"`,
	Args: cobra.ExactArgs(1),
	RunE: runProvision,
}

// Flags for provision.
var (
	provisionDescription    string
	provisionLead           string
	provisionFields         []string
	provisionTasks          []string
	provisionRecordStoreURL string
	provisionTaskBoardURL   string
	provisionDocStoreURL    string
	provisionRecordChoice   string
	provisionBoardChoice    string
	provisionDocChoice      string
	provisionInteractive    bool
	provisionYes            bool
)

func init() {
	provisionCmd.Flags().StringVar(&provisionDescription, "description", "", "Project description")
	provisionCmd.Flags().StringVar(&provisionLead, "lead", "", "Responsible staff member")
	provisionCmd.Flags().StringArrayVar(
		&provisionFields, "field", nil, "Additional record-store field as key=value (repeatable)")
	provisionCmd.Flags().StringArrayVar(
		&provisionTasks, "task", nil, "Initial task-board task name (repeatable)")
	provisionCmd.Flags().StringVar(
		&provisionRecordStoreURL, "record-store-url", "", "Known record-store entry URL (linked, not provisioned)")
	provisionCmd.Flags().StringVar(
		&provisionTaskBoardURL, "task-board-url", "", "Known task-board project URL (linked, not provisioned)")
	provisionCmd.Flags().StringVar(
		&provisionDocStoreURL, "doc-store-url", "", "Known doc-store folder URL (linked, not provisioned)")
	provisionCmd.Flags().StringVar(
		&provisionRecordChoice, "record-store", "", "Resolution choice for the record store")
	provisionCmd.Flags().StringVar(
		&provisionBoardChoice, "task-board", "", "Resolution choice for the task board")
	provisionCmd.Flags().StringVar(
		&provisionDocChoice, "doc-store", "", "Resolution choice for the document store")
	provisionCmd.Flags().BoolVarP(
		&provisionInteractive, "interactive", "i", false, "Pick resolution choices in a terminal UI")
	provisionCmd.Flags().BoolVarP(
		&provisionYes, "yes", "y", false, "Proceed even when duplicates were found")
	rootCmd.AddCommand(provisionCmd)
}

//nolint:gocognit // CLI orchestration flow
func runProvision(cmd *cobra.Command, args []string) error {
	if duplicateChecker == nil || resolutionService == nil || provisioner == nil {
		return errors.New("provisioning services not configured")
	}

	form, err := buildIntakeForm(args[0])
	if err != nil {
		return err
	}

	existing := domain.ExistingURLs{
		RecordStore: provisionRecordStoreURL,
		TaskBoard:   provisionTaskBoardURL,
		DocStore:    provisionDocStoreURL,
	}

	report, err := duplicateChecker.CheckAll(cmd.Context(), form.ProjectName, existing)
	if err != nil {
		return err
	}

	printReport(cmd, report)

	plan, err := buildPlan(report)
	if err != nil {
		return err
	}

	if provisionInteractive {
		plan, err = pickPlanInteractively(report, plan)
		if err != nil {
			return err
		}
		if plan == nil {
			cmd.Println("Cancelled.")
			return nil
		}
	} else if !provisionYes && !hasExplicitChoices() {
		// A skipped probe is not a clean "no duplicate": the platform may
		// still hold one, so creating there needs the same confirmation.
		if report.HasDuplicates() {
			return errors.New("duplicates found: resolve with --interactive, per-platform choice flags, or --yes to use defaults")
		}
		if report.HasSkippedProbes() {
			return errors.New("some platforms could not be checked: confirm with --interactive, per-platform choice flags, or --yes to proceed")
		}
	}

	if err := resolutionService.ValidatePlan(plan, report); err != nil {
		return err
	}

	outcome, err := provisioner.Execute(cmd.Context(), form, report, plan)
	if err != nil {
		return err
	}

	printOutcome(cmd, outcome)
	return nil
}

// buildIntakeForm assembles the intake form from flags.
func buildIntakeForm(name string) (domain.IntakeForm, error) {
	form := domain.IntakeForm{
		ProjectName:  name,
		Description:  provisionDescription,
		Lead:         provisionLead,
		InitialTasks: provisionTasks,
	}

	for _, raw := range provisionFields {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return form, fmt.Errorf("%w: field must be key=value, got %q", domain.ErrInvalidInput, raw)
		}
		if form.Fields == nil {
			form.Fields = make(map[string]string)
		}
		form.Fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return form, form.Validate()
}

// hasExplicitChoices reports whether any per-platform choice flag was set.
func hasExplicitChoices() bool {
	return provisionRecordChoice != "" || provisionBoardChoice != "" || provisionDocChoice != ""
}

// buildPlan merges choice flags over the configured defaults. Defaults
// that require a match degrade to create-new when nothing matched.
func buildPlan(report *domain.DuplicateReport) (domain.ResolutionPlan, error) {
	plan := resolutionService.Defaults()

	overrides := map[domain.PlatformID]string{
		domain.PlatformRecordStore: provisionRecordChoice,
		domain.PlatformTaskBoard:   provisionBoardChoice,
		domain.PlatformDocStore:    provisionDocChoice,
	}

	for platform, raw := range overrides {
		if raw == "" {
			continue
		}
		choice, err := domain.ParseResolutionChoice(raw)
		if err != nil {
			return nil, err
		}
		plan[platform] = choice
	}

	for platform, choice := range plan {
		if overrides[platform] == "" && choice.RequiresMatch() && !report.Result(platform).Found {
			plan[platform] = domain.ChoiceCreateNew
		}
	}

	return plan, nil
}

// pickPlanInteractively runs the TUI picker. Returns nil if cancelled.
func pickPlanInteractively(report *domain.DuplicateReport, defaults domain.ResolutionPlan) (domain.ResolutionPlan, error) {
	picker := tui.NewPicker(report, defaults, resolutionService.AllowRecreate())

	program := tea.NewProgram(picker)
	model, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("resolution picker: %w", err)
	}

	final, ok := model.(*tui.Picker)
	if !ok || final.Aborted() {
		return nil, nil
	}
	return final.Plan(), nil
}

// printOutcome renders the per-platform run results.
func printOutcome(cmd *cobra.Command, outcome *domain.ProvisioningOutcome) {
	cmd.Printf("\nRun %s for %q\n\n", outcome.RunID, outcome.ProjectName)

	for _, platform := range domain.ProvisionOrder {
		res := outcome.Resource(platform)
		cmd.Printf("  %-16s%-10s", platform.DisplayName(), res.Status)
		if res.URL != "" {
			cmd.Printf("%s", res.URL)
		}
		if res.Error != "" {
			cmd.Printf("%s", res.Error)
		}
		cmd.Println()
	}

	if outcome.LinkWriteBackError != "" {
		cmd.Printf("\nWarning: link write-back failed: %s\n", outcome.LinkWriteBackError)
		cmd.Println("The provisioned resources are fine; add the links to the record-store entry manually.")
	}
}
