package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// CheckDuplicatesInput is the input schema for the check_duplicates tool.
type CheckDuplicatesInput struct {
	ProjectName    string `json:"project_name" jsonschema:"the candidate project name to check across platforms"`
	RecordStoreURL string `json:"record_store_url,omitempty" jsonschema:"known record-store entry URL, skips the probe"`
	TaskBoardURL   string `json:"task_board_url,omitempty" jsonschema:"known task-board project URL, skips the probe"`
	DocStoreURL    string `json:"doc_store_url,omitempty" jsonschema:"known doc-store folder URL, skips the probe"`
}

// PlatformResultOutput describes one platform's probe outcome.
type PlatformResultOutput struct {
	Platform     string `json:"platform"`
	Found        bool   `json:"found"`
	MatchedID    string `json:"matched_id,omitempty"`
	MatchedURL   string `json:"matched_url,omitempty"`
	MatchedLabel string `json:"matched_label,omitempty"`
	UserProvided bool   `json:"user_provided"`
	SkippedProbe bool   `json:"skipped_probe"`
	ProbeError   string `json:"probe_error,omitempty"`
}

// CheckDuplicatesOutput is the output schema for the check_duplicates tool.
type CheckDuplicatesOutput struct {
	ProjectName   string                 `json:"project_name"`
	HasDuplicates bool                   `json:"has_duplicates"`
	Results       []PlatformResultOutput `json:"results"`
}

// ProvisionProjectInput is the input schema for the provision_project tool.
type ProvisionProjectInput struct {
	ProjectName       string            `json:"project_name" jsonschema:"the project name"`
	Description       string            `json:"description,omitempty" jsonschema:"project description"`
	Lead              string            `json:"lead,omitempty" jsonschema:"responsible staff member"`
	Fields            map[string]string `json:"fields,omitempty" jsonschema:"additional record-store column values"`
	InitialTasks      []string          `json:"initial_tasks,omitempty" jsonschema:"task names to seed the task board with"`
	RecordStoreURL    string            `json:"record_store_url,omitempty" jsonschema:"known record-store entry URL, linked instead of provisioned"`
	TaskBoardURL      string            `json:"task_board_url,omitempty" jsonschema:"known task-board project URL, linked instead of provisioned"`
	DocStoreURL       string            `json:"doc_store_url,omitempty" jsonschema:"known doc-store folder URL, linked instead of provisioned"`
	RecordStoreChoice string            `json:"record_store_choice,omitempty" jsonschema:"resolution for record-store: update-existing, create-new, or skip (default from config)"`
	TaskBoardChoice   string            `json:"task_board_choice,omitempty" jsonschema:"resolution for task-board: use-existing, create-new, or skip (default from config)"`
	DocStoreChoice    string            `json:"doc_store_choice,omitempty" jsonschema:"resolution for doc-store: keep-existing, create-new, skip, or recreate (default from config)"`
}

// ProvisionedResourceOutput describes one platform's provisioning result.
type ProvisionedResourceOutput struct {
	Platform   string `json:"platform"`
	Status     string `json:"status"`
	ResourceID string `json:"resource_id,omitempty"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ProvisionProjectOutput is the output schema for the provision_project tool.
type ProvisionProjectOutput struct {
	RunID              string                      `json:"run_id"`
	ProjectName        string                      `json:"project_name"`
	Resources          []ProvisionedResourceOutput `json:"resources"`
	LinkWriteBackError string                      `json:"link_write_back_error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_duplicates",
		Description: "Check all platforms for an existing project matching a candidate name",
	}, s.handleCheckDuplicates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "provision_project",
		Description: "Provision a project across the record store, task board, and document store",
	}, s.handleProvisionProject)
}

// handleCheckDuplicates handles the check_duplicates tool invocation.
func (s *Server) handleCheckDuplicates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckDuplicatesInput,
) (*mcp.CallToolResult, CheckDuplicatesOutput, error) {
	existing := domain.ExistingURLs{
		RecordStore: input.RecordStoreURL,
		TaskBoard:   input.TaskBoardURL,
		DocStore:    input.DocStoreURL,
	}

	report, err := s.ports.Checker.CheckAll(ctx, input.ProjectName, existing)
	if err != nil {
		return nil, CheckDuplicatesOutput{}, err
	}

	return nil, reportOutput(report), nil
}

// handleProvisionProject handles the provision_project tool invocation.
func (s *Server) handleProvisionProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProvisionProjectInput,
) (*mcp.CallToolResult, ProvisionProjectOutput, error) {
	form := domain.IntakeForm{
		ProjectName:  input.ProjectName,
		Description:  input.Description,
		Lead:         input.Lead,
		Fields:       input.Fields,
		InitialTasks: input.InitialTasks,
	}

	existing := domain.ExistingURLs{
		RecordStore: input.RecordStoreURL,
		TaskBoard:   input.TaskBoardURL,
		DocStore:    input.DocStoreURL,
	}

	report, err := s.ports.Checker.CheckAll(ctx, input.ProjectName, existing)
	if err != nil {
		return nil, ProvisionProjectOutput{}, err
	}

	plan, err := s.buildPlan(input, report)
	if err != nil {
		return nil, ProvisionProjectOutput{}, err
	}

	outcome, err := s.ports.Provisioner.Execute(ctx, form, report, plan)
	if err != nil {
		return nil, ProvisionProjectOutput{}, err
	}

	output := ProvisionProjectOutput{
		RunID:              outcome.RunID,
		ProjectName:        outcome.ProjectName,
		LinkWriteBackError: outcome.LinkWriteBackError,
	}
	for _, p := range domain.ProvisionOrder {
		res := outcome.Resource(p)
		output.Resources = append(output.Resources, ProvisionedResourceOutput{
			Platform:   string(res.Platform),
			Status:     string(res.Status),
			ResourceID: res.ResourceID,
			URL:        res.URL,
			Error:      res.Error,
		})
	}

	return nil, output, nil
}

// buildPlan merges explicit per-platform choices over the configured
// defaults and validates the result against the report.
func (s *Server) buildPlan(input ProvisionProjectInput, report *domain.DuplicateReport) (domain.ResolutionPlan, error) {
	plan := s.ports.Resolution.Defaults()

	overrides := map[domain.PlatformID]string{
		domain.PlatformRecordStore: input.RecordStoreChoice,
		domain.PlatformTaskBoard:   input.TaskBoardChoice,
		domain.PlatformDocStore:    input.DocStoreChoice,
	}
	for platform, raw := range overrides {
		if raw == "" {
			continue
		}
		choice, err := domain.ParseResolutionChoice(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", platform, err)
		}
		plan[platform] = choice
	}

	// A match-requiring default degrades to create-new when the probe
	// found nothing, so plain defaults stay executable.
	for platform, choice := range plan {
		if overrides[platform] == "" && choice.RequiresMatch() && !report.Result(platform).Found {
			plan[platform] = domain.ChoiceCreateNew
		}
	}

	if err := s.ports.Resolution.ValidatePlan(plan, report); err != nil {
		return nil, err
	}
	return plan, nil
}

// reportOutput converts a domain report to the tool output shape.
func reportOutput(report *domain.DuplicateReport) CheckDuplicatesOutput {
	output := CheckDuplicatesOutput{
		ProjectName:   report.CandidateName,
		HasDuplicates: report.HasDuplicates(),
	}
	for _, p := range domain.ProvisionOrder {
		res := report.Result(p)
		output.Results = append(output.Results, PlatformResultOutput{
			Platform:     string(res.Platform),
			Found:        res.Found,
			MatchedID:    res.MatchedResourceID,
			MatchedURL:   res.MatchedURL,
			MatchedLabel: res.MatchedLabel,
			UserProvided: res.UserProvided,
			SkippedProbe: res.SkippedProbe,
			ProbeError:   res.ProbeError,
		})
	}
	return output
}
