package domain

import (
	"strings"
	"time"
)

// ProvisionStatus is the terminal state of one platform in a run.
// Per-platform state machine within one run:
// NotStarted -> Skipped | Linked | Creating -> Created|Failed | Updating -> Updated|Failed.
// Terminal states are never re-entered within a run.
type ProvisionStatus string

const (
	// StatusCreated means a new resource was created.
	StatusCreated ProvisionStatus = "created"
	// StatusUpdated means the matched resource was updated or adopted.
	StatusUpdated ProvisionStatus = "updated"
	// StatusLinked means an operator-provided resource was linked verbatim.
	StatusLinked ProvisionStatus = "linked"
	// StatusSkipped means no action was taken, by choice.
	StatusSkipped ProvisionStatus = "skipped"
	// StatusFailed means the platform action failed; other platforms
	// still proceed.
	StatusFailed ProvisionStatus = "failed"
)

// Succeeded returns true for states that produced or affirmed a resource.
func (s ProvisionStatus) Succeeded() bool {
	switch s {
	case StatusCreated, StatusUpdated, StatusLinked:
		return true
	default:
		return false
	}
}

// ProvisionedResource records each platform's outcome for one run.
type ProvisionedResource struct {
	Platform   PlatformID      `json:"platform"`
	Status     ProvisionStatus `json:"status"`
	ResourceID string          `json:"resource_id,omitempty"`
	URL        string          `json:"url,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ProvisioningOutcome is the result of one provisioning run.
// Success is per-platform; there is no single "the operation failed".
type ProvisioningOutcome struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`
	// ProjectName is the intake form's project name.
	ProjectName string `json:"project_name"`
	// Resources holds one entry per platform, in provisioning order.
	Resources map[PlatformID]ProvisionedResource `json:"resources"`
	// LinkWriteBackError reports a failed best-effort write-back of the
	// task-board and doc-store links onto the record-store entry. The
	// already-provisioned resources are never rolled back.
	LinkWriteBackError string `json:"link_write_back_error,omitempty"`
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Resource returns the outcome entry for a platform.
func (o *ProvisioningOutcome) Resource(p PlatformID) ProvisionedResource {
	return o.Resources[p]
}

// IntakeForm is the submitted project intake data a run draws from.
type IntakeForm struct {
	// ProjectName is the candidate project name.
	ProjectName string `json:"project_name"`
	// Description seeds the record-store entry and template placeholders.
	Description string `json:"description,omitempty"`
	// Lead is the responsible staff member.
	Lead string `json:"lead,omitempty"`
	// Fields are additional record-store column values.
	Fields map[string]string `json:"fields,omitempty"`
	// InitialTasks seed the task board after creation.
	InitialTasks []string `json:"initial_tasks,omitempty"`
}

// Placeholders returns the template placeholder values derived from the form.
func (f IntakeForm) Placeholders() map[string]string {
	return map[string]string{
		"project_name": f.ProjectName,
		"description":  f.Description,
		"lead":         f.Lead,
	}
}

// Validate checks the form is usable for a run.
func (f IntakeForm) Validate() error {
	if strings.TrimSpace(f.ProjectName) == "" {
		return ErrInvalidInput
	}
	return nil
}
