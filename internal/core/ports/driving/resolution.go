package driving

import (
	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// ResolutionService derives default resolution plans from configuration
// and validates operator choices against a duplicate report.
type ResolutionService interface {
	// Defaults returns the configured default plan. Deriving defaults
	// twice from the same configuration yields identical plans, so a
	// report refresh never silently changes operator edits.
	Defaults() domain.ResolutionPlan

	// ValidateChoice checks a single platform's choice against the report.
	// Returns domain.ErrPolicyViolation for a match-requiring choice with
	// no match, and domain.ErrRecreateDisabled for ungated Recreate.
	ValidateChoice(platform domain.PlatformID, choice domain.ResolutionChoice, report *domain.DuplicateReport) error

	// ValidatePlan checks every platform's choice. The plan must cover
	// all three platforms.
	ValidatePlan(plan domain.ResolutionPlan, report *domain.DuplicateReport) error

	// AllowRecreate reports whether the destructive recreate capability
	// is enabled in configuration.
	AllowRecreate() bool
}
