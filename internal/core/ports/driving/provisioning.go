package driving

import (
	"context"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// Provisioner executes a validated resolution plan against the platforms.
type Provisioner interface {
	// Execute walks the plan in the fixed platform order, isolating
	// failures per platform, then best-effort writes the task-board and
	// doc-store links back onto the record-store entry. Only one run may
	// be in flight at a time; a second call returns domain.ErrRunInFlight.
	//
	// Once started a run is not cancellable: platform creation calls are
	// non-idempotent and non-reversible, so each issued call runs to
	// completion or failure.
	Execute(ctx context.Context, form domain.IntakeForm, report *domain.DuplicateReport, plan domain.ResolutionPlan) (*domain.ProvisioningOutcome, error)
}
