package driven

import (
	"context"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// RunStore keeps a local history of provisioning runs.
// The durable artifact is still the record-store entry; this history
// exists so the operator can inspect past runs from the CLI.
type RunStore interface {
	// SaveRun persists a finished run outcome.
	SaveRun(ctx context.Context, outcome domain.ProvisioningOutcome) error

	// GetRun retrieves one run by ID.
	// Returns domain.ErrNotFound if absent.
	GetRun(ctx context.Context, runID string) (*domain.ProvisioningOutcome, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.ProvisioningOutcome, error)
}
