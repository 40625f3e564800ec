package driving

import (
	"context"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// DuplicateChecker probes every platform for an existing project
// matching a candidate name and aggregates the results.
type DuplicateChecker interface {
	// CheckAll fans out to all platform probes concurrently and waits
	// for each to settle. A platform with an operator-supplied URL in
	// existing is never probed; it is reported as a user-provided match.
	// A failed probe degrades to SkippedProbe, never to "not found".
	CheckAll(ctx context.Context, candidateName string, existing domain.ExistingURLs) (*domain.DuplicateReport, error)
}
