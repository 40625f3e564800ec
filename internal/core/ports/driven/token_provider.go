package driven

import (
	"context"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// TokenProvider supplies a guaranteed-valid bearer token for outbound
// platform calls. The token lifecycle manager implements it; platform
// clients consume it and never store tokens themselves.
type TokenProvider interface {
	GetValidToken(ctx context.Context, platform domain.PlatformID) (string, error)
}
