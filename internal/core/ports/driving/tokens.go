package driving

import (
	"context"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// TokenManager supplies a guaranteed-valid bearer token to every
// outbound platform call, refreshing lazily.
type TokenManager interface {
	// GetValidToken returns a non-expired access token for the platform.
	// Refreshes at most once per call; concurrent callers share a single
	// in-flight refresh. Returns domain.ErrReauthRequired if the stored
	// record is unusable (the record is deleted in that case).
	GetValidToken(ctx context.Context, platform domain.PlatformID) (string, error)

	// Connect exchanges an authorization code and stores the new record.
	Connect(ctx context.Context, platform domain.PlatformID, code, codeVerifier string) error

	// Disconnect deletes the stored record for a platform.
	Disconnect(ctx context.Context, platform domain.PlatformID) error

	// IsConnected reports whether a token record exists for the platform.
	IsConnected(ctx context.Context, platform domain.PlatformID) bool
}
