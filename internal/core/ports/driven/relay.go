package driven

import (
	"context"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// TokenRelay obtains and refreshes OAuth tokens for a platform.
// Implementations map provider error codes: invalid_grant and friends
// surface as domain.ErrReauthRequired, everything else as a transient
// domain.ErrTokenRefreshFailed wrap.
type TokenRelay interface {
	// ExchangeCode trades an authorization code for a fresh TokenRecord.
	ExchangeCode(ctx context.Context, platform domain.PlatformID, code, codeVerifier string) (*domain.TokenRecord, error)

	// Refresh trades a refresh token for a fresh TokenRecord.
	Refresh(ctx context.Context, platform domain.PlatformID, refreshToken string) (*domain.TokenRecord, error)
}

// TokenStore persists one TokenRecord per platform.
// Only the token lifecycle manager reads or writes it.
type TokenStore interface {
	// Save stores a record, replacing any existing one for the platform.
	Save(ctx context.Context, record domain.TokenRecord) error

	// Get retrieves the record for a platform.
	// Returns domain.ErrNotFound if the platform is not connected.
	Get(ctx context.Context, platform domain.PlatformID) (*domain.TokenRecord, error)

	// Delete removes the record for a platform.
	Delete(ctx context.Context, platform domain.PlatformID) error
}
