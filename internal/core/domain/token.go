package domain

import "time"

// TokenRecord stores OAuth credentials for one platform.
// It is owned exclusively by the token lifecycle manager: created on a
// successful code exchange, replaced wholesale on refresh, deleted on
// explicit disconnect or irrecoverable refresh failure.
type TokenRecord struct {
	// Platform identifies which platform these tokens belong to.
	Platform PlatformID `json:"platform"`
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// ExpiresAt is when the access token expires. Zero means unknown.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	// ObtainedAt is when the record was created or last refreshed.
	ObtainedAt time.Time `json:"obtained_at"`
}

// IsExpired returns true if the access token has expired.
func (t *TokenRecord) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt)
}

// NeedsRefresh returns true if the token is expired or within the
// given safety margin of expiring.
func (t *TokenRecord) NeedsRefresh(margin time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(t.ExpiresAt) < margin
}

// HasRefreshToken returns true if a refresh token is available.
func (t *TokenRecord) HasRefreshToken() bool {
	return t.RefreshToken != ""
}
