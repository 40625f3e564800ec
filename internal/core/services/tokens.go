package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driving"
	"github.com/meridian-labs/kickoff-cli/internal/logger"
)

// Ensure TokenService implements the interface.
var _ driving.TokenManager = (*TokenService)(nil)

// DefaultRefreshMargin is how long before expiry a token is treated as
// stale and refreshed.
const DefaultRefreshMargin = 2 * time.Minute

// TokenService owns the per-platform TokenRecords. It refreshes lazily
// and coalesces concurrent refreshes: most providers rotate the refresh
// token on use, so two racing refreshes would invalidate each other.
type TokenService struct {
	relay  driven.TokenRelay
	store  driven.TokenStore
	margin time.Duration

	mu    sync.Mutex
	locks map[domain.PlatformID]*sync.Mutex
}

// NewTokenService creates a token lifecycle manager.
// A non-positive margin falls back to DefaultRefreshMargin.
func NewTokenService(relay driven.TokenRelay, store driven.TokenStore, margin time.Duration) *TokenService {
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	return &TokenService{
		relay:  relay,
		store:  store,
		margin: margin,
		locks:  make(map[domain.PlatformID]*sync.Mutex),
	}
}

// platformLock returns the mutex serialising refreshes for one platform.
func (s *TokenService) platformLock(platform domain.PlatformID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[platform]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[platform] = lock
	}
	return lock
}

// GetValidToken returns a non-expired access token for the platform.
//
// Callers racing an in-flight refresh block on the platform lock and
// re-read the store afterwards, so exactly one refresh network call is
// made per expiry. A refresh is attempted at most once per call.
func (s *TokenService) GetValidToken(ctx context.Context, platform domain.PlatformID) (string, error) {
	lock := s.platformLock(platform)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.store.Get(ctx, platform)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotConnected, platform)
		}
		return "", fmt.Errorf("get token record: %w", err)
	}

	if !record.NeedsRefresh(s.margin) {
		return record.AccessToken, nil
	}

	if !record.HasRefreshToken() {
		// No way back to a valid token; drop the record so the operator
		// is told to reconnect rather than seeing repeated 401s.
		if delErr := s.store.Delete(ctx, platform); delErr != nil {
			logger.Warn("delete stale token record for %s: %v", platform, delErr)
		}
		return "", fmt.Errorf("%w: %s", domain.ErrReauthRequired, platform)
	}

	logger.Debug("refreshing token for %s", platform)
	fresh, err := s.relay.Refresh(ctx, platform, record.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrReauthRequired) {
			if delErr := s.store.Delete(ctx, platform); delErr != nil {
				logger.Warn("delete rejected token record for %s: %v", platform, delErr)
			}
			return "", fmt.Errorf("%w: %s", domain.ErrReauthRequired, platform)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
	}

	fresh.Platform = platform
	if fresh.RefreshToken == "" {
		// Providers that do not rotate omit the refresh token; keep ours.
		fresh.RefreshToken = record.RefreshToken
	}
	fresh.ObtainedAt = time.Now()

	if err := s.store.Save(ctx, *fresh); err != nil {
		return "", fmt.Errorf("save refreshed token record: %w", err)
	}

	return fresh.AccessToken, nil
}

// Connect exchanges an authorization code and stores the new record.
func (s *TokenService) Connect(ctx context.Context, platform domain.PlatformID, code, codeVerifier string) error {
	record, err := s.relay.ExchangeCode(ctx, platform, code, codeVerifier)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	record.Platform = platform
	record.ObtainedAt = time.Now()

	lock := s.platformLock(platform)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Save(ctx, *record); err != nil {
		return fmt.Errorf("save token record: %w", err)
	}
	logger.Info("connected %s", platform)
	return nil
}

// Disconnect deletes the stored record for a platform.
func (s *TokenService) Disconnect(ctx context.Context, platform domain.PlatformID) error {
	lock := s.platformLock(platform)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Delete(ctx, platform); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete token record: %w", err)
	}
	return nil
}

// IsConnected reports whether a token record exists for the platform.
func (s *TokenService) IsConnected(ctx context.Context, platform domain.PlatformID) bool {
	_, err := s.store.Get(ctx, platform)
	return err == nil
}
