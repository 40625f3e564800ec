// Package relay implements the credential relay: OAuth authorization
// code exchange and refresh-token exchange for the three platforms.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
)

// Ensure Relay implements the port.
var _ driven.TokenRelay = (*Relay)(nil)

// ProviderConfig holds one platform's OAuth application settings.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string
}

// Relay performs the OAuth exchanges. Provider error codes that mean
// "this grant is dead" surface as domain.ErrReauthRequired; everything
// else is a transient failure.
type Relay struct {
	configs map[domain.PlatformID]ProviderConfig
}

// NewRelay creates a relay over per-platform provider configs.
func NewRelay(configs map[domain.PlatformID]ProviderConfig) *Relay {
	return &Relay{configs: configs}
}

// LoadProviderConfigs reads provider settings from configuration.
// Keys follow "oauth.<platform>.<field>".
func LoadProviderConfigs(store driven.ConfigStore) map[domain.PlatformID]ProviderConfig {
	configs := make(map[domain.PlatformID]ProviderConfig)
	for _, platform := range domain.AllPlatforms() {
		prefix := "oauth." + platform.String() + "."
		cfg := ProviderConfig{
			ClientID:     store.GetString(prefix + "client_id"),
			ClientSecret: store.GetString(prefix + "client_secret"),
			AuthURL:      store.GetString(prefix + "auth_url"),
			TokenURL:     store.GetString(prefix + "token_url"),
			RedirectURL:  store.GetString(prefix + "redirect_url"),
			Scopes:       store.GetStringSlice(prefix + "scopes"),
		}
		if cfg.ClientID != "" {
			configs[platform] = cfg
		}
	}
	return configs
}

// SetProviderConfig installs or replaces a platform's OAuth app
// settings. Used when the connect flow configures an app on the fly.
func (r *Relay) SetProviderConfig(platform domain.PlatformID, cfg ProviderConfig) {
	r.configs[platform] = cfg
}

// SetRedirectURL overrides the redirect URL for a platform. The connect
// flow binds an ephemeral localhost callback server and must point the
// provider at whatever port it actually got.
func (r *Relay) SetRedirectURL(platform domain.PlatformID, uri string) {
	cfg, ok := r.configs[platform]
	if !ok {
		return
	}
	cfg.RedirectURL = uri
	r.configs[platform] = cfg
}

// oauthConfig builds the oauth2 config for a platform.
func (r *Relay) oauthConfig(platform domain.PlatformID) (*oauth2.Config, error) {
	cfg, ok := r.configs[platform]
	if !ok {
		return nil, fmt.Errorf("%w: no OAuth app configured for %s", domain.ErrNotConnected, platform)
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}, nil
}

// AuthCodeURL builds the provider authorization URL for the connect flow.
func (r *Relay) AuthCodeURL(platform domain.PlatformID, state, codeChallenge string) (string, error) {
	conf, err := r.oauthConfig(platform)
	if err != nil {
		return "", err
	}
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if codeChallenge != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", codeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
	}
	return conf.AuthCodeURL(state, opts...), nil
}

// ExchangeCode trades an authorization code for a TokenRecord.
func (r *Relay) ExchangeCode(ctx context.Context, platform domain.PlatformID, code, codeVerifier string) (*domain.TokenRecord, error) {
	conf, err := r.oauthConfig(platform)
	if err != nil {
		return nil, err
	}

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}

	token, err := conf.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return toRecord(platform, token), nil
}

// Refresh trades a refresh token for a fresh TokenRecord.
func (r *Relay) Refresh(ctx context.Context, platform domain.PlatformID, refreshToken string) (*domain.TokenRecord, error) {
	conf, err := r.oauthConfig(platform)
	if err != nil {
		return nil, err
	}

	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, mapTokenError(err)
	}
	return toRecord(platform, token), nil
}

// toRecord converts an oauth2 token to a domain TokenRecord.
func toRecord(platform domain.PlatformID, token *oauth2.Token) *domain.TokenRecord {
	return &domain.TokenRecord{
		Platform:     platform,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
		ExpiresAt:    token.Expiry,
		ObtainedAt:   time.Now(),
	}
}

// mapTokenError maps provider error codes onto the domain taxonomy.
// invalid_grant means the refresh token was revoked or rotated away:
// the operator must reconnect.
func mapTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "invalid_grant", "unauthorized_client", "access_denied":
			return fmt.Errorf("%w: %s", domain.ErrReauthRequired, retrieveErr.ErrorCode)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
}
