package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"revision-runtime/backend/internal/config"

	"github.com/coreos/go-oidc"
	"golang.org/x/oauth2"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// ServiceUserCredentials identify the runtime's service user at the Keycloak realm.
type ServiceUserCredentials struct {
	Realm    string
	ClientID string
	Username string
	Password string
	AuthURL  string
	Audience string
}

// Issuer is the OpenID Connect issuer URL of the realm.
func (c ServiceUserCredentials) Issuer() string {
	return c.AuthURL + "/realms/" + c.Realm
}

// CredentialsFromConfig reads the service user credentials from the auth section.
func CredentialsFromConfig(cfg *config.Config) ServiceUserCredentials {
	return ServiceUserCredentials{
		Realm:    cfg.Auth.Realm,
		ClientID: cfg.Auth.ClientID,
		Username: cfg.Auth.Username,
		Password: cfg.Auth.Password,
		AuthURL:  cfg.Auth.AuthURL,
		Audience: cfg.Auth.Audience,
	}
}

// TokenManager obtains access tokens for the service user with the resource
// owner password grant and keeps them until they expire. Expired tokens are
// refreshed with the refresh token; when that fails a new password grant is made.
type TokenManager struct {
	creds      ServiceUserCredentials
	oauth2     *oauth2.Config
	httpClient *http.Client
	logger     Logger

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewTokenManager discovers the realm's token endpoint and prepares a manager.
func NewTokenManager(ctx context.Context, creds ServiceUserCredentials, logger Logger) (*TokenManager, error) {
	if creds.AuthURL == "" || creds.Realm == "" || creds.ClientID == "" || creds.Username == "" {
		return nil, errors.New("auth configuration is incomplete")
	}

	provider, err := oidc.NewProvider(ctx, creds.Issuer())
	if err != nil {
		return nil, fmt.Errorf("failed to discover %s: %w", creds.Issuer(), err)
	}
	return NewTokenManagerWithEndpoint(creds, provider.Endpoint(), logger), nil
}

// NewTokenManagerWithEndpoint builds a manager for a known token endpoint.
func NewTokenManagerWithEndpoint(creds ServiceUserCredentials, endpoint oauth2.Endpoint, logger Logger) *TokenManager {
	return &TokenManager{
		creds: creds,
		oauth2: &oauth2.Config{
			ClientID: creds.ClientID,
			Endpoint: endpoint,
			Scopes:   []string{ScopeOpenID},
		},
		logger: logger,
	}
}

// FromConfig returns a TokenManager when Keycloak auth is enabled and nil otherwise.
func FromConfig(ctx context.Context, cfg *config.Config, logger Logger) (*TokenManager, error) {
	if !cfg.Auth.UseKeycloak {
		return nil, nil
	}
	return NewTokenManager(ctx, CredentialsFromConfig(cfg), logger)
}

// WithHTTPClient sets the client used for token requests.
func (m *TokenManager) WithHTTPClient(c *http.Client) *TokenManager {
	m.httpClient = c
	return m
}

func (m *TokenManager) clientContext(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// AccessToken returns a valid access token, requesting a new one if needed.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source != nil {
		tok, err := m.source.Token()
		if err == nil {
			return tok.AccessToken, nil
		}
		if m.logger != nil {
			m.logger.Info("refreshing access token failed, requesting a new one", "error", err)
		}
		m.source = nil
	}

	tok, err := m.oauth2.PasswordCredentialsToken(m.clientContext(ctx), m.creds.Username, m.creds.Password)
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}
	if m.logger != nil {
		m.logger.Debug("obtained access token", "expiry", tok.Expiry)
	}
	// The source outlives ctx, so refreshes run on a background context.
	m.source = oauth2.ReuseTokenSource(tok, m.oauth2.TokenSource(m.clientContext(context.Background()), tok))
	return tok.AccessToken, nil
}
