package auth

import (
	"context"
	"net/http"

	"revision-runtime/backend/internal/config"
)

// TokenSource provides bearer tokens for outgoing requests.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Headers returns the Authorization header for requests to the backend.
// Without a token source the map is empty.
func Headers(ctx context.Context, tokens TokenSource) (map[string]string, error) {
	if tokens == nil {
		return map[string]string{}, nil
	}
	if m, ok := tokens.(*TokenManager); ok && m == nil {
		return map[string]string{}, nil
	}
	token, err := tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// BasicAuth holds optional HTTP Basic credentials for the backend.
type BasicAuth struct {
	User     string
	Password string
}

// BasicAuthFromConfig reads the backend basic auth settings.
func BasicAuthFromConfig(cfg *config.Config) BasicAuth {
	return BasicAuth{
		User:     cfg.Backend.BasicAuthUser,
		Password: cfg.Backend.BasicAuthPassword,
	}
}

// IsSet reports whether a user is configured.
func (b BasicAuth) IsSet() bool {
	return b.User != ""
}

// Apply sets the Basic credentials on req when a user is configured.
func (b BasicAuth) Apply(req *http.Request) {
	if b.IsSet() {
		req.SetBasicAuth(b.User, b.Password)
	}
}
