package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc"
)

type contextKey string

const subjectKey contextKey = "subject"

// SubjectFromContext returns the token subject stored by RequireBearer.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok
}

// Verifier checks bearer tokens on incoming API requests. A Verifier without
// an underlying token verifier lets every request through.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
	logger   Logger
}

// NewVerifier discovers the realm's keys and accepts tokens issued for
// creds.Audience. An empty audience skips the audience check.
func NewVerifier(ctx context.Context, creds ServiceUserCredentials, logger Logger) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, creds.Issuer())
	if err != nil {
		return nil, fmt.Errorf("failed to discover %s: %w", creds.Issuer(), err)
	}
	v := provider.Verifier(&oidc.Config{
		ClientID:          creds.Audience,
		SkipClientIDCheck: creds.Audience == "",
	})
	return &Verifier{verifier: v, logger: logger}, nil
}

// RequireBearer is middleware that rejects requests without a valid
// "Authorization: Bearer" token.
func (v *Verifier) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v == nil || v.verifier == nil {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		token, err := v.verifier.Verify(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			if v.logger != nil {
				v.logger.Debug("rejected bearer token", "error", err)
			}
			http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, token.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
