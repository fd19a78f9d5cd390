package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/catalogomaker/backend/internal/auth"

	"github.com/rs/zerolog"
)

// Injected key type to avoid context collisions
type contextKey string

const identityContextKey = contextKey("identity")

var errMissingBearer = errors.New("missing bearer token")

// Guard verifies the request's bearer token and returns the caller's identity.
// Every failure is reported as auth.ErrUnauthorized.
func Guard(r *http.Request, verifier auth.TokenVerifier) (auth.Identity, error) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return auth.Identity{}, &auth.VerifyError{Reason: errMissingBearer}
	}
	return verifier.Verify(r.Context(), strings.TrimSpace(parts[1]))
}

// RequireIdentity runs Guard before next and stores the identity in the request context.
func RequireIdentity(verifier auth.TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := Guard(r, verifier)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected unauthenticated request")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Acesso não autorizado"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(auth.Identity)
	return id, ok && id.UID != ""
}
