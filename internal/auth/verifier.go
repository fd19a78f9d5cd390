package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is the only error Verify returns to callers. The cause is
// kept for logging through errors.Unwrap on *VerifyError.
var ErrUnauthorized = errors.New("unauthorized")

// VerifyError carries the internal reason a token was rejected.
type VerifyError struct {
	Reason error
}

func (e *VerifyError) Error() string { return "unauthorized: " + e.Reason.Error() }

func (e *VerifyError) Is(target error) bool { return target == ErrUnauthorized }

func (e *VerifyError) Unwrap() error { return e.Reason }

// Identity is the verified caller.
type Identity struct {
	UID   string
	Email string
}

// Claims of a Firebase Auth ID token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier validates bearer identity tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Verifier checks RS256 tokens against the provider's rotating key set.
type Verifier struct {
	keys     keyfunc.Keyfunc
	issuer   string
	audience string
	leeway   time.Duration
}

// NewFirebaseVerifier builds a Verifier for Firebase Auth ID tokens of projectID.
func NewFirebaseVerifier(keys keyfunc.Keyfunc, projectID string) *Verifier {
	return &Verifier{
		keys:     keys,
		issuer:   "https://securetoken.google.com/" + projectID,
		audience: projectID,
		leeway:   30 * time.Second,
	}
}

func (v *Verifier) Verify(_ context.Context, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, &VerifyError{Reason: errors.New("missing token")}
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, v.keys.Keyfunc)
	if err != nil {
		return Identity{}, &VerifyError{Reason: fmt.Errorf("failed to validate token: %w", err)}
	}
	if !token.Valid {
		return Identity{}, &VerifyError{Reason: errors.New("invalid token")}
	}
	if claims.Subject == "" {
		return Identity{}, &VerifyError{Reason: errors.New("token has no subject")}
	}

	return Identity{UID: claims.Subject, Email: claims.Email}, nil
}
