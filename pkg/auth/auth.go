// Package auth verifies bearer tokens.
//
// Three verifiers are provided: IdentityProviderVerifier forwards the token to
// an external identity provider, JWTVerifier validates signed tokens locally,
// and ServiceTokenVerifier accepts the pre-shared service token used by trusted
// internal callers.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingToken        = errors.New("missing authentication token")
	ErrMalformedHeader     = errors.New("authorization header must use the Bearer scheme")
	ErrRejectedToken       = errors.New("token rejected")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidSignature    = errors.New("invalid token signature")
	ErrInvalidClaims       = errors.New("invalid token claims")
	ErrInvalidServiceToken = errors.New("invalid service token")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// Method names reported on a Principal.
const (
	MethodProvider = "provider"
	MethodJWT      = "jwt"
	MethodService  = "service"
)

// Principal is the caller a token was verified for.
type Principal struct {
	Subject string
	Method  string
	Token   string `json:"-"`
}

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (*Principal, error)

// Verify implements Verifier.
func (f VerifierFunc) Verify(ctx context.Context, token string) (*Principal, error) {
	return f(ctx, token)
}

const bearerPrefix = "Bearer "

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMalformedHeader
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// IsUnavailable reports whether err means verification could not be attempted
// rather than the token being bad.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

type contextKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok && p != nil
}
