package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync/atomic"
)

// DefaultServiceTokenMarker identifies service tokens.
const DefaultServiceTokenMarker = "service-token"

// ServiceTokenVerifier accepts tokens of the form "<...><marker><...>_<secret>"
// where secret matches the configured shared secret. The secret can be swapped
// at runtime.
type ServiceTokenVerifier struct {
	marker string
	secret atomic.Value // string
}

// NewServiceTokenVerifier creates a verifier. An empty marker uses
// DefaultServiceTokenMarker.
func NewServiceTokenVerifier(marker, secret string) *ServiceTokenVerifier {
	if marker == "" {
		marker = DefaultServiceTokenMarker
	}
	v := &ServiceTokenVerifier{marker: marker}
	v.secret.Store(secret)
	return v
}

// SetSecret replaces the shared secret.
func (v *ServiceTokenVerifier) SetSecret(secret string) {
	v.secret.Store(secret)
}

// Matches reports whether token carries the service marker at all. Tokens that
// do are never forwarded to the identity provider.
func (v *ServiceTokenVerifier) Matches(token string) bool {
	return strings.Contains(token, v.marker)
}

// Verify implements Verifier.
func (v *ServiceTokenVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	if !v.Matches(token) {
		return nil, ErrInvalidServiceToken
	}

	secret, _ := v.secret.Load().(string)
	if secret == "" {
		return nil, ErrInvalidServiceToken
	}

	idx := strings.LastIndex(token, "_")
	if idx < 0 {
		return nil, ErrInvalidServiceToken
	}
	suffix := token[idx+1:]
	if subtle.ConstantTimeCompare([]byte(suffix), []byte(secret)) != 1 {
		return nil, ErrInvalidServiceToken
	}

	return &Principal{
		Subject: v.marker,
		Method:  MethodService,
		Token:   token,
	}, nil
}
