package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"datagraph-backend/internal/infrastructure/observability"
	"datagraph-backend/pkg/api"
	"datagraph-backend/pkg/auth"
)

// Authenticator guards routes with bearer token checks. User tokens go to the
// configured verifier; tokens carrying the service marker are only accepted
// on routes wrapped with AllowService and are never sent to the verifier.
type Authenticator struct {
	verifier  auth.Verifier
	service   *auth.ServiceTokenVerifier
	collector *observability.Collector
	logger    *zap.Logger
}

// NewAuthenticator creates an Authenticator. collector may be nil.
func NewAuthenticator(verifier auth.Verifier, service *auth.ServiceTokenVerifier, collector *observability.Collector, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		verifier:  verifier,
		service:   service,
		collector: collector,
		logger:    logger.Named("auth"),
	}
}

// Require accepts user tokens only.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return a.handler(next, false)
}

// AllowService accepts user tokens and service tokens.
func (a *Authenticator) AllowService(next http.Handler) http.Handler {
	return a.handler(next, true)
}

func (a *Authenticator) handler(next http.Handler, allowService bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ParseBearer(r.Header.Get("Authorization"))
		if err != nil {
			a.reject(w, r, "none", err)
			return
		}

		var principal *auth.Principal
		method := auth.MethodProvider
		if a.service != nil && a.service.Matches(token) {
			method = auth.MethodService
			if !allowService {
				a.reject(w, r, method, auth.ErrInvalidServiceToken)
				return
			}
			principal, err = a.service.Verify(r.Context(), token)
		} else {
			principal, err = a.verifier.Verify(r.Context(), token)
		}
		if err != nil {
			a.reject(w, r, method, err)
			return
		}

		a.collector.RecordAuth(principal.Method, "accepted")
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, method string, err error) {
	requestID := GetRequestIDFromRequest(r)

	if auth.IsUnavailable(err) {
		a.collector.RecordAuth(method, "unavailable")
		a.logger.Error("token verification unavailable",
			zap.String("requestID", requestID),
			zap.Error(err),
		)
		api.ErrorWithRequestID(w, http.StatusServiceUnavailable, "Authorization service unavailable", requestID)
		return
	}

	a.collector.RecordAuth(method, "rejected")
	a.logger.Debug("request rejected",
		zap.String("requestID", requestID),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	message := "Unauthorized"
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		message = "Authorization header required"
	case errors.Is(err, auth.ErrMalformedHeader):
		message = "Authorization header must be 'Bearer <token>'"
	case errors.Is(err, auth.ErrExpiredToken):
		message = "Token has expired"
	}
	api.ErrorWithRequestID(w, http.StatusUnauthorized, message, requestID)
}
