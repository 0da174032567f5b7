package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"datagraph-backend/pkg/api"
)

// Timeout puts a deadline on the request context. Store calls and the identity
// provider call observe it; if the handler returns after the deadline without
// writing a response, a 504 is sent.
func Timeout(timeout time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && ww.Status() == 0 {
				requestID := GetRequestIDFromRequest(r)
				logger.Warn("request timed out",
					zap.String("requestID", requestID),
					zap.String("path", r.URL.Path),
					zap.Duration("timeout", timeout),
				)
				api.ErrorWithRequestID(w, http.StatusGatewayTimeout, "Request timeout", requestID)
			}
		})
	}
}
