package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"datagraph-backend/pkg/api"
)

// Recovery turns a panic into a 500 response and logs it with the stack.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := GetRequestIDFromRequest(r)
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("requestID", requestID),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)

				// Nothing can be sent once the body has started.
				if w.Header().Get("Content-Type") == "" {
					api.ErrorWithRequestID(w, http.StatusInternalServerError, "Internal server error", requestID)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
