// Package handlers translates HTTP requests into repository calls and maps the
// results, or the errors from pkg/errors, onto status codes.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"datagraph-backend/internal/middleware"
	"datagraph-backend/pkg/api"
	appErrors "datagraph-backend/pkg/errors"
)

// handleServiceError converts service errors to appropriate HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	requestID := middleware.GetRequestIDFromRequest(r)

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("request deadline exceeded", zap.String("requestID", requestID), zap.Error(err))
		api.ErrorWithRequestID(w, http.StatusGatewayTimeout, "Request timeout", requestID)
		return
	}

	status := appErrors.HTTPStatus(err)
	var message string
	switch appErrors.TypeOf(err) {
	case appErrors.ErrorTypeValidation, appErrors.ErrorTypeNotFound:
		logger.Debug("request failed", zap.String("requestID", requestID), zap.Int("status", status), zap.Error(err))
		message = clientMessage(err)
	case appErrors.ErrorTypeUnavailable:
		logger.Warn("dependency unavailable", zap.String("requestID", requestID), zap.Error(err))
		message = "Service temporarily unavailable"
	default:
		// Full details stay in the log.
		logger.Error("internal error", zap.String("requestID", requestID), zap.Error(err))
		message = "An internal error occurred"
	}

	api.ErrorWithRequestID(w, status, message, requestID)
}

// clientMessage returns the AppError message without the type prefix.
func clientMessage(err error) string {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func validationError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, message string) {
	handleServiceError(w, r, logger, appErrors.NewValidation(message))
}
