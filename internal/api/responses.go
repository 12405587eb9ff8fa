package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"crypto-trader/backend/internal/apperrors"
)

// This file contains the shared response DTOs and the centralized mapping
// from typed application errors to HTTP responses. The exact field names and
// status codes below are a compatibility contract for clients.

// ErrorResponse is the standard JSON body for a classified error. Details is
// a plain map so an absent mapping serializes as JSON null rather than being
// dropped; clients rely on the key always being present.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Service string         `json:"service,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// serverErrorResponse is the deliberately generic body for unclassified
// faults. It carries no details field at all: internals stay in the log.
type serverErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusResponse is a generic body for status-style endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

// MessageResponse is a generic body for informational endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// httpStatus maps each error category to its HTTP status code.
// The mapping is total over the closed category set.
func httpStatus(category apperrors.Category) int {
	switch category {
	case apperrors.Database:
		return http.StatusInternalServerError
	case apperrors.Authentication:
		return http.StatusUnauthorized
	case apperrors.Validation:
		return http.StatusUnprocessableEntity
	case apperrors.ExternalService:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// logError writes the log line for a classified error at the severity its
// category demands. Database and external-service faults are operational
// problems, authentication failures are suspicious but routine, and
// validation failures are ordinary client mistakes.
func logError(logger *zap.Logger, appErr *apperrors.Error) {
	fields := []zap.Field{zap.String("message", appErr.Message)}
	if appErr.Service != "" {
		fields = append(fields, zap.String("service", appErr.Service))
	}
	if appErr.Details != nil {
		fields = append(fields, zap.Any("details", appErr.Details))
	}

	switch appErr.Category {
	case apperrors.Database, apperrors.ExternalService:
		logger.Error(appErr.Category.String(), fields...)
	case apperrors.Authentication:
		logger.Warn(appErr.Category.String(), fields...)
	case apperrors.Validation:
		logger.Info(appErr.Category.String(), fields...)
	default:
		logger.Error(appErr.Category.String(), fields...)
	}
}

// respondWithError converts any error into an HTTP response. Classified
// errors get their category's status, label and body; everything else falls
// through to a generic 500 whose body never exposes the underlying error.
// The log line is always written before the response.
func respondWithError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logger.Error("Unhandled error", zap.Error(err), zap.Stack("stacktrace"))
		respondWithJSON(w, logger, http.StatusInternalServerError, serverErrorResponse{
			Error:   "Server error",
			Message: "An unexpected error occurred",
		})
		return
	}

	logError(logger, appErr)
	respondWithJSON(w, logger, httpStatus(appErr.Category), ErrorResponse{
		Error:   appErr.Category.String(),
		Service: appErr.Service,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// respondWithJSON marshals a payload and writes it with the given status
// code. A marshal failure is a programming error and degrades to a plain
// 500.
func respondWithJSON(w http.ResponseWriter, logger *zap.Logger, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		logger.Error("Failed to write JSON response", zap.Error(err))
	}
}
