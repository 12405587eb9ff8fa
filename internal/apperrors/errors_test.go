package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"crypto-trader/backend/internal/apperrors"
)

func TestCategoryLabels(t *testing.T) {
	assert.Equal(t, "Database error", apperrors.Database.String())
	assert.Equal(t, "Authentication error", apperrors.Authentication.String())
	assert.Equal(t, "Validation error", apperrors.Validation.String())
	assert.Equal(t, "External service error", apperrors.ExternalService.String())
}

func TestConstructors(t *testing.T) {
	details := map[string]any{"field": "username"}

	err := apperrors.NewValidation("bad field", details)
	assert.Equal(t, apperrors.Validation, err.Category)
	assert.Equal(t, "bad field", err.Message)
	assert.Equal(t, details, err.Details)
	assert.Equal(t, "bad field", err.Error())

	extErr := apperrors.NewExternalService("supabase", "connection refused", nil)
	assert.Equal(t, apperrors.ExternalService, extErr.Category)
	assert.Equal(t, "supabase", extErr.Service)
	// The service name prefixes the message, mirroring how the fault reads in logs.
	assert.Equal(t, "supabase: connection refused", extErr.Error())
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("login failed: %w", apperrors.NewAuthentication("bad credentials", nil))

	var appErr *apperrors.Error
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, apperrors.Authentication, appErr.Category)
	assert.Equal(t, "bad credentials", appErr.Message)
}
