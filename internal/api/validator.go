package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"crypto-trader/backend/internal/apperrors"
)

// A single validator instance is shared across requests; constructing one is
// expensive because it caches struct metadata.

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}

// validateRequest checks a payload against the rules in its `validate` field
// tags and converts failures into a Validation category error with a
// readable, client-safe message.
func validateRequest(payload any) error {
	err := getValidator().Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewValidation("request validation failed", map[string]any{
			"cause": err.Error(),
		})
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldErr.Field(), fieldErr.Tag()))
	}
	return apperrors.NewValidation(strings.Join(messages, "; "), nil)
}
