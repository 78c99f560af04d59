package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"fireforce-invoice-api/internal/repositories"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// isValidationError checks if an error is a validation error
func isValidationError(err error) bool {
	if repositories.IsValidation(err) {
		return true
	}
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// isNotFoundError checks if an error is a not found error
func isNotFoundError(err error) bool {
	return repositories.IsNotFound(err)
}

// isDuplicateError checks if an error is a duplicate error
func isDuplicateError(err error) bool {
	return repositories.IsDuplicate(err)
}
