package models

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether the string looks like an email address
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateRequired checks that a required string field is non-blank
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateNonNegative checks that a numeric field is not negative
func ValidateNonNegative(field string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s cannot be negative", field)
	}
	return nil
}
