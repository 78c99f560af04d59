package repositories

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Common repository errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateEntry is returned when trying to create a duplicate entity
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidID is returned when an invalid ID is provided
	ErrInvalidID = errors.New("invalid ID")

	// ErrValidation is returned when entity validation fails
	ErrValidation = errors.New("validation error")

	// ErrTransaction is returned when a transaction operation fails
	ErrTransaction = errors.New("transaction error")

	// ErrConnection is returned when the backend cannot be reached
	ErrConnection = errors.New("store connection error")

	// ErrUnavailable is returned when the primary backend is down and a
	// caller should fall back to the local store
	ErrUnavailable = errors.New("store unavailable")
)

// RepositoryError represents a repository-specific error with additional context
type RepositoryError struct {
	Op      string // Operation that failed
	Entity  string // Entity type
	ID      string // Entity ID (if applicable)
	Err     error  // Underlying error
	Message string // Human-readable message
}

// Error implements the error interface
func (e *RepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.ID != "" {
		return fmt.Sprintf("%s %s operation failed for ID %s: %v", e.Entity, e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("%s %s operation failed: %v", e.Entity, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error
func (e *RepositoryError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// connectionFailureMarkers are driver-level messages that mean the
// backend itself is unreachable rather than the statement being wrong.
// database/sql and mattn/go-sqlite3 expose these only as strings.
var connectionFailureMarkers = []string{
	"database is closed",
	"database is locked",
	"unable to open database file",
	"connection refused",
	"disk I/O error",
}

// isConnectionFailure reports whether err indicates the backend is down
func isConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	msg := err.Error()
	for _, marker := range connectionFailureMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// NewRepositoryError creates a new repository error. Driver-level
// connection failures are chained through ErrConnection so callers can
// fall back to the local store.
func NewRepositoryError(op, entity, id string, err error) *RepositoryError {
	if isConnectionFailure(err) {
		err = fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return &RepositoryError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// NotFoundError creates a "not found" repository error
func NotFoundError(entity, id string) *RepositoryError {
	return &RepositoryError{
		Op:      "get",
		Entity:  entity,
		ID:      id,
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s with ID %s not found", entity, id),
	}
}

// DuplicateError creates a "duplicate entry" repository error
func DuplicateError(entity, field, value string) *RepositoryError {
	return &RepositoryError{
		Op:      "create",
		Entity:  entity,
		Err:     ErrDuplicateEntry,
		Message: fmt.Sprintf("%s with %s '%s' already exists", entity, field, value),
	}
}

// ValidationError creates a "validation" repository error
func ValidationError(entity, id string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      "validate",
		Entity:  entity,
		ID:      id,
		Err:     ErrValidation,
		Message: fmt.Sprintf("validation failed for %s: %v", entity, err),
	}
}

// TransactionError creates a "transaction" repository error
func TransactionError(op string, err error) *RepositoryError {
	underlying := ErrTransaction
	if isConnectionFailure(err) {
		underlying = fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return &RepositoryError{
		Op:      op,
		Entity:  "transaction",
		Err:     underlying,
		Message: fmt.Sprintf("transaction %s failed: %v", op, err),
	}
}

// ConnectionError creates a "connection" repository error
func ConnectionError(err error) *RepositoryError {
	return &RepositoryError{
		Op:      "connect",
		Entity:  "store",
		Err:     ErrConnection,
		Message: fmt.Sprintf("store connection failed: %v", err),
	}
}

// UnavailableError creates an "unavailable" repository error
func UnavailableError(op string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Entity:  "store",
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("store unavailable during %s: %v", op, err),
	}
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate checks if an error is a "duplicate entry" error
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsValidation checks if an error is a "validation" error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error indicates the backend is unreachable
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrConnection)
}
