package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a user role
type Role string

const (
	RoleSalesman Role = "salesman"
	RoleOffice   Role = "office"
	RoleAdmin    Role = "admin"
)

// PasswordRedacted is the marker substituted for credentials in exports
const PasswordRedacted = "***ENCRYPTED***"

// User represents an application user. The office and admin accounts are
// fixed: they come from configuration and are immune to deletion and to
// restore-from-backup.
type User struct {
	ID           string    `json:"id" db:"id" validate:"required"`
	Username     string    `json:"username" db:"username" validate:"required"`
	Name         string    `json:"name" db:"name" validate:"required"`
	Email        string    `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Role         Role      `json:"role" db:"role" validate:"required,oneof=salesman office admin"`
	PasswordHash string    `json:"password,omitempty" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// NewUser creates a new user with generated ID and timestamps
func NewUser(username, name string, role Role) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New().String(),
		Username:  username,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the user data
func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}

	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("user name is required")
	}

	switch u.Role {
	case RoleSalesman, RoleOffice, RoleAdmin:
	default:
		return fmt.Errorf("invalid role: %s", u.Role)
	}

	if u.Email != "" && !IsValidEmail(u.Email) {
		return fmt.Errorf("invalid email format: %s", u.Email)
	}

	return nil
}

// SetPassword hashes and stores the given plaintext password
func (u *User) SetPassword(plaintext string) error {
	if plaintext == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares a plaintext password against the stored hash
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// IsFixed returns true for accounts that business rules forbid deleting
// or overwriting via restore
func (u *User) IsFixed() bool {
	return u.Role == RoleOffice || u.Role == RoleAdmin
}

// Redacted returns a copy of the user with the credential replaced by the
// redaction marker
func (u *User) Redacted() User {
	out := *u
	out.PasswordHash = PasswordRedacted
	return out
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (u *User) UpdateTimestamp() {
	u.UpdatedAt = time.Now()
}
