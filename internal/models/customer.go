package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer represents a customer account. Customers have a lifecycle
// independent of invoices; invoices carry a copy of these fields, not a
// reference.
type Customer struct {
	ID                   string    `json:"id" db:"id" validate:"required"`
	Name                 string    `json:"name" db:"name" validate:"required"`
	Email                string    `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Phone                string    `json:"phone,omitempty" db:"phone"`
	AccountsPayableEmail string    `json:"accountsPayableEmail,omitempty" db:"accounts_payable_email"`
	BillToAddress        string    `json:"billToAddress,omitempty" db:"bill_to_address"`
	ShipToAddress        string    `json:"shipToAddress,omitempty" db:"ship_to_address"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" db:"updated_at"`
}

// NewCustomer creates a new customer with generated ID and timestamps
func NewCustomer(name string) *Customer {
	now := time.Now()
	return &Customer{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the customer data
func (c *Customer) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("customer ID is required")
	}

	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required")
	}

	if c.Email != "" && !IsValidEmail(c.Email) {
		return fmt.Errorf("invalid email format: %s", c.Email)
	}

	return nil
}

// GetSearchableText returns text that can be used for searching
func (c *Customer) GetSearchableText() string {
	parts := []string{c.Name}
	if c.Email != "" {
		parts = append(parts, c.Email)
	}
	if c.Phone != "" {
		parts = append(parts, c.Phone)
	}
	return strings.Join(parts, " ")
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (c *Customer) UpdateTimestamp() {
	c.UpdatedAt = time.Now()
}
