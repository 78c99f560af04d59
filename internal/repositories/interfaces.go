package repositories

import (
	"context"

	"fireforce-invoice-api/internal/models"
)

// InvoiceRepository defines operations for invoice persistence. An
// invoice and its line items are written and replaced as a unit.
type InvoiceRepository interface {
	// Create creates a new invoice with its line items
	Create(ctx context.Context, invoice *models.Invoice) error

	// GetByID retrieves an invoice by its ID, line items included
	GetByID(ctx context.Context, id string) (*models.Invoice, error)

	// Update updates an invoice; its line items are replaced wholesale
	Update(ctx context.Context, invoice *models.Invoice) error

	// Delete deletes an invoice and its line items
	Delete(ctx context.Context, id string) error

	// List retrieves invoices with optional filters
	List(ctx context.Context, filters map[string]interface{}) ([]*models.Invoice, error)

	// Count returns the number of invoices matching the filters
	Count(ctx context.Context, filters map[string]interface{}) (int64, error)

	// Exists checks if an invoice with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)

	// DeleteAll removes every invoice and line item
	DeleteAll(ctx context.Context) error
}

// CustomerRepository defines operations for customer persistence
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *models.Customer) error

	// GetByID retrieves a customer by its ID
	GetByID(ctx context.Context, id string) (*models.Customer, error)

	// Update updates an existing customer
	Update(ctx context.Context, customer *models.Customer) error

	// Delete deletes a customer by its ID
	Delete(ctx context.Context, id string) error

	// List retrieves all customers
	List(ctx context.Context) ([]*models.Customer, error)

	// Search matches against name, email, and phone
	Search(ctx context.Context, query string, limit int) ([]*models.Customer, error)

	// Count returns the total number of customers
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes every customer
	DeleteAll(ctx context.Context) error
}

// UserRepository defines operations for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by its ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Update updates an existing user
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user by its ID
	Delete(ctx context.Context, id string) error

	// List retrieves all users
	List(ctx context.Context) ([]*models.User, error)

	// ListByRole retrieves users with the given role
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)

	// DeleteByRole removes every user with the given role
	DeleteByRole(ctx context.Context, role models.Role) error

	// Count returns the total number of users
	Count(ctx context.Context) (int64, error)
}

// SettingsRepository manages the single settings record
type SettingsRepository interface {
	// Get retrieves the settings, or defaults if none have been saved
	Get(ctx context.Context) (*models.Settings, error)

	// Save creates or replaces the settings record
	Save(ctx context.Context, settings *models.Settings) error
}

// StateRepository is a small key-value store for operational state such
// as scheduler timestamps and backup history
type StateRepository interface {
	// Get retrieves the value for a key; ErrNotFound if absent
	Get(ctx context.Context, key string) (string, error)

	// Set creates or replaces the value for a key
	Set(ctx context.Context, key, value string) error

	// Delete removes a key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}

// Store aggregates the per-entity repositories behind one backend
type Store interface {
	Invoices() InvoiceRepository
	Customers() CustomerRepository
	Users() UserRepository
	Settings() SettingsRepository
	State() StateRepository

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
