package sqlite

import (
	"context"
	"database/sql"

	"fireforce-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Store bundles the SQLite repositories behind the repositories.Store
// interface. This is the primary backend; the localstore package holds
// the offline fallback.
type Store struct {
	db        *sql.DB
	logger    *logrus.Logger
	invoices  repositories.InvoiceRepository
	customers repositories.CustomerRepository
	users     repositories.UserRepository
	settings  repositories.SettingsRepository
	state     repositories.StateRepository
}

// NewStore creates a Store over an open database handle
func NewStore(db *sql.DB, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		db:        db,
		logger:    logger,
		invoices:  NewInvoiceRepository(db, logger),
		customers: NewCustomerRepository(db, logger),
		users:     NewUserRepository(db, logger),
		settings:  NewSettingsRepository(db, logger),
		state:     NewStateRepository(db, logger),
	}
}

// Invoices returns the invoice repository
func (s *Store) Invoices() repositories.InvoiceRepository {
	return s.invoices
}

// Customers returns the customer repository
func (s *Store) Customers() repositories.CustomerRepository {
	return s.customers
}

// Users returns the user repository
func (s *Store) Users() repositories.UserRepository {
	return s.users
}

// Settings returns the settings repository
func (s *Store) Settings() repositories.SettingsRepository {
	return s.settings
}

// State returns the state repository
func (s *Store) State() repositories.StateRepository {
	return s.state
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return repositories.ConnectionError(err)
	}
	return nil
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}
