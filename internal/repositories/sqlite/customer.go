package sqlite

import (
	"context"
	"database/sql"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// CustomerRepository implements the repositories.CustomerRepository
// interface for SQLite
type CustomerRepository struct {
	baseRepository
}

// NewCustomerRepository creates a new SQLite customer repository
func NewCustomerRepository(db *sql.DB, logger *logrus.Logger) repositories.CustomerRepository {
	return &CustomerRepository{
		baseRepository: newBaseRepository(db, "customers", logger),
	}
}

const customerColumns = `
	id, name, email, phone, accounts_payable_email,
	bill_to_address, ship_to_address, created_at, updated_at`

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return repositories.ValidationError("customer", customer.ID, err)
	}

	query := `
		INSERT INTO customers (` + customerColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.AccountsPayableEmail,
		customer.BillToAddress,
		customer.ShipToAddress,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.DuplicateError("customer", "id", customer.ID)
		}
		return err
	}

	return nil
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	row := r.executeQueryRow(ctx, "get_by_id", query, id)

	customer, err := scanCustomer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("customer", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "customer", id, err)
	}

	return customer, nil
}

// Update updates an existing customer
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return repositories.ValidationError("customer", customer.ID, err)
	}

	query := `
		UPDATE customers
		SET name = ?, email = ?, phone = ?, accounts_payable_email = ?,
			bill_to_address = ?, ship_to_address = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.AccountsPayableEmail,
		customer.BillToAddress,
		customer.ShipToAddress,
		customer.UpdatedAt,
		customer.ID,
	)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", customer.ID)
}

// Delete deletes a customer by ID
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	result, err := r.executeExec(ctx, "delete", "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", id)
}

// List retrieves all customers ordered by name
func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY name`

	rows, err := r.executeQuery(ctx, "list", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// Search matches against name, email, and phone
func (r *CustomerRepository) Search(ctx context.Context, query string, limit int) ([]*models.Customer, error) {
	if limit <= 0 {
		limit = 50
	}

	sqlQuery := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE name LIKE ? OR email LIKE ? OR phone LIKE ?
		ORDER BY name
		LIMIT ?`

	pattern := "%" + query + "%"
	rows, err := r.executeQuery(ctx, "search", sqlQuery, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// Count returns the total number of customers
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	row := r.executeQueryRow(ctx, "count", "SELECT COUNT(*) FROM customers")
	if err := row.Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", "customer", "", err)
	}
	return count, nil
}

// DeleteAll removes every customer
func (r *CustomerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.executeExec(ctx, "delete_all", "DELETE FROM customers")
	return err
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.AccountsPayableEmail,
		&customer.BillToAddress,
		&customer.ShipToAddress,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func collectCustomers(rows *sql.Rows) ([]*models.Customer, error) {
	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("scan", "customer", "", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("scan", "customer", "", err)
	}
	return customers, nil
}
