package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// InvoiceRepository implements the repositories.InvoiceRepository
// interface for SQLite. Line items live in their own table but are
// always written and read together with the invoice header.
type InvoiceRepository struct {
	baseRepository
}

// NewInvoiceRepository creates a new SQLite invoice repository
func NewInvoiceRepository(db *sql.DB, logger *logrus.Logger) repositories.InvoiceRepository {
	return &InvoiceRepository{
		baseRepository: newBaseRepository(db, "invoices", logger),
	}
}

const invoiceColumns = `
	id, date, po_number, sales_rep, transaction_type,
	customer_name, customer_email, customer_phone, accounts_payable_email,
	bill_to_address, ship_to_address, shipping_cost, additional_info,
	status, tax_rate, subtotal, tax, grand_total,
	created_at, updated_at, archived`

// Create creates a new invoice with its line items
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return repositories.ValidationError("invoice", invoice.ID, err)
	}

	return r.withTransaction(ctx, "create", func(tx *sql.Tx) error {
		query := `
			INSERT INTO invoices (` + invoiceColumns + `
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.ExecContext(ctx, query,
			invoice.ID,
			invoice.Date,
			invoice.PONumber,
			invoice.SalesRep,
			invoice.TransactionType,
			invoice.CustomerName,
			invoice.CustomerEmail,
			invoice.CustomerPhone,
			invoice.AccountsPayableEmail,
			invoice.BillToAddress,
			invoice.ShipToAddress,
			invoice.ShippingCost,
			invoice.AdditionalInfo,
			invoice.Status,
			invoice.TaxRate,
			invoice.Subtotal,
			invoice.Tax,
			invoice.GrandTotal,
			invoice.CreatedAt,
			invoice.UpdatedAt,
			invoice.Archived,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repositories.DuplicateError("invoice", "id", invoice.ID)
			}
			return repositories.NewRepositoryError("create", "invoice", invoice.ID, err)
		}

		return r.insertItems(ctx, tx, invoice.ID, invoice.Items)
	})
}

// GetByID retrieves an invoice by ID, line items included
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	row := r.executeQueryRow(ctx, "get_by_id", query, id)

	invoice, err := scanInvoice(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("invoice", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "invoice", id, err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.Items = items

	return invoice, nil
}

// Update updates an invoice; line items are replaced wholesale
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return repositories.ValidationError("invoice", invoice.ID, err)
	}

	return r.withTransaction(ctx, "update", func(tx *sql.Tx) error {
		query := `
			UPDATE invoices
			SET date = ?, po_number = ?, sales_rep = ?, transaction_type = ?,
				customer_name = ?, customer_email = ?, customer_phone = ?,
				accounts_payable_email = ?, bill_to_address = ?, ship_to_address = ?,
				shipping_cost = ?, additional_info = ?, status = ?, tax_rate = ?,
				subtotal = ?, tax = ?, grand_total = ?, updated_at = ?, archived = ?
			WHERE id = ?`

		result, err := tx.ExecContext(ctx, query,
			invoice.Date,
			invoice.PONumber,
			invoice.SalesRep,
			invoice.TransactionType,
			invoice.CustomerName,
			invoice.CustomerEmail,
			invoice.CustomerPhone,
			invoice.AccountsPayableEmail,
			invoice.BillToAddress,
			invoice.ShipToAddress,
			invoice.ShippingCost,
			invoice.AdditionalInfo,
			invoice.Status,
			invoice.TaxRate,
			invoice.Subtotal,
			invoice.Tax,
			invoice.GrandTotal,
			invoice.UpdatedAt,
			invoice.Archived,
			invoice.ID,
		)
		if err != nil {
			return repositories.NewRepositoryError("update", "invoice", invoice.ID, err)
		}
		if err := r.checkRowsAffected(result, "update", invoice.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = ?", invoice.ID); err != nil {
			return repositories.NewRepositoryError("update", "invoice_items", invoice.ID, err)
		}

		return r.insertItems(ctx, tx, invoice.ID, invoice.Items)
	})
}

// Delete deletes an invoice and its line items
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	return r.withTransaction(ctx, "delete", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = ?", id); err != nil {
			return repositories.NewRepositoryError("delete", "invoice_items", id, err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
		if err != nil {
			return repositories.NewRepositoryError("delete", "invoice", id, err)
		}
		return r.checkRowsAffected(result, "delete", id)
	})
}

// List retrieves invoices with optional filters. Filter keys map
// directly to invoice columns (status, transaction_type, archived,
// sales_rep, customer_name).
func (r *InvoiceRepository) List(ctx context.Context, filters map[string]interface{}) ([]*models.Invoice, error) {
	where, args := r.buildWhereClause(filters)
	query := fmt.Sprintf("SELECT %s FROM invoices %s ORDER BY created_at DESC", invoiceColumns, where)

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "invoice", "", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "invoice", "", err)
	}

	for _, invoice := range invoices {
		items, err := r.loadItems(ctx, invoice.ID)
		if err != nil {
			return nil, err
		}
		invoice.Items = items
	}

	return invoices, nil
}

// Count returns the number of invoices matching the filters
func (r *InvoiceRepository) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	where, args := r.buildWhereClause(filters)
	query := fmt.Sprintf("SELECT COUNT(*) FROM invoices %s", where)

	var count int64
	row := r.executeQueryRow(ctx, "count", query, args...)
	if err := row.Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", "invoice", "", err)
	}
	return count, nil
}

// DeleteAll removes every invoice and line item
func (r *InvoiceRepository) DeleteAll(ctx context.Context) error {
	return r.withTransaction(ctx, "delete_all", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_items"); err != nil {
			return repositories.NewRepositoryError("delete_all", "invoice_items", "", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM invoices"); err != nil {
			return repositories.NewRepositoryError("delete_all", "invoice", "", err)
		}
		return nil
	})
}

func (r *InvoiceRepository) insertItems(ctx context.Context, tx *sql.Tx, invoiceID string, items []models.LineItem) error {
	query := `
		INSERT INTO invoice_items (
			invoice_id, position, mfg, part_number, description, qty, unit_price, taxable
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for i, item := range items {
		_, err := tx.ExecContext(ctx, query,
			invoiceID, i, item.Mfg, item.PartNumber, item.Description,
			item.Qty, item.UnitPrice, item.Taxable,
		)
		if err != nil {
			return repositories.NewRepositoryError("create", "invoice_items", invoiceID, err)
		}
	}
	return nil
}

func (r *InvoiceRepository) loadItems(ctx context.Context, invoiceID string) ([]models.LineItem, error) {
	query := `
		SELECT mfg, part_number, description, qty, unit_price, taxable
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position`

	rows, err := r.executeQuery(ctx, "load_items", query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.Mfg, &item.PartNumber, &item.Description,
			&item.Qty, &item.UnitPrice, &item.Taxable); err != nil {
			return nil, repositories.NewRepositoryError("load_items", "invoice_items", invoiceID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("load_items", "invoice_items", invoiceID, err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := row.Scan(
		&invoice.ID,
		&invoice.Date,
		&invoice.PONumber,
		&invoice.SalesRep,
		&invoice.TransactionType,
		&invoice.CustomerName,
		&invoice.CustomerEmail,
		&invoice.CustomerPhone,
		&invoice.AccountsPayableEmail,
		&invoice.BillToAddress,
		&invoice.ShipToAddress,
		&invoice.ShippingCost,
		&invoice.AdditionalInfo,
		&invoice.Status,
		&invoice.TaxRate,
		&invoice.Subtotal,
		&invoice.Tax,
		&invoice.GrandTotal,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
		&invoice.Archived,
	)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}
