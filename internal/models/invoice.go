package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of sales document
type TransactionType string

const (
	TransactionSalesOrder   TransactionType = "sales_order"
	TransactionServiceOrder TransactionType = "service_order"
	TransactionQuote        TransactionType = "quote"
)

// InvoiceStatus represents the workflow state of an invoice
type InvoiceStatus string

const (
	StatusPending   InvoiceStatus = "pending"
	StatusInProcess InvoiceStatus = "in-process"
	StatusCompleted InvoiceStatus = "completed"
)

// LineItem is a single line on an invoice. Line items have no identity
// outside their invoice; they are stored and replaced as a unit with it.
type LineItem struct {
	Mfg         string  `json:"mfg" db:"mfg"`
	PartNumber  string  `json:"partNumber" db:"part_number"`
	Description string  `json:"description" db:"description"`
	Qty         int     `json:"qty" db:"qty"`
	UnitPrice   float64 `json:"unitPrice" db:"unit_price"`
	Taxable     bool    `json:"taxable" db:"taxable"`
}

// Validate validates a line item
func (li *LineItem) Validate() error {
	if li.Qty < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if li.UnitPrice < 0 {
		return fmt.Errorf("unit price cannot be negative")
	}
	return nil
}

// LineTotal returns qty × unit price rounded to two decimals
func (li *LineItem) LineTotal() float64 {
	return roundToTwoDecimals(float64(li.Qty) * li.UnitPrice)
}

// Invoice represents a sales order, service order, or quote.
//
// Customer fields are a denormalized copy taken when the invoice is
// created; later customer edits never change past invoices.
type Invoice struct {
	ID                  string          `json:"id" db:"id" validate:"required"`
	Date                string          `json:"date" db:"date"`
	PONumber            string          `json:"poNumber" db:"po_number"`
	SalesRep            string          `json:"salesRep" db:"sales_rep"`
	TransactionType     TransactionType `json:"transactionType" db:"transaction_type"`
	CustomerName        string          `json:"customerName" db:"customer_name"`
	CustomerEmail       string          `json:"customerEmail,omitempty" db:"customer_email"`
	CustomerPhone       string          `json:"customerPhone,omitempty" db:"customer_phone"`
	AccountsPayableEmail string         `json:"accountsPayableEmail,omitempty" db:"accounts_payable_email"`
	BillToAddress       string          `json:"billToAddress,omitempty" db:"bill_to_address"`
	ShipToAddress       string          `json:"shipToAddress,omitempty" db:"ship_to_address"`
	Items               []LineItem      `json:"items"`
	ShippingCost        float64         `json:"shippingCost" db:"shipping_cost"`
	AdditionalInfo      string          `json:"additionalInfo,omitempty" db:"additional_info"`
	Status              InvoiceStatus   `json:"status" db:"status"`
	TaxRate             float64         `json:"taxRate" db:"tax_rate"`
	Subtotal            float64         `json:"subtotal" db:"subtotal"`
	Tax                 float64         `json:"tax" db:"tax"`
	GrandTotal          float64         `json:"grandTotal" db:"grand_total"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time       `json:"updatedAt" db:"updated_at"`
	Archived            bool            `json:"archived" db:"archived"`
}

// NewInvoice creates a new invoice with generated ID and timestamps
func NewInvoice() *Invoice {
	now := time.Now()
	return &Invoice{
		ID:              uuid.New().String(),
		TransactionType: TransactionSalesOrder,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate validates the invoice data
func (inv *Invoice) Validate() error {
	if inv.ID == "" {
		return fmt.Errorf("invoice ID is required")
	}

	switch inv.TransactionType {
	case TransactionSalesOrder, TransactionServiceOrder, TransactionQuote:
	default:
		return fmt.Errorf("invalid transaction type: %s", inv.TransactionType)
	}

	switch inv.Status {
	case StatusPending, StatusInProcess, StatusCompleted:
	default:
		return fmt.Errorf("invalid status: %s", inv.Status)
	}

	if inv.TaxRate < 0 || inv.TaxRate > 100 {
		return fmt.Errorf("tax rate must be between 0 and 100")
	}

	if inv.ShippingCost < 0 {
		return fmt.Errorf("shipping cost cannot be negative")
	}

	for i := range inv.Items {
		if err := inv.Items[i].Validate(); err != nil {
			return fmt.Errorf("line item %d: %w", i+1, err)
		}
	}

	// Verify totals hold together (small tolerance for rounding)
	expected := roundToTwoDecimals(inv.Subtotal + inv.Tax + inv.ShippingCost)
	if abs(inv.GrandTotal-expected) > 0.01 {
		return fmt.Errorf("grand total does not match subtotal + tax + shipping")
	}

	return nil
}

// CalculateTotals recomputes subtotal, tax, and grand total from the line
// items, shipping cost, and tax rate. Stored totals are never trusted
// independently; every edit goes through here.
func (inv *Invoice) CalculateTotals() {
	var subtotal, taxable float64

	for i := range inv.Items {
		line := float64(inv.Items[i].Qty) * inv.Items[i].UnitPrice
		subtotal += line
		if inv.Items[i].Taxable {
			taxable += line
		}
	}

	inv.Subtotal = roundToTwoDecimals(subtotal)
	inv.Tax = roundToTwoDecimals(taxable * inv.TaxRate / 100)
	inv.GrandTotal = roundToTwoDecimals(inv.Subtotal + inv.Tax + inv.ShippingCost)
}

// SetCustomerSnapshot copies the customer's fields onto the invoice
func (inv *Invoice) SetCustomerSnapshot(customer *Customer) {
	inv.CustomerName = customer.Name
	inv.CustomerEmail = customer.Email
	inv.CustomerPhone = customer.Phone
	inv.AccountsPayableEmail = customer.AccountsPayableEmail
	inv.BillToAddress = customer.BillToAddress
	inv.ShipToAddress = customer.ShipToAddress
}

// IsQuote returns true if the invoice is a quote
func (inv *Invoice) IsQuote() bool {
	return inv.TransactionType == TransactionQuote
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (inv *Invoice) UpdateTimestamp() {
	inv.UpdatedAt = time.Now()
}

// roundToTwoDecimals rounds a monetary amount to cents
func roundToTwoDecimals(value float64) float64 {
	if value < 0 {
		return float64(int64(value*100-0.5)) / 100
	}
	return float64(int64(value*100+0.5)) / 100
}

// abs returns the absolute value of a float64
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
