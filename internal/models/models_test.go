package models

import (
	"strings"
	"testing"
	"time"
)

func TestInvoiceCalculateTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []LineItem
		shippingCost float64
		taxRate      float64
		wantSubtotal float64
		wantTax      float64
		wantTotal    float64
	}{
		{
			name: "taxable items with shipping",
			items: []LineItem{
				{Qty: 2, UnitPrice: 10.00, Taxable: true},
			},
			shippingCost: 5.00,
			taxRate:      8.0,
			wantSubtotal: 20.00,
			wantTax:      1.60,
			wantTotal:    26.60,
		},
		{
			name: "non-taxable items pay no tax",
			items: []LineItem{
				{Qty: 3, UnitPrice: 15.00, Taxable: false},
			},
			shippingCost: 0,
			taxRate:      8.0,
			wantSubtotal: 45.00,
			wantTax:      0,
			wantTotal:    45.00,
		},
		{
			name: "mixed taxable and non-taxable",
			items: []LineItem{
				{Qty: 1, UnitPrice: 100.00, Taxable: true},
				{Qty: 1, UnitPrice: 50.00, Taxable: false},
			},
			shippingCost: 10.00,
			taxRate:      8.0,
			wantSubtotal: 150.00,
			wantTax:      8.00,
			wantTotal:    168.00,
		},
		{
			name:         "empty invoice",
			items:        nil,
			shippingCost: 0,
			taxRate:      8.0,
			wantSubtotal: 0,
			wantTax:      0,
			wantTotal:    0,
		},
		{
			name: "rounding to cents",
			items: []LineItem{
				{Qty: 3, UnitPrice: 3.33, Taxable: true},
			},
			shippingCost: 0,
			taxRate:      8.25,
			wantSubtotal: 9.99,
			wantTax:      0.82,
			wantTotal:    10.81,
		},
		{
			name: "shipping is never taxed",
			items: []LineItem{
				{Qty: 1, UnitPrice: 10.00, Taxable: true},
			},
			shippingCost: 100.00,
			taxRate:      10.0,
			wantSubtotal: 10.00,
			wantTax:      1.00,
			wantTotal:    111.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := NewInvoice()
			inv.Items = tt.items
			inv.ShippingCost = tt.shippingCost
			inv.TaxRate = tt.taxRate
			inv.CalculateTotals()

			if inv.Subtotal != tt.wantSubtotal {
				t.Errorf("Subtotal = %v, want %v", inv.Subtotal, tt.wantSubtotal)
			}
			if inv.Tax != tt.wantTax {
				t.Errorf("Tax = %v, want %v", inv.Tax, tt.wantTax)
			}
			if inv.GrandTotal != tt.wantTotal {
				t.Errorf("GrandTotal = %v, want %v", inv.GrandTotal, tt.wantTotal)
			}
		})
	}
}

func TestInvoiceValidate(t *testing.T) {
	valid := func() *Invoice {
		inv := NewInvoice()
		inv.TaxRate = 8.0
		inv.Items = []LineItem{{Qty: 1, UnitPrice: 10, Taxable: true}}
		inv.CalculateTotals()
		return inv
	}

	tests := []struct {
		name    string
		mutate  func(*Invoice)
		wantErr string
	}{
		{"valid invoice", func(inv *Invoice) {}, ""},
		{"missing ID", func(inv *Invoice) { inv.ID = "" }, "invoice ID is required"},
		{"bad transaction type", func(inv *Invoice) { inv.TransactionType = "refund" }, "invalid transaction type"},
		{"bad status", func(inv *Invoice) { inv.Status = "shipped" }, "invalid status"},
		{"negative tax rate", func(inv *Invoice) { inv.TaxRate = -1 }, "tax rate must be between"},
		{"tax rate over 100", func(inv *Invoice) { inv.TaxRate = 101 }, "tax rate must be between"},
		{"negative shipping", func(inv *Invoice) { inv.ShippingCost = -5 }, "shipping cost cannot be negative"},
		{"negative quantity", func(inv *Invoice) { inv.Items[0].Qty = -1 }, "line item 1"},
		{"tampered grand total", func(inv *Invoice) { inv.GrandTotal = 999 }, "grand total does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := valid()
			tt.mutate(inv)
			err := inv.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestInvoiceSetCustomerSnapshot(t *testing.T) {
	customer := NewCustomer("Acme Fire Protection")
	customer.Email = "ap@acmefire.com"
	customer.Phone = "555-0100"
	customer.AccountsPayableEmail = "payables@acmefire.com"
	customer.BillToAddress = "1 Main St"
	customer.ShipToAddress = "2 Dock Rd"

	inv := NewInvoice()
	inv.SetCustomerSnapshot(customer)

	if inv.CustomerName != "Acme Fire Protection" {
		t.Errorf("CustomerName = %q", inv.CustomerName)
	}
	if inv.AccountsPayableEmail != "payables@acmefire.com" {
		t.Errorf("AccountsPayableEmail = %q", inv.AccountsPayableEmail)
	}

	// Later customer edits must not bleed into the invoice
	customer.Name = "Renamed Co"
	if inv.CustomerName != "Acme Fire Protection" {
		t.Error("invoice customer fields should be a copy, not a reference")
	}
}

func TestCustomerValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Customer)
		wantErr bool
	}{
		{"valid", func(c *Customer) {}, false},
		{"missing ID", func(c *Customer) { c.ID = "" }, true},
		{"blank name", func(c *Customer) { c.Name = "   " }, true},
		{"bad email", func(c *Customer) { c.Email = "not-an-email" }, true},
		{"empty email is fine", func(c *Customer) { c.Email = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCustomer("Acme Fire Protection")
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserPassword(t *testing.T) {
	u := NewUser("jdoe", "John Doe", RoleSalesman)

	if err := u.SetPassword("s3cret"); err != nil {
		t.Fatalf("SetPassword() = %v", err)
	}
	if u.PasswordHash == "s3cret" {
		t.Error("password must not be stored in plaintext")
	}
	if !u.CheckPassword("s3cret") {
		t.Error("CheckPassword should accept the correct password")
	}
	if u.CheckPassword("wrong") {
		t.Error("CheckPassword should reject a wrong password")
	}
	if err := u.SetPassword(""); err == nil {
		t.Error("SetPassword should reject an empty password")
	}
}

func TestUserRedacted(t *testing.T) {
	u := NewUser("jdoe", "John Doe", RoleSalesman)
	if err := u.SetPassword("s3cret"); err != nil {
		t.Fatalf("SetPassword() = %v", err)
	}

	red := u.Redacted()
	if red.PasswordHash != PasswordRedacted {
		t.Errorf("Redacted().PasswordHash = %q, want %q", red.PasswordHash, PasswordRedacted)
	}
	if u.PasswordHash == PasswordRedacted {
		t.Error("Redacted must not modify the original user")
	}
}

func TestUserIsFixed(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleSalesman, false},
		{RoleOffice, true},
		{RoleAdmin, true},
	}
	for _, tt := range tests {
		u := NewUser("u", "U", tt.role)
		if got := u.IsFixed(); got != tt.want {
			t.Errorf("IsFixed() for %s = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestBackupFileName(t *testing.T) {
	ts := time.Date(2025, 3, 14, 6, 22, 3, 0, time.UTC)
	got := BackupFileName(ts)
	want := "fireforce_backup_2025-03-14_1741933323000.json"
	if got != want {
		t.Errorf("BackupFileName() = %q, want %q", got, want)
	}
}

func TestOfficeInfoFieldDifferences(t *testing.T) {
	base := OfficeInfo{CompanyName: "Fire Force", Phone: "555-0100"}
	same := base
	if diffs := base.FieldDifferences(&same); len(diffs) != 0 {
		t.Errorf("FieldDifferences() = %v, want none", diffs)
	}

	other := base
	other.Phone = "555-0199"
	other.Email = "info@fireforce.com"
	diffs := base.FieldDifferences(&other)
	if len(diffs) != 2 {
		t.Fatalf("FieldDifferences() = %v, want 2 entries", diffs)
	}
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	if s.TaxRate != DefaultTaxRate {
		t.Errorf("DefaultSettings().TaxRate = %v, want %v", s.TaxRate, DefaultTaxRate)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	s.TaxRate = 150
	if err := s.Validate(); err == nil {
		t.Error("Validate should reject a tax rate over 100")
	}
}
