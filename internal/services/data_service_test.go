package services

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"
	"fireforce-invoice-api/internal/repositories/sqlite"
)

func seedCustomer(t *testing.T, store *mockStore) *models.Customer {
	t.Helper()
	customer := models.NewCustomer("Acme Fire Protection")
	customer.Email = "ap@acmefire.com"
	customer.Phone = "555-0100"
	customer.BillToAddress = "1 Main St"
	if err := store.Customers().Create(context.Background(), customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	primary := newMockStore()
	customer := seedCustomer(t, primary)
	svc := NewDataService(primary, newMockStore(), nil)

	taxRate := 8.0
	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		CustomerID:   customer.ID,
		Items:        []models.LineItem{{Qty: 2, UnitPrice: 10, Taxable: true}},
		ShippingCost: 5,
		TaxRate:      &taxRate,
	})
	if err != nil {
		t.Fatalf("CreateInvoice() = %v", err)
	}

	if invoice.Subtotal != 20.00 || invoice.Tax != 1.60 || invoice.GrandTotal != 26.60 {
		t.Errorf("totals = %v/%v/%v, want 20/1.60/26.60",
			invoice.Subtotal, invoice.Tax, invoice.GrandTotal)
	}
	if invoice.CustomerName != "Acme Fire Protection" {
		t.Errorf("CustomerName = %q", invoice.CustomerName)
	}
	if invoice.Status != models.StatusPending {
		t.Errorf("Status = %q, want pending", invoice.Status)
	}
}

func TestCreateInvoiceUsesSettingsTaxRate(t *testing.T) {
	primary := newMockStore()
	customer := seedCustomer(t, primary)
	if err := primary.Settings().Save(context.Background(), &models.Settings{TaxRate: 10}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	svc := NewDataService(primary, newMockStore(), nil)

	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		CustomerID: customer.ID,
		Items:      []models.LineItem{{Qty: 1, UnitPrice: 100, Taxable: true}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice() = %v", err)
	}
	if invoice.TaxRate != 10 {
		t.Errorf("TaxRate = %v, want 10 from settings", invoice.TaxRate)
	}
	if invoice.Tax != 10.00 {
		t.Errorf("Tax = %v, want 10.00", invoice.Tax)
	}
}

func TestUpdateInvoicePartial(t *testing.T) {
	primary := newMockStore()
	customer := seedCustomer(t, primary)
	svc := NewDataService(primary, newMockStore(), nil)

	taxRate := 8.0
	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		CustomerID: customer.ID,
		PONumber:   "PO-100",
		Items:      []models.LineItem{{Qty: 2, UnitPrice: 10, Taxable: true}},
		TaxRate:    &taxRate,
	})
	if err != nil {
		t.Fatalf("CreateInvoice() = %v", err)
	}

	status := models.StatusCompleted
	updated, err := svc.UpdateInvoice(context.Background(), invoice.ID, &UpdateInvoiceRequest{
		Status: &status,
	})
	if err != nil {
		t.Fatalf("UpdateInvoice() = %v", err)
	}

	if updated.Status != models.StatusCompleted {
		t.Errorf("Status = %q", updated.Status)
	}
	if updated.PONumber != "PO-100" {
		t.Errorf("PONumber = %q, fields not named in the request must not change", updated.PONumber)
	}
	if len(updated.Items) != 1 {
		t.Errorf("Items = %d, want untouched", len(updated.Items))
	}
}

func TestUpdateInvoiceReplacesItemsAndRecomputes(t *testing.T) {
	primary := newMockStore()
	customer := seedCustomer(t, primary)
	svc := NewDataService(primary, newMockStore(), nil)

	taxRate := 8.0
	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		CustomerID: customer.ID,
		Items:      []models.LineItem{{Qty: 2, UnitPrice: 10, Taxable: true}},
		TaxRate:    &taxRate,
	})
	if err != nil {
		t.Fatalf("CreateInvoice() = %v", err)
	}

	newItems := []models.LineItem{{Qty: 1, UnitPrice: 50, Taxable: false}}
	updated, err := svc.UpdateInvoice(context.Background(), invoice.ID, &UpdateInvoiceRequest{
		Items: &newItems,
	})
	if err != nil {
		t.Fatalf("UpdateInvoice() = %v", err)
	}

	if updated.Subtotal != 50 || updated.Tax != 0 || updated.GrandTotal != 50 {
		t.Errorf("totals = %v/%v/%v, want 50/0/50",
			updated.Subtotal, updated.Tax, updated.GrandTotal)
	}
}

func TestFallbackToLocalOnConnectionError(t *testing.T) {
	primary := newMockStore()
	local := newMockStore()
	seedCustomer(t, local)

	primary.failErr = repositories.ConnectionError(context.DeadlineExceeded)
	svc := NewDataService(primary, local, nil)

	customers, err := svc.ListCustomers(context.Background())
	if err != nil {
		t.Fatalf("ListCustomers() = %v", err)
	}
	if len(customers) != 1 {
		t.Errorf("ListCustomers() = %d customers from local store", len(customers))
	}
	if svc.Mode() != ModeLocal {
		t.Errorf("Mode() = %q, want local after fallback", svc.Mode())
	}

	// Later operations stay on the local store
	if _, err := svc.ListCustomers(context.Background()); err != nil {
		t.Errorf("ListCustomers() after fallback = %v", err)
	}
}

// Same fallback, but with the real SQLite backend as the primary. A
// dead database handle must read as unavailable all the way up.
func TestFallbackWhenDatabaseHandleDies(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open() = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	local := newMockStore()
	seedCustomer(t, local)

	svc := NewDataService(sqlite.NewStore(db, nil), local, nil)

	data, err := svc.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() = %v", err)
	}
	if len(data.Customers) != 1 {
		t.Errorf("LoadAll() customers = %d, want 1 from the local store", len(data.Customers))
	}
	if svc.Mode() != ModeLocal {
		t.Errorf("Mode() = %q, want local after the database went away", svc.Mode())
	}
}

func TestNoFallbackOnOrdinaryErrors(t *testing.T) {
	primary := newMockStore()
	local := newMockStore()
	seedCustomer(t, local)
	svc := NewDataService(primary, local, nil)

	_, err := svc.GetCustomer(context.Background(), "does-not-exist")
	if !repositories.IsNotFound(err) {
		t.Errorf("GetCustomer() = %v, want not found", err)
	}
	if svc.Mode() != ModeRemote {
		t.Errorf("Mode() = %q, a not-found must not trigger fallback", svc.Mode())
	}
}

func TestDeleteUserProtectsFixedAccounts(t *testing.T) {
	primary := newMockStore()
	office := models.NewUser("office", "Office", models.RoleOffice)
	if err := primary.Users().Create(context.Background(), office); err != nil {
		t.Fatalf("seed office user: %v", err)
	}
	svc := NewDataService(primary, newMockStore(), nil)

	err := svc.DeleteUser(context.Background(), office.ID)
	if !repositories.IsValidation(err) {
		t.Errorf("DeleteUser(office) = %v, want validation error", err)
	}

	sales, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Username: "jdoe",
		Name:     "John Doe",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("CreateUser() = %v", err)
	}
	if sales.Role != models.RoleSalesman {
		t.Errorf("created role = %q, want salesman", sales.Role)
	}
	if err := svc.DeleteUser(context.Background(), sales.ID); err != nil {
		t.Errorf("DeleteUser(salesman) = %v", err)
	}
}

func TestInvoiceSurvivesCustomerDeletion(t *testing.T) {
	primary := newMockStore()
	customer := seedCustomer(t, primary)
	svc := NewDataService(primary, newMockStore(), nil)

	taxRate := 8.0
	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		CustomerID: customer.ID,
		Items:      []models.LineItem{{Qty: 1, UnitPrice: 10, Taxable: true}},
		TaxRate:    &taxRate,
	})
	if err != nil {
		t.Fatalf("CreateInvoice() = %v", err)
	}

	if err := svc.DeleteCustomer(context.Background(), customer.ID); err != nil {
		t.Fatalf("DeleteCustomer() = %v", err)
	}

	got, err := svc.GetInvoice(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice() = %v", err)
	}
	if got.CustomerName != "Acme Fire Protection" {
		t.Errorf("CustomerName = %q after customer deletion", got.CustomerName)
	}
}

func TestLoadAll(t *testing.T) {
	primary := newMockStore()
	customer := seedCustomer(t, primary)
	if err := primary.Users().Create(context.Background(), models.NewUser("jdoe", "John Doe", models.RoleSalesman)); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc := NewDataService(primary, newMockStore(), nil)

	taxRate := 8.0
	if _, err := svc.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		CustomerID: customer.ID,
		Items:      []models.LineItem{{Qty: 1, UnitPrice: 10, Taxable: true}},
		TaxRate:    &taxRate,
	}); err != nil {
		t.Fatalf("CreateInvoice() = %v", err)
	}

	data, err := svc.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() = %v", err)
	}
	if len(data.Invoices) != 1 || len(data.Customers) != 1 || len(data.Users) != 1 {
		t.Errorf("LoadAll() = %d/%d/%d records",
			len(data.Invoices), len(data.Customers), len(data.Users))
	}
	if data.Settings.TaxRate != models.DefaultTaxRate {
		t.Errorf("Settings.TaxRate = %v", data.Settings.TaxRate)
	}
}
