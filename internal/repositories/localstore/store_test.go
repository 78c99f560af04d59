package localstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}
	return store
}

func testInvoice() *models.Invoice {
	inv := models.NewInvoice()
	inv.CustomerName = "Acme Fire Protection"
	inv.TaxRate = 8.0
	inv.Items = []models.LineItem{{Qty: 2, UnitPrice: 10, Taxable: true}}
	inv.CalculateTotals()
	return inv
}

func TestInvoiceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inv := testInvoice()
	if err := store.Invoices().Create(ctx, inv); err != nil {
		t.Fatalf("Create() = %v", err)
	}

	got, err := store.Invoices().GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID() = %v", err)
	}
	if got.CustomerName != "Acme Fire Protection" {
		t.Errorf("CustomerName = %q", got.CustomerName)
	}
	if len(got.Items) != 1 || got.Items[0].Qty != 2 {
		t.Errorf("Items = %+v", got.Items)
	}
	if got.GrandTotal != 21.60 {
		t.Errorf("GrandTotal = %v, want 21.60", got.GrandTotal)
	}
}

func TestInvoiceCreateDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inv := testInvoice()
	if err := store.Invoices().Create(ctx, inv); err != nil {
		t.Fatalf("Create() = %v", err)
	}
	err := store.Invoices().Create(ctx, inv)
	if !repositories.IsDuplicate(err) {
		t.Errorf("Create() duplicate = %v, want duplicate error", err)
	}
}

func TestInvoiceUpdateReplacesItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inv := testInvoice()
	if err := store.Invoices().Create(ctx, inv); err != nil {
		t.Fatalf("Create() = %v", err)
	}

	inv.Items = []models.LineItem{
		{Qty: 1, UnitPrice: 99.99, Taxable: false},
		{Qty: 4, UnitPrice: 2.50, Taxable: true},
	}
	inv.CalculateTotals()
	if err := store.Invoices().Update(ctx, inv); err != nil {
		t.Fatalf("Update() = %v", err)
	}

	got, err := store.Invoices().GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID() = %v", err)
	}
	if len(got.Items) != 2 {
		t.Errorf("Items count = %d, want 2", len(got.Items))
	}
}

func TestInvoiceListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pending := testInvoice()
	done := testInvoice()
	done.Status = models.StatusCompleted
	for _, inv := range []*models.Invoice{pending, done} {
		if err := store.Invoices().Create(ctx, inv); err != nil {
			t.Fatalf("Create() = %v", err)
		}
	}

	got, err := store.Invoices().List(ctx, map[string]interface{}{"status": "completed"})
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(got) != 1 || got[0].ID != done.ID {
		t.Errorf("List(status=completed) returned %d invoices", len(got))
	}

	count, err := store.Invoices().Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestInvoiceDeleteAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Invoices().Create(ctx, testInvoice()); err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if err := store.Invoices().DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() = %v", err)
	}

	count, err := store.Invoices().Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after DeleteAll = %d, want 0", count)
	}
}

func TestCustomerSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acme := models.NewCustomer("Acme Fire Protection")
	acme.Email = "ap@acmefire.com"
	beacon := models.NewCustomer("Beacon Safety Supply")
	for _, c := range []*models.Customer{acme, beacon} {
		if err := store.Customers().Create(ctx, c); err != nil {
			t.Fatalf("Create() = %v", err)
		}
	}

	got, err := store.Customers().Search(ctx, "acme", 10)
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	if len(got) != 1 || got[0].ID != acme.ID {
		t.Errorf("Search(acme) returned %d customers", len(got))
	}
}

func TestUserDeleteByRole(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sales := models.NewUser("jdoe", "John Doe", models.RoleSalesman)
	office := models.NewUser("office", "Office", models.RoleOffice)
	for _, u := range []*models.User{sales, office} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatalf("Create() = %v", err)
		}
	}

	if err := store.Users().DeleteByRole(ctx, models.RoleSalesman); err != nil {
		t.Fatalf("DeleteByRole() = %v", err)
	}

	users, err := store.Users().List(ctx)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(users) != 1 || users[0].Role != models.RoleOffice {
		t.Errorf("List() after DeleteByRole = %+v", users)
	}
}

func TestUserDuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Users().Create(ctx, models.NewUser("jdoe", "John Doe", models.RoleSalesman)); err != nil {
		t.Fatalf("Create() = %v", err)
	}
	err := store.Users().Create(ctx, models.NewUser("jdoe", "Jane Doe", models.RoleSalesman))
	if !repositories.IsDuplicate(err) {
		t.Errorf("Create() duplicate username = %v, want duplicate error", err)
	}
}

func TestSettingsDefaultAndSave(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if settings.TaxRate != models.DefaultTaxRate {
		t.Errorf("default TaxRate = %v, want %v", settings.TaxRate, models.DefaultTaxRate)
	}

	settings.TaxRate = 9.5
	if err := store.Settings().Save(ctx, settings); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	got, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if got.TaxRate != 9.5 {
		t.Errorf("TaxRate = %v, want 9.5", got.TaxRate)
	}
}

func TestStateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.State().Get(ctx, "last_backup_date"); !repositories.IsNotFound(err) {
		t.Errorf("Get() missing key = %v, want not found", err)
	}

	if err := store.State().Set(ctx, "last_backup_date", "2025-03-14"); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	value, err := store.State().Get(ctx, "last_backup_date")
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if value != "2025-03-14" {
		t.Errorf("Get() = %q", value)
	}

	if err := store.State().Delete(ctx, "last_backup_date"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	if err := store.State().Delete(ctx, "last_backup_date"); err != nil {
		t.Errorf("Delete() absent key = %v, want nil", err)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}

	if err := store.Customers().Create(context.Background(), models.NewCustomer("Acme")); err != nil {
		t.Fatalf("Create() = %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatalf("Glob() = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}

	if _, err := os.Stat(filepath.Join(dir, "customers.json")); err != nil {
		t.Errorf("customers.json not written: %v", err)
	}
}
