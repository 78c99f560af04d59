package sqlite

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"
)

func closedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open() = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	return db
}

// Every operation against a dead database handle must surface as
// unavailable, not as an ordinary repository error, so the data layer
// can switch to the local store.
func TestClosedDatabaseReportsUnavailable(t *testing.T) {
	store := NewStore(closedDB(t), nil)
	ctx := context.Background()

	if _, err := store.Invoices().List(ctx, nil); !repositories.IsUnavailable(err) {
		t.Errorf("Invoices().List() = %v, want unavailable", err)
	}
	if _, err := store.Customers().GetByID(ctx, "c1"); !repositories.IsUnavailable(err) {
		t.Errorf("Customers().GetByID() = %v, want unavailable", err)
	}
	if _, err := store.State().Get(ctx, "backup_history"); !repositories.IsUnavailable(err) {
		t.Errorf("State().Get() = %v, want unavailable", err)
	}
	if err := store.Ping(ctx); !repositories.IsUnavailable(err) {
		t.Errorf("Ping() = %v, want unavailable", err)
	}

	// Create goes through a transaction, which fails at begin
	invoice := models.NewInvoice()
	if err := store.Invoices().Create(ctx, invoice); !repositories.IsUnavailable(err) {
		t.Errorf("Invoices().Create() = %v, want unavailable", err)
	}
}
