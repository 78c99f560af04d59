package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fireforce-invoice-api/internal/models"
)

var testOffice = models.OfficeInfo{
	CompanyName:    "Fire Force",
	Address:        "700 Industrial Way",
	Phone:          "555-0100",
	EmergencyPhone: "555-0199",
	Email:          "info@fireforce.example",
	ServiceEmail:   "service@fireforce.example",
	Username:       "office",
}

func newBackupFixture(t *testing.T) (BackupService, DataService, *mockStore, string) {
	t.Helper()
	primary := newMockStore()
	customer := seedCustomer(t, primary)

	user := models.NewUser("jdoe", "John Doe", models.RoleSalesman)
	if err := user.SetPassword("s3cret"); err != nil {
		t.Fatalf("SetPassword() = %v", err)
	}
	if err := primary.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	data := NewDataService(primary, newMockStore(), nil)
	taxRate := 8.0
	if _, err := data.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		CustomerID: customer.ID,
		Items:      []models.LineItem{{Qty: 2, UnitPrice: 10, Taxable: true}},
		TaxRate:    &taxRate,
	}); err != nil {
		t.Fatalf("CreateInvoice() = %v", err)
	}

	exportDir := t.TempDir()
	return NewBackupService(data, testOffice, exportDir, nil), data, primary, exportDir
}

func TestCreateSnapshotRedactsAndCounts(t *testing.T) {
	backup, _, _, _ := newBackupFixture(t)

	snapshot, err := backup.CreateSnapshot(context.Background(), "office", models.BackupManual)
	if err != nil {
		t.Fatalf("CreateSnapshot() = %v", err)
	}

	if snapshot.Version != models.SnapshotVersion {
		t.Errorf("Version = %q", snapshot.Version)
	}
	if snapshot.System != models.SnapshotSystem {
		t.Errorf("System = %q", snapshot.System)
	}
	if snapshot.Metadata.TotalInvoices != 1 || snapshot.Metadata.TotalCustomers != 1 || snapshot.Metadata.TotalUsers != 1 {
		t.Errorf("metadata counts = %+v", snapshot.Metadata)
	}
	if snapshot.Metadata.CreatedBy != "office" {
		t.Errorf("CreatedBy = %q", snapshot.Metadata.CreatedBy)
	}

	for _, user := range snapshot.Data.Users {
		if user.PasswordHash != models.PasswordRedacted {
			t.Errorf("user %s credential not redacted: %q", user.Username, user.PasswordHash)
		}
	}
	if snapshot.Data.OfficeInfo != testOffice {
		t.Errorf("OfficeInfo = %+v, want the configured constant", snapshot.Data.OfficeInfo)
	}
}

func TestExportFileWritesAndRecordsHistory(t *testing.T) {
	backup, _, _, exportDir := newBackupFixture(t)

	snapshot, err := backup.CreateSnapshot(context.Background(), "office", models.BackupManual)
	if err != nil {
		t.Fatalf("CreateSnapshot() = %v", err)
	}

	path, err := backup.ExportFile(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("ExportFile() = %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "fireforce_backup_") || !strings.HasSuffix(base, ".json") {
		t.Errorf("file name = %q", base)
	}
	if filepath.Dir(path) != exportDir {
		t.Errorf("file written to %q, want %q", filepath.Dir(path), exportDir)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	var decoded models.Snapshot
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("exported file is not valid JSON: %v", err)
	}
	if decoded.Metadata.FileSize != int64(len(payload)) {
		t.Errorf("metadata.fileSize = %d, want the file's %d bytes", decoded.Metadata.FileSize, len(payload))
	}

	history, err := backup.History(context.Background())
	if err != nil {
		t.Fatalf("History() = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("History() = %d entries, want 1", len(history))
	}
	if history[0].FileName != base {
		t.Errorf("history file name = %q, want %q", history[0].FileName, base)
	}
	if history[0].Size != int64(len(payload)) {
		t.Errorf("history size = %d, want the file's %d bytes", history[0].Size, len(payload))
	}
}

func TestHistoryCappedAtTenNewestFirst(t *testing.T) {
	backup, _, _, _ := newBackupFixture(t)
	svc := backup.(*backupService)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		snapshot, err := backup.CreateSnapshot(context.Background(), "office", models.BackupAutomatic)
		if err != nil {
			t.Fatalf("CreateSnapshot() = %v", err)
		}
		if _, err := backup.ExportFile(context.Background(), snapshot); err != nil {
			t.Fatalf("ExportFile() = %v", err)
		}
	}

	history, err := backup.History(context.Background())
	if err != nil {
		t.Fatalf("History() = %v", err)
	}
	if len(history) != models.MaxBackupHistory {
		t.Fatalf("History() = %d entries, want %d", len(history), models.MaxBackupHistory)
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.After(history[i-1].Timestamp) {
			t.Errorf("history not newest first at position %d", i)
		}
	}
}

func TestExportEntity(t *testing.T) {
	backup, _, _, _ := newBackupFixture(t)

	path, err := backup.ExportEntity(context.Background(), "users")
	if err != nil {
		t.Fatalf("ExportEntity(users) = %v", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	var users []models.User
	if err := json.Unmarshal(payload, &users); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(users) != 1 || users[0].PasswordHash != models.PasswordRedacted {
		t.Errorf("exported users = %+v", users)
	}

	if _, err := backup.ExportEntity(context.Background(), "products"); err == nil {
		t.Error("ExportEntity(products) should fail for an unknown kind")
	}
}
