package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"fireforce-invoice-api/internal/models"
)

func validRawSnapshot(t *testing.T, now time.Time) *RawSnapshot {
	t.Helper()

	invoice := models.NewInvoice()
	invoice.CustomerName = "Acme Fire Protection"
	invoice.TaxRate = 8.0
	invoice.Items = []models.LineItem{{Qty: 2, UnitPrice: 10, Taxable: true}}
	invoice.CalculateTotals()

	snapshot := &models.Snapshot{
		Version:   models.SnapshotVersion,
		Timestamp: now.Add(-time.Hour),
		System:    models.SnapshotSystem,
		Type:      models.BackupManual,
		Data: models.SnapshotData{
			Invoices:   []models.Invoice{*invoice},
			Customers:  []models.Customer{*models.NewCustomer("Acme Fire Protection")},
			Users:      []models.User{models.NewUser("jdoe", "John Doe", models.RoleSalesman).Redacted()},
			OfficeInfo: testOffice,
			Settings:   models.Settings{TaxRate: 8.0},
		},
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	raw, err := ParseSnapshot(payload)
	if err != nil {
		t.Fatalf("ParseSnapshot() = %v", err)
	}
	return raw
}

func TestParseSnapshotRejectsInvalidJSON(t *testing.T) {
	_, err := ParseSnapshot([]byte("{not json"))
	if !errors.Is(err, ErrParse) {
		t.Errorf("ParseSnapshot() = %v, want ErrParse", err)
	}
}

func TestValidateSnapshotAccepts(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	raw := validRawSnapshot(t, now)

	result := ValidateSnapshot(raw, testOffice, now)
	if !result.IsValid {
		t.Fatalf("ValidateSnapshot() errors = %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
	if result.Summary.Invoices != 1 || result.Summary.Customers != 1 || result.Summary.Users != 1 {
		t.Errorf("Summary = %+v", result.Summary)
	}
}

func TestValidateSnapshotEnvelopeRules(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mutate      func(*RawSnapshot)
		wantValid   bool
		wantMessage string
		inWarnings  bool
	}{
		{
			name:        "missing version",
			mutate:      func(raw *RawSnapshot) { raw.Version = nil },
			wantValid:   false,
			wantMessage: "version",
		},
		{
			name: "unknown version is only a warning",
			mutate: func(raw *RawSnapshot) {
				v := "2.0"
				raw.Version = &v
			},
			wantValid:   true,
			wantMessage: "version 2.0",
			inWarnings:  true,
		},
		{
			name:        "missing system",
			mutate:      func(raw *RawSnapshot) { raw.System = nil },
			wantValid:   false,
			wantMessage: "system",
		},
		{
			name: "foreign system is only a warning",
			mutate: func(raw *RawSnapshot) {
				s := "Other Invoice App"
				raw.System = &s
			},
			wantValid:   true,
			wantMessage: "different system",
			inWarnings:  true,
		},
		{
			name:        "missing timestamp",
			mutate:      func(raw *RawSnapshot) { raw.Timestamp = nil },
			wantValid:   false,
			wantMessage: "timestamp",
		},
		{
			name: "unparsable timestamp",
			mutate: func(raw *RawSnapshot) {
				ts := "last tuesday"
				raw.Timestamp = &ts
			},
			wantValid:   false,
			wantMessage: "not parsable",
		},
		{
			name: "old backup is only a warning",
			mutate: func(raw *RawSnapshot) {
				ts := now.Add(-45 * 24 * time.Hour).Format(time.RFC3339)
				raw.Timestamp = &ts
			},
			wantValid:   true,
			wantMessage: "30 days",
			inWarnings:  true,
		},
		{
			name:        "missing data section",
			mutate:      func(raw *RawSnapshot) { raw.Data = nil },
			wantValid:   false,
			wantMessage: "data section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRawSnapshot(t, now)
			tt.mutate(raw)
			result := ValidateSnapshot(raw, testOffice, now)

			if result.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", result.IsValid, tt.wantValid, result.Errors)
			}

			haystack := result.Errors
			if tt.inWarnings {
				haystack = result.Warnings
			}
			if !containsSubstring(haystack, tt.wantMessage) {
				t.Errorf("message %q not found in %v", tt.wantMessage, haystack)
			}
		})
	}
}

func TestValidateSnapshotRecordRules(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		mutate     func(*RawSnapshot)
		wantValid  bool
		inWarnings bool
	}{
		{
			name:      "invoice without ID",
			mutate:    func(raw *RawSnapshot) { (*raw.Data.Invoices)[0].ID = "" },
			wantValid: false,
		},
		{
			name:      "invoice without items array",
			mutate:    func(raw *RawSnapshot) { (*raw.Data.Invoices)[0].Items = nil },
			wantValid: false,
		},
		{
			name:       "invoice without customer name is a warning",
			mutate:     func(raw *RawSnapshot) { (*raw.Data.Invoices)[0].CustomerName = "" },
			wantValid:  true,
			inWarnings: true,
		},
		{
			name:       "invoice with bad grand total is a warning",
			mutate:     func(raw *RawSnapshot) { (*raw.Data.Invoices)[0].GrandTotal = 9999 },
			wantValid:  true,
			inWarnings: true,
		},
		{
			name:      "customer without name",
			mutate:    func(raw *RawSnapshot) { (*raw.Data.Customers)[0].Name = "" },
			wantValid: false,
		},
		{
			name:       "customer with bad email is a warning",
			mutate:     func(raw *RawSnapshot) { (*raw.Data.Customers)[0].Email = "nope" },
			wantValid:  true,
			inWarnings: true,
		},
		{
			name:      "user without username",
			mutate:    func(raw *RawSnapshot) { (*raw.Data.Users)[0].Username = "" },
			wantValid: false,
		},
		{
			name:      "user with unknown role",
			mutate:    func(raw *RawSnapshot) { (*raw.Data.Users)[0].Role = "manager" },
			wantValid: false,
		},
		{
			name:       "office divergence is warnings only",
			mutate:     func(raw *RawSnapshot) { raw.Data.OfficeInfo.Phone = "555-9999" },
			wantValid:  true,
			inWarnings: true,
		},
		{
			name:       "tax rate out of range is a warning",
			mutate:     func(raw *RawSnapshot) { raw.Data.Settings.TaxRate = 150 },
			wantValid:  true,
			inWarnings: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRawSnapshot(t, now)
			tt.mutate(raw)
			result := ValidateSnapshot(raw, testOffice, now)

			if result.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", result.IsValid, tt.wantValid, result.Errors)
			}
			if tt.inWarnings && len(result.Warnings) == 0 {
				t.Error("expected at least one warning")
			}
		})
	}
}

func containsSubstring(list []string, substring string) bool {
	for _, item := range list {
		if strings.Contains(item, substring) {
			return true
		}
	}
	return false
}
