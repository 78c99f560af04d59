package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fireforce-invoice-api/internal/models"
)

// ErrParse is returned when a backup file is not valid JSON
var ErrParse = errors.New("backup file is not valid JSON")

// maxSnapshotAge is the age beyond which a snapshot draws a warning
const maxSnapshotAge = 30 * 24 * time.Hour

// RawSnapshot is a loosely typed snapshot document. Fields are pointers
// so the validator can tell a missing field from a zero one.
type RawSnapshot struct {
	Version   *string                  `json:"version"`
	Timestamp *string                  `json:"timestamp"`
	System    *string                  `json:"system"`
	Type      *string                  `json:"type"`
	Data      *RawSnapshotData         `json:"data"`
	Metadata  *models.SnapshotMetadata `json:"metadata"`
}

// RawSnapshotData mirrors models.SnapshotData with optional sections
type RawSnapshotData struct {
	Invoices   *[]models.Invoice  `json:"invoices"`
	Customers  *[]models.Customer `json:"customers"`
	Users      *[]models.User     `json:"users"`
	OfficeInfo *models.OfficeInfo `json:"officeInfo"`
	Settings   *models.Settings   `json:"settings"`
}

// SnapshotSummary is the metadata shown to the operator before they
// confirm a restore
type SnapshotSummary struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	System    string    `json:"system"`
	Type      string    `json:"type"`
	Invoices  int       `json:"invoices"`
	Customers int       `json:"customers"`
	Users     int       `json:"users"`
}

// ValidationResult is the outcome of validating a snapshot. Errors make
// the snapshot unrestorable; warnings do not.
type ValidationResult struct {
	IsValid  bool            `json:"isValid"`
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
	Summary  SnapshotSummary `json:"summary"`
}

func (r *ValidationResult) addError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.IsValid = false
}

func (r *ValidationResult) addWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ParseSnapshot decodes backup file bytes into a raw document
func ParseSnapshot(data []byte) (*RawSnapshot, error) {
	var raw RawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &raw, nil
}

// ValidateSnapshot checks a raw snapshot document against the format
// rules. It is pure: no store access, no side effects, deterministic
// for a given now.
func ValidateSnapshot(raw *RawSnapshot, fixedOffice models.OfficeInfo, now time.Time) *ValidationResult {
	result := &ValidationResult{IsValid: true}
	if raw == nil {
		result.addError("backup document is empty")
		return result
	}

	// Envelope
	if raw.Version == nil || *raw.Version == "" {
		result.addError("backup is missing the version field")
	} else {
		result.Summary.Version = *raw.Version
		if *raw.Version != models.SnapshotVersion {
			result.addWarning("backup version %s differs from expected %s", *raw.Version, models.SnapshotVersion)
		}
	}

	if raw.System == nil || *raw.System == "" {
		result.addError("backup is missing the system field")
	} else {
		result.Summary.System = *raw.System
		if *raw.System != models.SnapshotSystem {
			result.addWarning("backup was created by a different system: %s", *raw.System)
		}
	}

	if raw.Timestamp == nil || *raw.Timestamp == "" {
		result.addError("backup is missing the timestamp field")
	} else {
		ts, err := time.Parse(time.RFC3339, *raw.Timestamp)
		if err != nil {
			result.addError("backup timestamp is not parsable: %s", *raw.Timestamp)
		} else {
			result.Summary.Timestamp = ts
			if now.Sub(ts) > maxSnapshotAge {
				result.addWarning("backup is more than 30 days old")
			}
		}
	}

	if raw.Type != nil {
		result.Summary.Type = *raw.Type
	}

	if raw.Data == nil {
		result.addError("backup is missing the data section")
		return result
	}

	validateInvoices(raw.Data.Invoices, result)
	validateCustomers(raw.Data.Customers, result)
	validateUsers(raw.Data.Users, result)
	validateOffice(raw.Data.OfficeInfo, fixedOffice, result)
	validateSettings(raw.Data.Settings, result)

	return result
}

func validateInvoices(invoices *[]models.Invoice, result *ValidationResult) {
	if invoices == nil {
		result.addError("backup data has no invoices array")
		return
	}
	result.Summary.Invoices = len(*invoices)

	for i, invoice := range *invoices {
		if invoice.ID == "" {
			result.addError("invoice at position %d has no ID", i)
			continue
		}
		if invoice.Items == nil {
			result.addError("invoice %s has no items array", invoice.ID)
		}
		if invoice.CustomerName == "" {
			result.addWarning("invoice %s has no customer name", invoice.ID)
		}

		check := invoice
		check.CalculateTotals()
		if diff := invoice.GrandTotal - check.GrandTotal; diff > 0.01 || diff < -0.01 {
			result.addWarning("invoice %s grand total %.2f does not match computed %.2f",
				invoice.ID, invoice.GrandTotal, check.GrandTotal)
		}
	}
}

func validateCustomers(customers *[]models.Customer, result *ValidationResult) {
	if customers == nil {
		result.addError("backup data has no customers array")
		return
	}
	result.Summary.Customers = len(*customers)

	for i, customer := range *customers {
		if customer.ID == "" {
			result.addError("customer at position %d has no ID", i)
			continue
		}
		if customer.Name == "" {
			result.addError("customer %s has no name", customer.ID)
		}
		if customer.Email != "" && !models.IsValidEmail(customer.Email) {
			result.addWarning("customer %s has an invalid email: %s", customer.ID, customer.Email)
		}
	}
}

func validateUsers(users *[]models.User, result *ValidationResult) {
	if users == nil {
		result.addError("backup data has no users array")
		return
	}
	result.Summary.Users = len(*users)

	for i, user := range *users {
		if user.ID == "" {
			result.addError("user at position %d has no ID", i)
			continue
		}
		if user.Username == "" {
			result.addError("user %s has no username", user.ID)
		}
		if user.Name == "" {
			result.addError("user %s has no name", user.ID)
		}
		switch user.Role {
		case models.RoleSalesman, models.RoleOffice, models.RoleAdmin:
		default:
			result.addError("user %s has an unknown role: %s", user.ID, user.Role)
		}
	}
}

func validateOffice(office *models.OfficeInfo, fixed models.OfficeInfo, result *ValidationResult) {
	if office == nil {
		result.addWarning("backup data has no office info")
		return
	}

	// The office record is fixed at restore time, so differences are
	// informational only
	for _, field := range fixed.FieldDifferences(office) {
		result.addWarning("backup office %s differs from the configured value", field)
	}
}

func validateSettings(settings *models.Settings, result *ValidationResult) {
	if settings == nil {
		result.addWarning("backup data has no settings")
		return
	}
	if settings.TaxRate < 0 || settings.TaxRate > 100 {
		result.addWarning("backup tax rate %.2f is outside 0-100", settings.TaxRate)
	}
}

// ToSnapshot converts a validated raw document into a typed snapshot.
// Call only after ValidateSnapshot reports no errors.
func (raw *RawSnapshot) ToSnapshot() *models.Snapshot {
	snapshot := &models.Snapshot{}
	if raw.Version != nil {
		snapshot.Version = *raw.Version
	}
	if raw.System != nil {
		snapshot.System = *raw.System
	}
	if raw.Timestamp != nil {
		if ts, err := time.Parse(time.RFC3339, *raw.Timestamp); err == nil {
			snapshot.Timestamp = ts
		}
	}
	if raw.Type != nil {
		snapshot.Type = models.BackupType(*raw.Type)
	}
	if raw.Metadata != nil {
		snapshot.Metadata = *raw.Metadata
	}
	if raw.Data != nil {
		if raw.Data.Invoices != nil {
			snapshot.Data.Invoices = *raw.Data.Invoices
		}
		if raw.Data.Customers != nil {
			snapshot.Data.Customers = *raw.Data.Customers
		}
		if raw.Data.Users != nil {
			snapshot.Data.Users = *raw.Data.Users
		}
		if raw.Data.OfficeInfo != nil {
			snapshot.Data.OfficeInfo = *raw.Data.OfficeInfo
		}
		if raw.Data.Settings != nil {
			snapshot.Data.Settings = *raw.Data.Settings
		}
	}
	return snapshot
}
