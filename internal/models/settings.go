package models

import "fmt"

// DefaultTaxRate is the tax rate applied to new invoices when no settings
// record exists yet
const DefaultTaxRate = 8.0

// Settings is the single mutable settings record. TaxRate is the default
// for new invoices only; existing invoices keep the rate they were
// created with.
type Settings struct {
	TaxRate float64 `json:"taxRate" db:"tax_rate"`
}

// DefaultSettings returns the settings applied on first run
func DefaultSettings() *Settings {
	return &Settings{TaxRate: DefaultTaxRate}
}

// Validate validates the settings data
func (s *Settings) Validate() error {
	if s.TaxRate < 0 || s.TaxRate > 100 {
		return fmt.Errorf("tax rate must be between 0 and 100")
	}
	return nil
}

// OfficeInfo is the fixed company-identity record. It is supplied by
// configuration at startup and is never modified by restore; the backup
// exporter always writes this constant regardless of what a snapshot
// contains.
type OfficeInfo struct {
	CompanyName    string `json:"companyName"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	EmergencyPhone string `json:"emergencyPhone"`
	Email          string `json:"email"`
	ServiceEmail   string `json:"serviceEmail"`
	Username       string `json:"username"`
}

// FieldDifferences compares against another office record and returns the
// names of fields that differ
func (o *OfficeInfo) FieldDifferences(other *OfficeInfo) []string {
	var diffs []string
	if o.CompanyName != other.CompanyName {
		diffs = append(diffs, "company name")
	}
	if o.Address != other.Address {
		diffs = append(diffs, "address")
	}
	if o.Phone != other.Phone {
		diffs = append(diffs, "phone")
	}
	if o.EmergencyPhone != other.EmergencyPhone {
		diffs = append(diffs, "emergency phone")
	}
	if o.Email != other.Email {
		diffs = append(diffs, "email")
	}
	if o.ServiceEmail != other.ServiceEmail {
		diffs = append(diffs, "service email")
	}
	if o.Username != other.Username {
		diffs = append(diffs, "username")
	}
	return diffs
}
