package models

import (
	"fmt"
	"time"
)

// Snapshot format constants. Version and System identify files produced
// by this application; the validator rejects anything else.
const (
	SnapshotVersion = "1.0"
	SnapshotSystem  = "Fire Force Invoice System"
)

// BackupType distinguishes operator-initiated exports from scheduled ones
type BackupType string

const (
	BackupManual    BackupType = "manual"
	BackupAutomatic BackupType = "automatic"
)

// SnapshotData holds the exported records. Users are always redacted
// copies; OfficeInfo is always the fixed company identity.
type SnapshotData struct {
	Invoices   []Invoice  `json:"invoices"`
	Customers  []Customer `json:"customers"`
	Users      []User     `json:"users"`
	OfficeInfo OfficeInfo `json:"officeInfo"`
	Settings   Settings   `json:"settings"`
}

// SnapshotMetadata carries counts and provenance for a snapshot
type SnapshotMetadata struct {
	TotalInvoices  int        `json:"totalInvoices"`
	TotalCustomers int        `json:"totalCustomers"`
	TotalUsers     int        `json:"totalUsers"`
	CreatedBy      string     `json:"createdBy"`
	BackupType     BackupType `json:"backupType"`
	FileSize       int64      `json:"fileSize,omitempty"`
}

// Snapshot is a complete backup of the application's data
type Snapshot struct {
	Version   string           `json:"version"`
	Timestamp time.Time        `json:"timestamp"`
	System    string           `json:"system"`
	Type      BackupType       `json:"type"`
	Data      SnapshotData     `json:"data"`
	Metadata  SnapshotMetadata `json:"metadata"`
}

// BackupFileName builds the canonical export file name for the given
// moment, e.g. fireforce_backup_2025-03-14_1710404523000.json
func BackupFileName(t time.Time) string {
	return fmt.Sprintf("fireforce_backup_%s_%d.json", t.Format("2006-01-02"), t.UnixMilli())
}

// BackupHistoryEntry is one row of the retained backup history. The
// history keeps the ten most recent entries, newest first.
type BackupHistoryEntry struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Type      BackupType `json:"type"`
	Records   int        `json:"records"`
	Size      int64      `json:"size"`
	FileName  string     `json:"fileName"`
}

// MaxBackupHistory caps the retained backup history length
const MaxBackupHistory = 10
