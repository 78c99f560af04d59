package services

import (
	"context"
	"time"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"
)

// StorageMode identifies which backend is serving reads and writes
type StorageMode string

const (
	ModeRemote StorageMode = "remote"
	ModeLocal  StorageMode = "local"
)

// DataService is the single entry point for record access. It serves
// from the primary backend and falls back wholesale to the local store
// when the primary is unreachable.
type DataService interface {
	// Invoice operations
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*models.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, req *UpdateInvoiceRequest) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context, filters *InvoiceFilters) ([]*models.Invoice, error)

	// Customer operations
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req *UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	SearchCustomers(ctx context.Context, query string, limit int) ([]*models.Customer, error)

	// User operations
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	// Settings operations
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*models.Settings, error)

	// LoadAll gathers every record kind in one pass, for export
	LoadAll(ctx context.Context) (*models.SnapshotData, error)

	// Mode reports which backend served the most recent operation
	Mode() StorageMode

	// ActiveStore exposes the backend currently in use
	ActiveStore() repositories.Store
}

// AuthService authenticates users and issues tokens
type AuthService interface {
	// Login verifies credentials and returns the user with a signed token
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
}

// BackupService builds and exports snapshots and maintains the backup
// history
type BackupService interface {
	// CreateSnapshot assembles a snapshot of all current data
	CreateSnapshot(ctx context.Context, createdBy string, backupType models.BackupType) (*models.Snapshot, error)

	// ExportFile writes a snapshot to the export directory and records
	// it in the history. Returns the absolute file path.
	ExportFile(ctx context.Context, snapshot *models.Snapshot) (string, error)

	// ExportEntity writes a single record kind as its own JSON file
	ExportEntity(ctx context.Context, kind string) (string, error)

	// History returns the retained backup history, newest first
	History(ctx context.Context) ([]models.BackupHistoryEntry, error)
}

// RestorePhase names a step of the restore state machine
type RestorePhase string

const (
	PhaseIdle               RestorePhase = "idle"
	PhaseReading            RestorePhase = "reading"
	PhaseValidating         RestorePhase = "validating"
	PhaseRestoringCustomers RestorePhase = "restoring_customers"
	PhaseRestoringUsers     RestorePhase = "restoring_users"
	PhaseRestoringInvoices  RestorePhase = "restoring_invoices"
	PhaseRestoringSettings  RestorePhase = "restoring_settings"
	PhaseFinalizing         RestorePhase = "finalizing"
	PhaseCompleted          RestorePhase = "completed"
	PhaseFailed             RestorePhase = "failed"
)

// RestoreProgress reports where a restore run currently stands
type RestoreProgress struct {
	Phase    RestorePhase `json:"phase"`
	Percent  int          `json:"percent"`
	Message  string       `json:"message"`
	Error    string       `json:"error,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// RestoreResult summarizes a completed restore
type RestoreResult struct {
	Invoices  int      `json:"invoices"`
	Customers int      `json:"customers"`
	Users     int      `json:"users"`
	Warnings  []string `json:"warnings,omitempty"`
}

// RestoreService replaces all data from a validated snapshot
type RestoreService interface {
	// RestoreFromFile reads, validates, and restores a snapshot file
	RestoreFromFile(ctx context.Context, path string) (*RestoreResult, error)

	// Restore validates and restores an in-memory snapshot
	Restore(ctx context.Context, snapshot *models.Snapshot) (*RestoreResult, error)

	// Status returns the current restore progress
	Status() RestoreProgress
}

// SchedulerStats reports the scheduler's view of backup recency
type SchedulerStats struct {
	AutoBackupEnabled bool       `json:"autoBackupEnabled"`
	LastBackup        *time.Time `json:"lastBackup,omitempty"`
	BackupDue         bool       `json:"backupDue"`
	ReminderDue       bool       `json:"reminderDue"`
}

// BackupScheduler tracks backup recency, runs automatic backups, and
// decides when to remind the operator
type BackupScheduler interface {
	// Start launches the periodic check loop
	Start(ctx context.Context)

	// Stop halts the loop and waits for it to exit
	Stop()

	// IsBackupDue reports whether a backup is overdue
	IsBackupDue(ctx context.Context) (bool, error)

	// IsReminderDue reports whether the operator should be nagged
	IsReminderDue(ctx context.Context) (bool, error)

	// DismissReminder silences reminders for the rest of the day
	DismissReminder(ctx context.Context) error

	// Subscribe returns a channel receiving reminder events
	Subscribe() <-chan ReminderEvent

	// SetAutoBackup toggles automatic backups
	SetAutoBackup(ctx context.Context, enabled bool) error

	// RecordBackup notes that a backup just happened
	RecordBackup(ctx context.Context, at time.Time) error

	// Stats returns the scheduler state for display
	Stats(ctx context.Context) (*SchedulerStats, error)
}

// Request and response types for service operations

// Invoice service types
type CreateInvoiceRequest struct {
	CustomerID      string                 `json:"customerId" validate:"required"`
	Date            string                 `json:"date"`
	PONumber        string                 `json:"poNumber"`
	SalesRep        string                 `json:"salesRep"`
	TransactionType models.TransactionType `json:"transactionType" validate:"omitempty,oneof=sales_order service_order quote"`
	Items           []models.LineItem      `json:"items"`
	ShippingCost    float64                `json:"shippingCost" validate:"gte=0"`
	AdditionalInfo  string                 `json:"additionalInfo"`
	TaxRate         *float64               `json:"taxRate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type UpdateInvoiceRequest struct {
	Date            *string                 `json:"date,omitempty"`
	PONumber        *string                 `json:"poNumber,omitempty"`
	SalesRep        *string                 `json:"salesRep,omitempty"`
	TransactionType *models.TransactionType `json:"transactionType,omitempty" validate:"omitempty,oneof=sales_order service_order quote"`
	Items           *[]models.LineItem      `json:"items,omitempty"`
	ShippingCost    *float64                `json:"shippingCost,omitempty" validate:"omitempty,gte=0"`
	AdditionalInfo  *string                 `json:"additionalInfo,omitempty"`
	Status          *models.InvoiceStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending in-process completed"`
	TaxRate         *float64                `json:"taxRate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Archived        *bool                   `json:"archived,omitempty"`
}

type InvoiceFilters struct {
	Status          *models.InvoiceStatus   `json:"status,omitempty"`
	TransactionType *models.TransactionType `json:"transactionType,omitempty"`
	SalesRep        *string                 `json:"salesRep,omitempty"`
	Archived        *bool                   `json:"archived,omitempty"`
}

// Customer service types
type CreateCustomerRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"omitempty,email"`
	Phone                string `json:"phone"`
	AccountsPayableEmail string `json:"accountsPayableEmail" validate:"omitempty,email"`
	BillToAddress        string `json:"billToAddress"`
	ShipToAddress        string `json:"shipToAddress"`
}

type UpdateCustomerRequest struct {
	Name                 *string `json:"name,omitempty"`
	Email                *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone                *string `json:"phone,omitempty"`
	AccountsPayableEmail *string `json:"accountsPayableEmail,omitempty" validate:"omitempty,email"`
	BillToAddress        *string `json:"billToAddress,omitempty"`
	ShipToAddress        *string `json:"shipToAddress,omitempty"`
}

// User service types
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=4"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=4"`
}

// Settings service types
type UpdateSettingsRequest struct {
	TaxRate *float64 `json:"taxRate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Auth service types
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}
