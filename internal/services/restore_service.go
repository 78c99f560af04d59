package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fireforce-invoice-api/internal/models"
)

// ProgressFunc receives restore progress updates as they happen
type ProgressFunc func(RestoreProgress)

// restoreService implements the RestoreService interface. A restore
// replaces data in strict order: customers, then users, then invoices,
// then settings. There is no rollback; a failed restore leaves the
// phases that completed in place and reports where it stopped.
type restoreService struct {
	data            DataService
	officeInfo      models.OfficeInfo
	defaultPassword string
	onProgress      ProgressFunc
	logger          *logrus.Logger

	mu       sync.RWMutex
	running  bool
	progress RestoreProgress
}

// NewRestoreService creates a new restore service. defaultPassword is
// the credential assigned to every restored salesman account; hashes
// from backup files are never reused. onProgress may be nil.
func NewRestoreService(data DataService, officeInfo models.OfficeInfo, defaultPassword string, onProgress ProgressFunc, logger *logrus.Logger) RestoreService {
	if logger == nil {
		logger = logrus.New()
	}
	return &restoreService{
		data:            data,
		officeInfo:      officeInfo,
		defaultPassword: defaultPassword,
		onProgress:      onProgress,
		logger:          logger,
		progress:        RestoreProgress{Phase: PhaseIdle},
	}
}

// Status returns the current restore progress
func (s *restoreService) Status() RestoreProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

func (s *restoreService) setProgress(phase RestorePhase, percent int, message string) {
	s.mu.Lock()
	s.progress = RestoreProgress{
		Phase:    phase,
		Percent:  percent,
		Message:  message,
		Warnings: s.progress.Warnings,
	}
	snapshot := s.progress
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"phase":   phase,
		"percent": percent,
	}).Info(message)

	if s.onProgress != nil {
		s.onProgress(snapshot)
	}
}

func (s *restoreService) fail(err error) error {
	s.mu.Lock()
	s.progress.Phase = PhaseFailed
	s.progress.Error = err.Error()
	s.progress.Message = "Restore failed"
	snapshot := s.progress
	s.mu.Unlock()

	s.logger.WithError(err).Error("Restore failed")

	if s.onProgress != nil {
		s.onProgress(snapshot)
	}
	return err
}

func (s *restoreService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("a restore is already in progress")
	}
	s.running = true
	s.progress = RestoreProgress{Phase: PhaseIdle}
	return nil
}

func (s *restoreService) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// RestoreFromFile reads, validates, and restores a snapshot file
func (s *restoreService) RestoreFromFile(ctx context.Context, path string) (*RestoreResult, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	s.setProgress(PhaseReading, 5, "Reading backup file")
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to read backup file: %w", err))
	}

	raw, err := ParseSnapshot(payload)
	if err != nil {
		return nil, s.fail(err)
	}

	return s.restore(ctx, raw)
}

// Restore validates and restores an in-memory snapshot
func (s *restoreService) Restore(ctx context.Context, snapshot *models.Snapshot) (*RestoreResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	// Round-trip through the raw form so both entry points share the
	// same validation
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to encode snapshot: %w", err))
	}
	raw, err := ParseSnapshot(payload)
	if err != nil {
		return nil, s.fail(err)
	}

	return s.restore(ctx, raw)
}

func (s *restoreService) restore(ctx context.Context, raw *RawSnapshot) (*RestoreResult, error) {
	s.setProgress(PhaseValidating, 10, "Validating backup contents")

	validation := ValidateSnapshot(raw, s.officeInfo, time.Now())
	s.mu.Lock()
	s.progress.Warnings = validation.Warnings
	s.mu.Unlock()

	if !validation.IsValid {
		return nil, s.fail(fmt.Errorf("backup failed validation: %v", validation.Errors))
	}

	snapshot := raw.ToSnapshot()
	store := s.data.ActiveStore()
	result := &RestoreResult{Warnings: validation.Warnings}

	// Customers
	s.setProgress(PhaseRestoringCustomers, 20, "Restoring customers")
	if err := store.Customers().DeleteAll(ctx); err != nil {
		return nil, s.fail(err)
	}
	for i := range snapshot.Data.Customers {
		customer := snapshot.Data.Customers[i]
		if err := store.Customers().Create(ctx, &customer); err != nil {
			return nil, s.fail(fmt.Errorf("failed to restore customer %s: %w", customer.ID, err))
		}
		result.Customers++
	}

	// Users: salesmen only, with reset credentials. The office and
	// admin accounts are never touched by a restore.
	s.setProgress(PhaseRestoringUsers, 40, "Restoring salesman accounts")
	if err := store.Users().DeleteByRole(ctx, models.RoleSalesman); err != nil {
		return nil, s.fail(err)
	}
	for i := range snapshot.Data.Users {
		user := snapshot.Data.Users[i]
		if user.Role != models.RoleSalesman {
			continue
		}
		if err := user.SetPassword(s.defaultPassword); err != nil {
			return nil, s.fail(fmt.Errorf("failed to reset credential for %s: %w", user.Username, err))
		}
		if err := store.Users().Create(ctx, &user); err != nil {
			return nil, s.fail(fmt.Errorf("failed to restore user %s: %w", user.Username, err))
		}
		result.Users++
	}

	// Invoices
	s.setProgress(PhaseRestoringInvoices, 60, "Restoring invoices")
	if err := store.Invoices().DeleteAll(ctx); err != nil {
		return nil, s.fail(err)
	}
	for i := range snapshot.Data.Invoices {
		invoice := snapshot.Data.Invoices[i]
		// Stored totals are never trusted across a restore
		invoice.CalculateTotals()
		if err := store.Invoices().Create(ctx, &invoice); err != nil {
			return nil, s.fail(fmt.Errorf("failed to restore invoice %s: %w", invoice.ID, err))
		}
		result.Invoices++
	}

	// Settings. Only restored when the backup actually carries a
	// settings section; a typed zero value would clobber the live tax
	// rate otherwise.
	s.setProgress(PhaseRestoringSettings, 80, "Restoring settings")
	if raw.Data != nil && raw.Data.Settings != nil {
		if err := snapshot.Data.Settings.Validate(); err != nil {
			s.logger.WithError(err).Warn("Skipping settings restore")
		} else if err := store.Settings().Save(ctx, &snapshot.Data.Settings); err != nil {
			return nil, s.fail(err)
		}
	} else {
		s.logger.Warn("Backup has no settings section, keeping current settings")
	}

	s.setProgress(PhaseFinalizing, 95, "Finalizing restore")
	if err := store.State().Set(ctx, stateKeyLastBackup, time.Now().Format(time.RFC3339)); err != nil {
		s.logger.WithError(err).Warn("Failed to update backup state after restore")
	}

	s.setProgress(PhaseCompleted, 100, fmt.Sprintf(
		"Restore complete: %d invoices, %d customers, %d users",
		result.Invoices, result.Customers, result.Users))

	return result, nil
}
