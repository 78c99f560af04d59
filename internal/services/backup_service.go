package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"
)

// State key under which the backup history is persisted
const backupHistoryKey = "backup_history"

// backupService implements the BackupService interface
type backupService struct {
	data       DataService
	officeInfo models.OfficeInfo
	exportDir  string
	logger     *logrus.Logger
	now        func() time.Time
}

// NewBackupService creates a new backup service. The office identity is
// baked in at construction and written verbatim into every snapshot.
func NewBackupService(data DataService, officeInfo models.OfficeInfo, exportDir string, logger *logrus.Logger) BackupService {
	if logger == nil {
		logger = logrus.New()
	}
	return &backupService{
		data:       data,
		officeInfo: officeInfo,
		exportDir:  exportDir,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateSnapshot assembles a snapshot of all current data. User
// credentials are redacted; a snapshot is safe to hand to anyone who
// may hold a backup file.
func (s *backupService) CreateSnapshot(ctx context.Context, createdBy string, backupType models.BackupType) (*models.Snapshot, error) {
	data, err := s.data.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load data for backup: %w", err)
	}

	for i := range data.Users {
		data.Users[i] = data.Users[i].Redacted()
	}
	data.OfficeInfo = s.officeInfo

	snapshot := &models.Snapshot{
		Version:   models.SnapshotVersion,
		Timestamp: s.now(),
		System:    models.SnapshotSystem,
		Type:      backupType,
		Data:      *data,
		Metadata: models.SnapshotMetadata{
			TotalInvoices:  len(data.Invoices),
			TotalCustomers: len(data.Customers),
			TotalUsers:     len(data.Users),
			CreatedBy:      createdBy,
			BackupType:     backupType,
		},
	}

	s.logger.WithFields(logrus.Fields{
		"invoices":  snapshot.Metadata.TotalInvoices,
		"customers": snapshot.Metadata.TotalCustomers,
		"users":     snapshot.Metadata.TotalUsers,
		"type":      backupType,
	}).Info("Backup snapshot created")

	return snapshot, nil
}

// ExportFile writes a snapshot to the export directory and records it
// in the history
func (s *backupService) ExportFile(ctx context.Context, snapshot *models.Snapshot) (string, error) {
	if snapshot == nil {
		return "", fmt.Errorf("snapshot cannot be nil")
	}

	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	// The recorded size is part of the file itself, and writing it in
	// changes the length. Re-encode until the value matches the bytes
	// that go to disk; the digit count settles within a few passes.
	for i := 0; i < 4 && snapshot.Metadata.FileSize != int64(len(payload)); i++ {
		snapshot.Metadata.FileSize = int64(len(payload))
		payload, err = json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode snapshot: %w", err)
		}
	}

	path := filepath.Join(s.exportDir, models.BackupFileName(snapshot.Timestamp))
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, payload, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}

	entry := models.BackupHistoryEntry{
		ID:        uuid.New().String(),
		Timestamp: snapshot.Timestamp,
		Type:      snapshot.Type,
		Records:   snapshot.Metadata.TotalInvoices + snapshot.Metadata.TotalCustomers + snapshot.Metadata.TotalUsers,
		Size:      int64(len(payload)),
		FileName:  filepath.Base(path),
	}
	if err := s.appendHistory(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Backup written but history update failed")
	}

	s.logger.WithFields(logrus.Fields{
		"file": path,
		"size": len(payload),
	}).Info("Backup exported")

	return path, nil
}

// ExportEntity writes a single record kind as its own JSON file
func (s *backupService) ExportEntity(ctx context.Context, kind string) (string, error) {
	data, err := s.data.LoadAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load data for export: %w", err)
	}

	var payload interface{}
	switch kind {
	case "invoices":
		payload = data.Invoices
	case "customers":
		payload = data.Customers
	case "users":
		users := make([]models.User, len(data.Users))
		for i := range data.Users {
			users[i] = data.Users[i].Redacted()
		}
		payload = users
	case "settings":
		payload = data.Settings
	default:
		return "", repositories.ValidationError("export", kind,
			fmt.Errorf("unknown entity kind: %s", kind))
	}

	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	name := fmt.Sprintf("fireforce_%s_%s.json", kind, s.now().Format("2006-01-02"))
	path := filepath.Join(s.exportDir, name)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, encoded, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", kind, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write %s export: %w", kind, err)
	}

	return path, nil
}

// History returns the retained backup history, newest first
func (s *backupService) History(ctx context.Context) ([]models.BackupHistoryEntry, error) {
	raw, err := s.data.ActiveStore().State().Get(ctx, backupHistoryKey)
	if err != nil {
		if repositories.IsNotFound(err) {
			return []models.BackupHistoryEntry{}, nil
		}
		return nil, err
	}

	var history []models.BackupHistoryEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("corrupt backup history: %w", err)
	}
	return history, nil
}

func (s *backupService) appendHistory(ctx context.Context, entry models.BackupHistoryEntry) error {
	history, err := s.History(ctx)
	if err != nil {
		// Start fresh rather than lose the new entry
		s.logger.WithError(err).Warn("Resetting backup history")
		history = nil
	}

	history = append([]models.BackupHistoryEntry{entry}, history...)
	if len(history) > models.MaxBackupHistory {
		history = history[:models.MaxBackupHistory]
	}

	encoded, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.data.ActiveStore().State().Set(ctx, backupHistoryKey, string(encoded))
}
