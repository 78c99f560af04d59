package sqlite

import (
	"context"
	"database/sql"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SettingsRepository implements the repositories.SettingsRepository
// interface for SQLite. Settings are a single row with a fixed ID.
type SettingsRepository struct {
	baseRepository
}

// NewSettingsRepository creates a new SQLite settings repository
func NewSettingsRepository(db *sql.DB, logger *logrus.Logger) repositories.SettingsRepository {
	return &SettingsRepository{
		baseRepository: newBaseRepository(db, "settings", logger),
	}
}

// Get retrieves the settings, or defaults if none have been saved
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	row := r.executeQueryRow(ctx, "get", "SELECT tax_rate FROM settings WHERE id = 1")

	settings := &models.Settings{}
	if err := row.Scan(&settings.TaxRate); err != nil {
		if err == sql.ErrNoRows {
			return models.DefaultSettings(), nil
		}
		return nil, repositories.NewRepositoryError("get", "settings", "", err)
	}

	return settings, nil
}

// Save creates or replaces the settings record
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	if err := settings.Validate(); err != nil {
		return repositories.ValidationError("settings", "", err)
	}

	query := `
		INSERT INTO settings (id, tax_rate) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET tax_rate = excluded.tax_rate`

	_, err := r.executeExec(ctx, "save", query, settings.TaxRate)
	return err
}

// StateRepository implements the repositories.StateRepository interface
// for SQLite as a plain key-value table
type StateRepository struct {
	baseRepository
}

// NewStateRepository creates a new SQLite state repository
func NewStateRepository(db *sql.DB, logger *logrus.Logger) repositories.StateRepository {
	return &StateRepository{
		baseRepository: newBaseRepository(db, "app_state", logger),
	}
}

// Get retrieves the value for a key
func (r *StateRepository) Get(ctx context.Context, key string) (string, error) {
	row := r.executeQueryRow(ctx, "get", "SELECT value FROM app_state WHERE key = ?", key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", repositories.NotFoundError("state", key)
		}
		return "", repositories.NewRepositoryError("get", "state", key, err)
	}

	return value, nil
}

// Set creates or replaces the value for a key
func (r *StateRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	_, err := r.executeExec(ctx, "set", query, key, value)
	return err
}

// Delete removes a key; deleting an absent key is not an error
func (r *StateRepository) Delete(ctx context.Context, key string) error {
	_, err := r.executeExec(ctx, "delete", "DELETE FROM app_state WHERE key = ?", key)
	return err
}
