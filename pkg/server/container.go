package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fireforce-invoice-api/internal/config"
	"fireforce-invoice-api/internal/database"
	"fireforce-invoice-api/internal/middleware"
	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/repositories"
	"fireforce-invoice-api/internal/repositories/localstore"
	"fireforce-invoice-api/internal/repositories/sqlite"
	"fireforce-invoice-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *logrus.Logger
	DataService    services.DataService
	AuthService    services.AuthService
	BackupService  services.BackupService
	RestoreService services.RestoreService
	Scheduler      services.BackupScheduler
	TokenService   *middleware.TokenService

	db *sql.DB
}

// NewContainer wires up the whole application: storage backends, the
// data layer with its local fallback, backup and restore, and the
// scheduler
func NewContainer(cfg *config.Config) (*Container, error) {
	logger := newLogger(cfg)

	db, err := database.InitializeDatabase(cfg.Database.ConnectionString, "./migrations", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	primary := sqlite.NewStore(db, logger)

	local, err := localstore.NewStore(cfg.LocalStore.Path, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}

	dataService := services.NewDataService(primary, local, logger)

	tokenService := middleware.NewTokenService(&middleware.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	})

	authService := services.NewAuthService(dataService, tokenService, logger)

	backupService := services.NewBackupService(dataService, cfg.Office, cfg.Backup.ExportDir, logger)
	restoreService := services.NewRestoreService(dataService, cfg.Office, cfg.Backup.RestoredUserPassword, nil, logger)

	// Automatic backups snapshot and export exactly like a manual one
	runner := func(ctx context.Context) error {
		snapshot, err := backupService.CreateSnapshot(ctx, "system", models.BackupAutomatic)
		if err != nil {
			return err
		}
		_, err = backupService.ExportFile(ctx, snapshot)
		return err
	}

	scheduler := services.NewBackupScheduler(primary.State(), runner, time.Now, logger)

	container := &Container{
		Config:         cfg,
		Logger:         logger,
		DataService:    dataService,
		AuthService:    authService,
		BackupService:  backupService,
		RestoreService: restoreService,
		Scheduler:      scheduler,
		TokenService:   tokenService,
		db:             db,
	}

	if err := container.seedFixedAccounts(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed fixed accounts: %w", err)
	}

	return container, nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}

// seedFixedAccounts creates the office and admin accounts on first
// start. Existing accounts are left alone so operator password changes
// survive restarts.
func (c *Container) seedFixedAccounts(ctx context.Context) error {
	accounts := []struct {
		fixed config.FixedAccount
		role  models.Role
	}{
		{c.Config.Accounts.Office, models.RoleOffice},
		{c.Config.Accounts.Admin, models.RoleAdmin},
	}

	store := c.DataService.ActiveStore()
	for _, account := range accounts {
		if account.fixed.Username == "" {
			continue
		}

		_, err := store.Users().GetByUsername(ctx, account.fixed.Username)
		if err == nil {
			continue
		}
		if !repositories.IsNotFound(err) {
			return err
		}

		if account.fixed.Password == "" {
			c.Logger.WithField("username", account.fixed.Username).
				Warn("Fixed account has no configured password, skipping creation")
			continue
		}

		user := models.NewUser(account.fixed.Username, account.fixed.Name, account.role)
		if err := user.SetPassword(account.fixed.Password); err != nil {
			return err
		}
		if err := store.Users().Create(ctx, user); err != nil {
			return err
		}
		c.Logger.WithFields(logrus.Fields{
			"username": account.fixed.Username,
			"role":     account.role,
		}).Info("Created fixed account")
	}

	return nil
}

// newLogger builds the application logger from configuration
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
