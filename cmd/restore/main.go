package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"fireforce-invoice-api/internal/config"
	"fireforce-invoice-api/internal/database"
	"fireforce-invoice-api/internal/repositories/localstore"
	"fireforce-invoice-api/internal/repositories/sqlite"
	"fireforce-invoice-api/internal/services"
)

// Offline backup tool: validate a backup file, or restore it into the
// database while the server is down.
func main() {
	var (
		dbPath     = flag.String("db", "./data/fireforce.db", "Database file path")
		backupFile = flag.String("file", "", "Backup file path")
		action     = flag.String("action", "validate", "Action: validate, restore")
		confirm    = flag.Bool("confirm", false, "Required for restore; it replaces all data")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *backupFile == "" {
		logger.Fatal("A backup file is required, pass -file")
	}

	absFile, err := filepath.Abs(*backupFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute backup file path")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	switch *action {
	case "validate":
		if err := validateBackup(absFile, cfg); err != nil {
			logger.WithError(err).Fatal("Validation failed")
		}
	case "restore":
		if !*confirm {
			logger.Fatal("Restoring replaces all data; repeat with -confirm")
		}
		if err := restoreBackup(absFile, *dbPath, cfg, logger); err != nil {
			logger.WithError(err).Fatal("Restore failed")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: validate, restore")
	}
}

func validateBackup(path string, cfg *config.Config) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	raw, err := services.ParseSnapshot(payload)
	if err != nil {
		return err
	}

	result := services.ValidateSnapshot(raw, cfg.Office, time.Now())

	fmt.Printf("Backup file: %s\n", path)
	fmt.Printf("  Valid: %t\n", result.IsValid)
	fmt.Printf("  Invoices: %d, Customers: %d, Users: %d\n",
		result.Summary.Invoices, result.Summary.Customers, result.Summary.Users)
	for _, message := range result.Errors {
		fmt.Printf("  ERROR: %s\n", message)
	}
	for _, message := range result.Warnings {
		fmt.Printf("  WARNING: %s\n", message)
	}

	if !result.IsValid {
		return fmt.Errorf("backup file failed validation")
	}
	return nil
}

func restoreBackup(path, dbPath string, cfg *config.Config, logger *logrus.Logger) error {
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute database path: %w", err)
	}

	db, err := database.InitializeDatabase(absDBPath, "./migrations", logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	primary := sqlite.NewStore(db, logger)
	local, err := localstore.NewStore(cfg.LocalStore.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize local store: %w", err)
	}

	data := services.NewDataService(primary, local, logger)
	restore := services.NewRestoreService(data, cfg.Office, cfg.Backup.RestoredUserPassword,
		func(progress services.RestoreProgress) {
			fmt.Printf("  [%3d%%] %s %s\n", progress.Percent, progress.Phase, progress.Message)
		}, logger)

	result, err := restore.RestoreFromFile(context.Background(), path)
	if err != nil {
		return err
	}

	fmt.Printf("Restore completed: %d invoices, %d customers, %d users\n",
		result.Invoices, result.Customers, result.Users)
	for _, warning := range result.Warnings {
		fmt.Printf("  WARNING: %s\n", warning)
	}
	return nil
}
