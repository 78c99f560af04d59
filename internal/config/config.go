package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"fireforce-invoice-api/internal/models"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Database    DatabaseConfig
	LocalStore  LocalStoreConfig
	Backup      BackupConfig
	JWT         JWTConfig
	Office      models.OfficeInfo
	Accounts    AccountsConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
}

// LocalStoreConfig holds the offline fallback store configuration
type LocalStoreConfig struct {
	Path string
}

// BackupConfig holds backup and restore configuration
type BackupConfig struct {
	ExportDir string
	// RestoredUserPassword is assigned to every salesman account
	// recreated from a backup
	RestoredUserPassword string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// FixedAccount describes one of the accounts created at startup
type FixedAccount struct {
	Username string
	Name     string
	Password string
}

// AccountsConfig holds the fixed office and admin accounts. They are
// supplied by the environment, never hardcoded, and a restore never
// touches them.
type AccountsConfig struct {
	Office FixedAccount
	Admin  FixedAccount
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_CONNECTION_STRING", "./data/fireforce.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 25)
	viper.SetDefault("LOCAL_STORE_PATH", "./data/local")
	viper.SetDefault("BACKUP_EXPORT_DIR", "./data/backups")
	viper.SetDefault("RESTORED_USER_PASSWORD", "changeme")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("OFFICE_COMPANY_NAME", "Fire Force")
	viper.SetDefault("OFFICE_USERNAME", "office")
	viper.SetDefault("ADMIN_USERNAME", "admin")

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Database: DatabaseConfig{
			ConnectionString: viper.GetString("DB_CONNECTION_STRING"),
			MaxOpenConns:     viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:     viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		LocalStore: LocalStoreConfig{
			Path: viper.GetString("LOCAL_STORE_PATH"),
		},
		Backup: BackupConfig{
			ExportDir:            viper.GetString("BACKUP_EXPORT_DIR"),
			RestoredUserPassword: viper.GetString("RESTORED_USER_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Office: models.OfficeInfo{
			CompanyName:    viper.GetString("OFFICE_COMPANY_NAME"),
			Address:        viper.GetString("OFFICE_ADDRESS"),
			Phone:          viper.GetString("OFFICE_PHONE"),
			EmergencyPhone: viper.GetString("OFFICE_EMERGENCY_PHONE"),
			Email:          viper.GetString("OFFICE_EMAIL"),
			ServiceEmail:   viper.GetString("OFFICE_SERVICE_EMAIL"),
			Username:       viper.GetString("OFFICE_USERNAME"),
		},
		Accounts: AccountsConfig{
			Office: FixedAccount{
				Username: viper.GetString("OFFICE_USERNAME"),
				Name:     viper.GetString("OFFICE_COMPANY_NAME"),
				Password: viper.GetString("OFFICE_PASSWORD"),
			},
			Admin: FixedAccount{
				Username: viper.GetString("ADMIN_USERNAME"),
				Name:     "Administrator",
				Password: viper.GetString("ADMIN_PASSWORD"),
			},
		},
	}

	return config, nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
