package config

import (
	"fmt"
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config holds server settings read from the environment
type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	AuthJWKSURL string
	CORSOrigins string
	TablePrefix string
	AutoMigrate bool
	// Storage
	StorageDir    string
	PublicBaseURL string
	// Logging
	LogDir      string
	LogMaxFiles int
	// DevUserID skips JWT verification in dev. Ignored in other environments.
	DevUserID string
}

// Load reads the configuration from environment variables with defaults
func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	port := getEnv("PORT", "8080")

	cfg := &Config{
		Port:          port,
		Environment:   env,
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AuthJWKSURL:   getEnv("AUTH_JWKS_URL", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:   getTablePrefix(env),
		AutoMigrate:   getEnv("AUTO_MIGRATE", "false") == "true",
		StorageDir:    getEnv("STORAGE_DIR", "./data/uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
		LogDir:        getEnv("LOG_DIR", ""),
		LogMaxFiles:   getEnvInt("LOG_MAX_FILES", 10),
	}

	if env == "dev" {
		cfg.DevUserID = getEnv("DEV_USER_ID", "")
	}

	return cfg
}

// Validate checks the settings the server cannot start without.
// A JWKS URL is only optional when a dev user is configured.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Environment, validation.Required, validation.In("dev", "test", "prod")),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.AuthJWKSURL, validation.When(c.DevUserID == "", validation.Required), is.URL),
		validation.Field(&c.StorageDir, validation.Required),
		validation.Field(&c.PublicBaseURL, validation.Required, is.URL),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
