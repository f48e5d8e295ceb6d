package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. The simulator itself needs none of these; they only control
// the optional results store and dashboard around it, so every variable
// has a usable default.
var (
	// LogLevel is the zerolog level name ("debug", "info", ...).
	LogLevel string

	// ResultsDBEnabled turns on persistence of run results to PostgreSQL.
	ResultsDBEnabled bool
	// DBHost, DBPort, DBUser, DBPassword, DBName, DBSSLMode configure the
	// results database connection.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// WebEnabled turns on the read-only results dashboard.
	WebEnabled bool
	// WebPort is the listen port for the dashboard.
	WebPort string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Missing variables fall back to defaults.
func LoadConfig() error {
	log.Debug().Msg("Loading application configuration from environment variables...")

	LogLevel = getEnvOr("LOG_LEVEL", "info")

	var err error
	ResultsDBEnabled, err = getEnvAsBoolOr("SIM_RESULTS_DB", false)
	if err != nil {
		return err
	}
	DBHost = getEnvOr("DB_HOST", "localhost")
	DBPort, err = getEnvAsIntOr("DB_PORT", 5432)
	if err != nil {
		return err
	}
	DBUser = getEnvOr("DB_USER", "worldsim")
	DBPassword = getEnvOr("DB_PASSWORD", "")
	DBName = getEnvOr("DB_NAME", "worldsim")
	DBSSLMode = getEnvOr("DB_SSLMODE", "disable")

	WebEnabled, err = getEnvAsBoolOr("SIM_WEB", false)
	if err != nil {
		return err
	}
	WebPort = getEnvOr("WEB_PORT", "8080")

	log.Debug().
		Bool("resultsDB", ResultsDBEnabled).
		Bool("web", WebEnabled).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnvOr retrieves a string environment variable with a default.
func getEnvOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsIntOr retrieves an environment variable as an int with a default.
// Returns an error if set but invalid.
func getEnvAsIntOr(key string, fallback int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsInt64Or retrieves an environment variable as an int64 with a default.
func getEnvAsInt64Or(key string, fallback int64) (int64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsBoolOr retrieves an environment variable as a bool with a default.
func getEnvAsBoolOr(key string, fallback bool) (bool, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, errors.New("environment variable " + key + " must be a valid bool, got: " + valueStr)
	}
	return value, nil
}
