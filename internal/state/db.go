// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool for the results store.
//
// The store only records completed runs for scenario comparison; the
// simulator itself never reads from or writes to it mid-run.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(10)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL results store!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS sim_runs (
			run_pk SERIAL PRIMARY KEY,
			run_id UUID NOT NULL UNIQUE,
			seed BIGINT NOT NULL,
			horizon_days INTEGER NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			elapsed_seconds DOUBLE PRECISION NOT NULL,
			active_users INTEGER NOT NULL,
			total_transactions BIGINT NOT NULL,
			total_top_ups BIGINT NOT NULL,
			total_rejected BIGINT NOT NULL DEFAULT 0,
			basket_supply DOUBLE PRECISION NOT NULL,
			basket_price_usd DOUBLE PRECISION NOT NULL,
			pool_value_usd DOUBLE PRECISION NOT NULL,
			parameters JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_sim_runs_started_at ON sim_runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS sim_day_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			run_pk INTEGER NOT NULL REFERENCES sim_runs(run_pk) ON DELETE CASCADE,
			day INTEGER NOT NULL,
			active_users INTEGER NOT NULL,
			total_transactions BIGINT NOT NULL,
			total_top_ups BIGINT NOT NULL,
			basket_supply DOUBLE PRECISION NOT NULL,
			basket_price_usd DOUBLE PRECISION NOT NULL,
			pool_value_usd DOUBLE PRECISION NOT NULL,
			pool_balances JSONB,
			CONSTRAINT uq_sim_day_snapshots_run_day UNIQUE (run_pk, day)
		);
		CREATE INDEX IF NOT EXISTS idx_sim_day_snapshots_run ON sim_day_snapshots(run_pk, day);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Results store schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
