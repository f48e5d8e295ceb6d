// ./internal/state/runs_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/auth-labs/worldsim/internal/types"
)

// SaveRun saves a completed run summary with its parameter set and
// captured day snapshots. It returns the run's database key.
func SaveRun(summary types.RunSummary, params types.SimulationParameters, days []types.DaySnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal parameters: %w", err)
	}

	query := `
		INSERT INTO sim_runs (
			run_id, seed, horizon_days, started_at, elapsed_seconds,
			active_users, total_transactions, total_top_ups, total_rejected,
			basket_supply, basket_price_usd, pool_value_usd, parameters
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING run_pk;
	`

	var runPK int64
	err = DB.QueryRow(
		query,
		summary.RunID, summary.Seed, summary.HorizonDays, summary.StartedAt, summary.ElapsedSeconds,
		summary.ActiveUsers, summary.TotalTransactions, summary.TotalTopUps, summary.TotalRejected,
		summary.BasketSupply, summary.BasketPriceUSD, summary.PoolValueUSD, paramsJSON,
	).Scan(&runPK)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	for _, day := range days {
		if err := saveDaySnapshot(runPK, day); err != nil {
			return 0, err
		}
	}

	log.Info().
		Int64("run_pk", runPK).
		Str("run_id", summary.RunID).
		Int("day_snapshots", len(days)).
		Msg("Run saved to results store")

	return runPK, nil
}

// saveDaySnapshot saves one day snapshot for a stored run.
func saveDaySnapshot(runPK int64, day types.DaySnapshot) error {
	balancesJSON, err := json.Marshal(day.PoolBalances)
	if err != nil {
		return fmt.Errorf("failed to marshal pool balances: %w", err)
	}

	query := `
		INSERT INTO sim_day_snapshots (
			run_pk, day, active_users, total_transactions, total_top_ups,
			basket_supply, basket_price_usd, pool_value_usd, pool_balances
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = DB.Exec(
		query,
		runPK, day.Day, day.ActiveUsers, day.TotalTransactions, day.TotalTopUps,
		day.BasketSupply, day.BasketPriceUSD, day.PoolValueUSD, balancesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save day snapshot for day %d: %w", day.Day, err)
	}
	return nil
}

// GetRecentRuns retrieves recent run summaries, newest first.
func GetRecentRuns(limit int) ([]types.RunSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT
			run_id, seed, horizon_days, started_at, elapsed_seconds,
			active_users, total_transactions, total_top_ups, total_rejected,
			basket_supply, basket_price_usd, pool_value_usd
		FROM sim_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent runs")
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunSummary
	for rows.Next() {
		var run types.RunSummary
		err := rows.Scan(
			&run.RunID, &run.Seed, &run.HorizonDays, &run.StartedAt, &run.ElapsedSeconds,
			&run.ActiveUsers, &run.TotalTransactions, &run.TotalTopUps, &run.TotalRejected,
			&run.BasketSupply, &run.BasketPriceUSD, &run.PoolValueUSD,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan run row")
			continue // Skip this row and continue with others
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error occurred during row iteration")
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return runs, nil
}

// GetRunByID retrieves a run summary by its public run id.
func GetRunByID(runID string) (*types.RunSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT
			run_id, seed, horizon_days, started_at, elapsed_seconds,
			active_users, total_transactions, total_top_ups, total_rejected,
			basket_supply, basket_price_usd, pool_value_usd
		FROM sim_runs
		WHERE run_id = $1
	`

	var run types.RunSummary
	err := DB.QueryRow(query, runID).Scan(
		&run.RunID, &run.Seed, &run.HorizonDays, &run.StartedAt, &run.ElapsedSeconds,
		&run.ActiveUsers, &run.TotalTransactions, &run.TotalTopUps, &run.TotalRejected,
		&run.BasketSupply, &run.BasketPriceUSD, &run.PoolValueUSD,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		log.Error().Err(err).Str("run_id", runID).Msg("Failed to query run by id")
		return nil, fmt.Errorf("failed to query run by id: %w", err)
	}

	return &run, nil
}

// GetRunDays retrieves the stored day snapshots for a run, in day order.
func GetRunDays(runID string) ([]types.DaySnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT
			d.day, d.active_users, d.total_transactions, d.total_top_ups,
			d.basket_supply, d.basket_price_usd, d.pool_value_usd, d.pool_balances
		FROM sim_day_snapshots d
		JOIN sim_runs r ON r.run_pk = d.run_pk
		WHERE r.run_id = $1
		ORDER BY d.day ASC
	`

	rows, err := DB.Query(query, runID)
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("Failed to query run days")
		return nil, fmt.Errorf("failed to query run days: %w", err)
	}
	defer rows.Close()

	var days []types.DaySnapshot
	for rows.Next() {
		var day types.DaySnapshot
		var balancesJSON []byte
		err := rows.Scan(
			&day.Day, &day.ActiveUsers, &day.TotalTransactions, &day.TotalTopUps,
			&day.BasketSupply, &day.BasketPriceUSD, &day.PoolValueUSD, &balancesJSON,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan day snapshot row")
			continue
		}
		if len(balancesJSON) > 0 {
			if err := json.Unmarshal(balancesJSON, &day.PoolBalances); err != nil {
				log.Error().Err(err).Int("day", day.Day).Msg("Failed to unmarshal pool balances")
				continue
			}
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return days, nil
}
