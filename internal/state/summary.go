package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// FleetSummary represents high-level statistics across all stored runs.
type FleetSummary struct {
	TotalRuns         int     `json:"total_runs"`
	TotalTransactions int64   `json:"total_transactions"`
	TotalTopUps       int64   `json:"total_top_ups"`
	AvgBasketPriceUSD float64 `json:"avg_basket_price_usd"`
	MaxPoolValueUSD   float64 `json:"max_pool_value_usd"`
	LastRunStartedAt  string  `json:"last_run_started_at"`
}

// GetFleetSummary retrieves aggregated statistics across all stored runs.
func GetFleetSummary() (*FleetSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	summary := &FleetSummary{}

	query := `
		SELECT
			COUNT(*) AS total_runs,
			COALESCE(SUM(total_transactions), 0) AS total_transactions,
			COALESCE(SUM(total_top_ups), 0) AS total_top_ups,
			COALESCE(AVG(basket_price_usd), 0) AS avg_basket_price,
			COALESCE(MAX(pool_value_usd), 0) AS max_pool_value
		FROM sim_runs
	`
	err := DB.QueryRow(query).Scan(
		&summary.TotalRuns,
		&summary.TotalTransactions,
		&summary.TotalTopUps,
		&summary.AvgBasketPriceUSD,
		&summary.MaxPoolValueUSD,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet summary: %w", err)
	}

	var lastStarted sql.NullString
	err = DB.QueryRow(`SELECT MAX(started_at)::text FROM sim_runs`).Scan(&lastStarted)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last run time: %w", err)
	}
	if lastStarted.Valid {
		summary.LastRunStartedAt = lastStarted.String
	}

	log.Debug().Int("totalRuns", summary.TotalRuns).Msg("Retrieved fleet summary")
	return summary, nil
}
