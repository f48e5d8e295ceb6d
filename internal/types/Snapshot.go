package types

import "time"

// DaySnapshot is a read-only view of aggregate simulation state at the end
// of a day. Taking one never perturbs the run.
type DaySnapshot struct {
	Day               int               `json:"day"` // 1-based day number, matching the report cadence.
	ActiveUsers       int               `json:"active_users"`
	TotalTransactions int64             `json:"total_transactions"`
	TotalTopUps       int64             `json:"total_top_ups"`
	BasketSupply      float64           `json:"basket_supply"`
	BasketPriceUSD    float64           `json:"basket_price_usd"`
	PoolValueUSD      float64           `json:"pool_value_usd"`
	PoolBalances      map[Asset]float64 `json:"pool_balances"`
}

// RunSummary captures the outcome of a complete simulation run.
type RunSummary struct {
	RunID             string    `json:"run_id"`
	Seed              int64     `json:"seed"`
	HorizonDays       int       `json:"horizon_days"`
	StartedAt         time.Time `json:"started_at"`
	ElapsedSeconds    float64   `json:"elapsed_seconds"`
	ActiveUsers       int       `json:"active_users"`
	TotalTransactions int64     `json:"total_transactions"`
	TotalTopUps       int64     `json:"total_top_ups"`
	TotalRejected     int64     `json:"total_rejected"` // Only populated in strict balance mode.
	BasketSupply      float64   `json:"basket_supply"`
	BasketPriceUSD    float64   `json:"basket_price_usd"`
	PoolValueUSD      float64   `json:"pool_value_usd"`
}
