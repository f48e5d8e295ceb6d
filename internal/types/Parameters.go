/*

This file contains the types for the tunable parameters of the world
simulator. Every threshold, probability and range used by the model lives
here so scenario sweeps can adjust them without touching the engine.

*/

package types

import "fmt"

// SimulationParameters holds all tunable knobs for a simulation run.
// Different sets of these parameters can exist for different scenarios.
type SimulationParameters struct {
	// --- Run Shape ---
	HorizonDays     int   `json:"horizon_days"`      // Number of simulated days.
	Seed            int64 `json:"seed"`              // Seed for the single random stream; fixed seed means bit-identical runs.
	NewUsersPerDay  int   `json:"new_users_per_day"` // Default constant growth; a custom GrowthFunc can override per day.
	ReportEveryDays int   `json:"report_every_days"` // Reporting cadence in days. 0 disables periodic reports.

	// --- Pool Seeding ---
	SeedSupply   float64           `json:"seed_supply"`   // Initial basket supply; must be > 0 to make the basket price well-defined.
	SeedBalances map[Asset]float64 `json:"seed_balances"` // Initial backing-asset quantities in the pool.

	// --- Static Oracle Prices (USD per unit) ---
	PriceUSD map[Asset]float64 `json:"price_usd"` // Placeholder constants; a stochastic price process is a future extension.

	// --- Population Model ---
	MinDailyTxnRate        float64           `json:"min_daily_txn_rate"`       // ~1 txn per month.
	MaxDailyTxnRate        float64           `json:"max_daily_txn_rate"`       // ~45 txns per month.
	SingleAssetProbability float64           `json:"single_asset_probability"` // Probability a new user holds exactly one asset.
	UsdtOnlyProbability    float64           `json:"usdt_only_probability"`    // Sequential-threshold branch probability for USDT-only users.
	EthOnlyProbability     float64           `json:"eth_only_probability"`     // Sequential-threshold branch probability for ETH-only users; SOL is the fallback branch.
	SingleAssetMinUSD      float64           `json:"single_asset_min_usd"`     // Uniform dollar range for single-asset holdings.
	SingleAssetMaxUSD      float64           `json:"single_asset_max_usd"`     //
	MultiAssetMinUSD       float64           `json:"multi_asset_min_usd"`      // Uniform dollar range for multi-asset holdings.
	MultiAssetMaxUSD       float64           `json:"multi_asset_max_usd"`      //
	MultiAssetWeights      map[Asset]float64 `json:"multi_asset_weights"`      // Dollar split across backing assets for multi-asset users.

	// --- Fee Model ---
	MinGasFeeUSD        float64 `json:"min_gas_fee_usd"`        // Uniform range for the actual gas cost of a transaction.
	MaxGasFeeUSD        float64 `json:"max_gas_fee_usd"`        //
	GasFeeMultiple      float64 `json:"gas_fee_multiple"`       // Markup multiple charged on top of the actual cost.
	MinAdditionalFeeUSD float64 `json:"min_additional_fee_usd"` // Floor for the markup: charged − actual never drops below this.
	RefundTax           float64 `json:"refund_tax"`             // Share of issued basket tokens withheld from the user's refund.

	// --- Funding Selection ---
	SpendThresholds map[Asset]float64 `json:"spend_thresholds"`   // Minimum usable balance per asset; below all of these the user tops up instead.
	TopUpAmountUSDT float64           `json:"top_up_amount_usdt"` // External replenishment credited when no asset qualifies.

	// --- Deviations ---
	StrictBalances bool `json:"strict_balances"` // Reject settlements that would drive a balance negative. Off by default: the base model allows them.
}

// Validate checks parameter consistency. It is called once at simulator
// construction so bad configuration fails fast instead of mid-run.
func (p SimulationParameters) Validate() error {
	if p.HorizonDays <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", p.HorizonDays)
	}
	if p.NewUsersPerDay < 0 {
		return fmt.Errorf("new users per day cannot be negative, got %d", p.NewUsersPerDay)
	}
	if p.SeedSupply <= 0 {
		return fmt.Errorf("seed basket supply must be positive, got %f", p.SeedSupply)
	}
	for _, a := range BackingAssets() {
		price, ok := p.PriceUSD[a]
		if !ok || price <= 0 {
			return fmt.Errorf("price for %s must be set and positive", a)
		}
	}
	if p.MinDailyTxnRate <= 0 || p.MaxDailyTxnRate < p.MinDailyTxnRate {
		return fmt.Errorf("daily txn rate range [%f, %f] is invalid", p.MinDailyTxnRate, p.MaxDailyTxnRate)
	}
	if p.SingleAssetProbability < 0 || p.SingleAssetProbability > 1 {
		return fmt.Errorf("single asset probability must be in [0, 1], got %f", p.SingleAssetProbability)
	}
	if p.SingleAssetMaxUSD < p.SingleAssetMinUSD || p.SingleAssetMinUSD < 0 {
		return fmt.Errorf("single asset balance range [%f, %f] is invalid", p.SingleAssetMinUSD, p.SingleAssetMaxUSD)
	}
	if p.MultiAssetMaxUSD < p.MultiAssetMinUSD || p.MultiAssetMinUSD < 0 {
		return fmt.Errorf("multi asset balance range [%f, %f] is invalid", p.MultiAssetMinUSD, p.MultiAssetMaxUSD)
	}
	if p.MinGasFeeUSD <= 0 || p.MaxGasFeeUSD < p.MinGasFeeUSD {
		return fmt.Errorf("gas fee range [%f, %f] is invalid", p.MinGasFeeUSD, p.MaxGasFeeUSD)
	}
	if p.GasFeeMultiple < 1 {
		return fmt.Errorf("gas fee multiple must be >= 1, got %f", p.GasFeeMultiple)
	}
	if p.MinAdditionalFeeUSD < 0 {
		return fmt.Errorf("minimum additional fee cannot be negative, got %f", p.MinAdditionalFeeUSD)
	}
	if p.RefundTax < 0 || p.RefundTax > 1 {
		return fmt.Errorf("refund tax must be in [0, 1], got %f", p.RefundTax)
	}
	for _, a := range SpendableAssets() {
		if _, ok := p.SpendThresholds[a]; !ok {
			return fmt.Errorf("spend threshold for %s is not set", a)
		}
	}
	return nil
}
