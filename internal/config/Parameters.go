/*

This file contains the default parameters for the world simulator.

The values mirror the protocol team's baseline scenario: a 30-day run with
constant user growth, static oracle prices, and the fee/refund schedule of
the paymaster service.

*/

package config

import (
	"github.com/auth-labs/worldsim/internal/types"
)

// DefaultSimulationParameters provides the baseline scenario for the
// simulator. Scenario sweeps start from this set and override individual
// knobs, either in code or through the SIM_* environment variables.
var DefaultSimulationParameters = types.SimulationParameters{
	// --- Run Shape ---
	HorizonDays:     30,
	Seed:            1,
	NewUsersPerDay:  10000, // Constant growth for now; the growth function is an extension point.
	ReportEveryDays: 30,

	// --- Pool Seeding ---
	// One stablecoin unit and one basket unit keep the basket price
	// well-defined from day zero.
	SeedSupply: 1,
	SeedBalances: map[types.Asset]float64{
		types.USDT: 1,
		types.ETH:  0,
		types.SOL:  0,
	},

	// --- Static Oracle Prices ---
	PriceUSD: map[types.Asset]float64{
		types.USDT: 1,
		types.ETH:  3200, // TODO: simulate price changes
		types.SOL:  130,  // TODO: simulate price changes
	},

	// --- Population Model ---
	MinDailyTxnRate:        0.03, // approximately 1 txn per month
	MaxDailyTxnRate:        1.5,  // approximately 45 txns per month
	SingleAssetProbability: 0.9,
	UsdtOnlyProbability:    0.5,
	EthOnlyProbability:     0.25, // SOL-only is the fallback branch
	SingleAssetMinUSD:      10,
	SingleAssetMaxUSD:      1000,
	MultiAssetMinUSD:       50,
	MultiAssetMaxUSD:       10000,
	MultiAssetWeights: map[types.Asset]float64{
		types.USDT: 0.5,
		types.ETH:  0.25,
		types.SOL:  0.25,
	},

	// --- Fee Model ---
	MinGasFeeUSD:        0.1,
	MaxGasFeeUSD:        1.0,
	GasFeeMultiple:      2,
	MinAdditionalFeeUSD: 0.2,
	RefundTax:           0.1, // we only return 90% of the refund to the user

	// --- Funding Selection ---
	SpendThresholds: map[types.Asset]float64{
		types.USDT: 5,
		types.ETH:  0.01,
		types.SOL:  0.01,
		types.AUTH: 10,
	},
	TopUpAmountUSDT: 50, // only USDT top-ups for now

	// --- Deviations ---
	StrictBalances: false,
}

// LoadSimulationParameters returns the default parameters with any SIM_*
// environment overrides applied. Overrides cover the scenario-sweep knobs;
// the full parameter set is adjusted in code.
func LoadSimulationParameters() (types.SimulationParameters, error) {
	params := DefaultSimulationParameters

	var err error
	params.HorizonDays, err = getEnvAsIntOr("SIM_DAYS", params.HorizonDays)
	if err != nil {
		return params, err
	}
	params.Seed, err = getEnvAsInt64Or("SIM_SEED", params.Seed)
	if err != nil {
		return params, err
	}
	params.NewUsersPerDay, err = getEnvAsIntOr("SIM_NEW_USERS_PER_DAY", params.NewUsersPerDay)
	if err != nil {
		return params, err
	}
	params.ReportEveryDays, err = getEnvAsIntOr("SIM_REPORT_EVERY", params.ReportEveryDays)
	if err != nil {
		return params, err
	}
	params.StrictBalances, err = getEnvAsBoolOr("SIM_STRICT_BALANCES", params.StrictBalances)
	if err != nil {
		return params, err
	}

	return params, params.Validate()
}
