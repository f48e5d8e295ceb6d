package sim

import (
	"github.com/rs/zerolog"

	"github.com/auth-labs/worldsim/internal/logger"
	"github.com/auth-labs/worldsim/internal/types"
)

// LogReporter emits day reports through the structured logger. It is the
// default metrics sink; the console output mirrors the aggregate fields
// the protocol team watches during scenario sweeps.
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter creates a reporter writing to the component logger.
func NewLogReporter() *LogReporter {
	return &LogReporter{logger: logger.GetForComponent("sim_report")}
}

// ReportDay logs one aggregate day snapshot.
func (r *LogReporter) ReportDay(snapshot types.DaySnapshot) {
	r.logger.Info().
		Int("day", snapshot.Day).
		Int("activeUsers", snapshot.ActiveUsers).
		Int64("totalTransactions", snapshot.TotalTransactions).
		Int64("totalTopUps", snapshot.TotalTopUps).
		Float64("basketSupply", snapshot.BasketSupply).
		Float64("basketPriceUSD", snapshot.BasketPriceUSD).
		Float64("poolValueUSD", snapshot.PoolValueUSD).
		Msg("Day report")
}
