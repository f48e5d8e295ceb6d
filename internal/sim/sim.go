/*

This file contains the simulation driver: the day loop that grows the
population, runs the transaction engine over every active user, and emits
periodic aggregate reports.

The loop is strictly sequential. Pool state mutated by one user's
settlement affects the basket price seen by the next, so user processing
must not be parallelized; a fixed seed therefore yields bit-identical runs.

*/

package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/auth-labs/worldsim/internal/engine"
	"github.com/auth-labs/worldsim/internal/logger"
	"github.com/auth-labs/worldsim/internal/oracle"
	"github.com/auth-labs/worldsim/internal/pool"
	"github.com/auth-labs/worldsim/internal/population"
	"github.com/auth-labs/worldsim/internal/types"
)

// Reporter receives the periodic aggregate reports. Implementations must
// treat the snapshot as read-only.
type Reporter interface {
	ReportDay(snapshot types.DaySnapshot)
}

// Simulator drives a single world-simulation run.
type Simulator struct {
	logger     zerolog.Logger
	params     types.SimulationParameters
	population *population.Population
	engine     *engine.Engine
	pool       *pool.CollateralPool
	reporter   Reporter

	snapshots []types.DaySnapshot
}

// Config holds the dependencies for creating a Simulator.
type Config struct {
	Params     types.SimulationParameters
	Population *population.Population
	Engine     *engine.Engine
	Pool       *pool.CollateralPool
	Reporter   Reporter // optional; nil disables reporting
}

// New creates a simulator with dependency injection.
func New(cfg Config) (*Simulator, error) {
	if err := validateSimConfig(cfg); err != nil {
		return nil, fmt.Errorf("simulator configuration validation failed: %w", err)
	}
	return &Simulator{
		logger:     logger.GetForComponent("sim_driver"),
		params:     cfg.Params,
		population: cfg.Population,
		engine:     cfg.Engine,
		pool:       cfg.Pool,
		reporter:   cfg.Reporter,
	}, nil
}

// NewFromParameters wires up the full component graph for a run: one
// seeded random stream shared by the population model and the engine, a
// static oracle, and a freshly seeded pool.
func NewFromParameters(params types.SimulationParameters, growth population.GrowthFunc, reporter Reporter) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(params.Seed))

	prices, err := oracle.NewStatic(params.PriceUSD)
	if err != nil {
		return nil, err
	}
	cp, err := pool.New(prices, params.SeedBalances, params.SeedSupply)
	if err != nil {
		return nil, err
	}
	pop, err := population.New(params, prices, rng, growth)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(engine.Config{
		Params: params,
		Prices: prices,
		Pool:   cp,
		Rng:    rng,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Params:     params,
		Population: pop,
		Engine:     eng,
		Pool:       cp,
		Reporter:   reporter,
	})
}

// validateSimConfig validates the simulator configuration.
func validateSimConfig(cfg Config) error {
	if cfg.Population == nil {
		return fmt.Errorf("population cannot be nil")
	}
	if cfg.Engine == nil {
		return fmt.Errorf("engine cannot be nil")
	}
	if cfg.Pool == nil {
		return fmt.Errorf("pool cannot be nil")
	}
	return cfg.Params.Validate()
}

// Run executes the full day loop and returns the run summary.
func (s *Simulator) Run(ctx context.Context) (types.RunSummary, error) {
	runID := uuid.New().String()
	runLogger := s.logger.With().Str("run_id", runID).Logger()
	start := time.Now()

	runLogger.Info().
		Int("horizonDays", s.params.HorizonDays).
		Int64("seed", s.params.Seed).
		Msg("--- Starting simulation run ---")

	for day := 0; day < s.params.HorizonDays; day++ {
		if err := ctx.Err(); err != nil {
			return types.RunSummary{}, fmt.Errorf("run aborted on day %d: %w", day, err)
		}

		if _, err := s.population.SpawnDay(day); err != nil {
			return types.RunSummary{}, err
		}

		// Every user active at the start of the day is processed exactly
		// once, in insertion order.
		for _, user := range s.population.Users() {
			if _, err := s.engine.ProcessUser(user, day); err != nil {
				return types.RunSummary{}, fmt.Errorf("day %d user %s: %w", day, user.ID, err)
			}
		}

		if s.params.ReportEveryDays > 0 && (day+1)%s.params.ReportEveryDays == 0 {
			snapshot, err := s.Snapshot(day + 1)
			if err != nil {
				return types.RunSummary{}, err
			}
			s.snapshots = append(s.snapshots, snapshot)
			if s.reporter != nil {
				s.reporter.ReportDay(snapshot)
			}
		}
	}

	summary, err := s.buildSummary(runID, start)
	if err != nil {
		return types.RunSummary{}, err
	}

	runLogger.Info().
		Int("activeUsers", summary.ActiveUsers).
		Int64("totalTransactions", summary.TotalTransactions).
		Int64("totalTopUps", summary.TotalTopUps).
		Float64("basketSupply", summary.BasketSupply).
		Float64("basketPriceUSD", summary.BasketPriceUSD).
		Float64("poolValueUSD", summary.PoolValueUSD).
		Float64("elapsedSeconds", summary.ElapsedSeconds).
		Msg("--- Simulation run complete ---")

	return summary, nil
}

// Snapshot builds a read-only view of aggregate state for the given
// 1-based day number. It never perturbs simulation state.
func (s *Simulator) Snapshot(day int) (types.DaySnapshot, error) {
	value, err := s.pool.DollarValue()
	if err != nil {
		return types.DaySnapshot{}, err
	}
	price, err := s.pool.BasketPrice()
	if err != nil {
		return types.DaySnapshot{}, err
	}
	return types.DaySnapshot{
		Day:               day,
		ActiveUsers:       s.population.Size(),
		TotalTransactions: s.engine.TotalTransactions(),
		TotalTopUps:       s.engine.TotalTopUps(),
		BasketSupply:      s.pool.Supply(),
		BasketPriceUSD:    price,
		PoolValueUSD:      value,
		PoolBalances:      s.pool.Balances(),
	}, nil
}

// DaySnapshots returns the snapshots captured at the reporting cadence
// during the last Run.
func (s *Simulator) DaySnapshots() []types.DaySnapshot {
	return s.snapshots
}

func (s *Simulator) buildSummary(runID string, start time.Time) (types.RunSummary, error) {
	value, err := s.pool.DollarValue()
	if err != nil {
		return types.RunSummary{}, err
	}
	price, err := s.pool.BasketPrice()
	if err != nil {
		return types.RunSummary{}, err
	}
	return types.RunSummary{
		RunID:             runID,
		Seed:              s.params.Seed,
		HorizonDays:       s.params.HorizonDays,
		StartedAt:         start,
		ElapsedSeconds:    time.Since(start).Seconds(),
		ActiveUsers:       s.population.Size(),
		TotalTransactions: s.engine.TotalTransactions(),
		TotalTopUps:       s.engine.TotalTopUps(),
		TotalRejected:     s.engine.TotalRejected(),
		BasketSupply:      s.pool.Supply(),
		BasketPriceUSD:    price,
		PoolValueUSD:      value,
	}, nil
}
