package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/auth-labs/worldsim/internal/config"
	"github.com/auth-labs/worldsim/internal/logger"
	"github.com/auth-labs/worldsim/internal/sim"
	"github.com/auth-labs/worldsim/internal/state"
	"github.com/auth-labs/worldsim/internal/web"
)

// main is the entry point for the worldsim simulator.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(config.LogLevel)
	log.Info().Msg("Worldsim starting...")

	params, err := config.LoadSimulationParameters()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load simulation parameters")
	}
	log.Info().
		Int("horizonDays", params.HorizonDays).
		Int64("seed", params.Seed).
		Int("newUsersPerDay", params.NewUsersPerDay).
		Bool("strictBalances", params.StrictBalances).
		Msg("Simulation parameters loaded")

	// --- 2. Optional Results Store ---
	if config.ResultsDBEnabled {
		dbCfg := state.DBConfig{
			Host: config.DBHost, Port: config.DBPort,
			User: config.DBUser, Password: config.DBPassword,
			DBName: config.DBName, SSLMode: config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize results store")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure results store schema")
		}
	}

	// --- 3. Optional Web Dashboard ---
	if config.WebEnabled {
		if !config.ResultsDBEnabled {
			log.Fatal().Msg("SIM_WEB requires SIM_RESULTS_DB: the dashboard reads stored runs")
		}
		webServer := web.NewWebServer(config.WebPort)
		go func() {
			log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting results dashboard")
			if err := webServer.Start(); err != nil {
				log.Error().Err(err).Msg("Web server failed to start")
			}
		}()
	}

	// --- 4. Build Simulator with Dependency Injection ---
	simulator, err := sim.NewFromParameters(params, nil, sim.NewLogReporter())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create simulator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 5. Run ---
	summary, err := simulator.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation aborted")
	}

	log.Info().
		Str("runId", summary.RunID).
		Float64("elapsedSeconds", summary.ElapsedSeconds).
		Int("activeUsers", summary.ActiveUsers).
		Int64("totalTransactions", summary.TotalTransactions).
		Int64("totalTopUps", summary.TotalTopUps).
		Int64("totalRejected", summary.TotalRejected).
		Float64("basketSupply", summary.BasketSupply).
		Float64("basketPriceUsd", summary.BasketPriceUSD).
		Float64("poolValueUsd", summary.PoolValueUSD).
		Msg("Simulation complete")

	if config.ResultsDBEnabled {
		runPK, err := state.SaveRun(summary, params, simulator.DaySnapshots())
		if err != nil {
			log.Error().Err(err).Msg("Failed to save run to results store")
		} else {
			log.Info().Int64("runPk", runPK).Msg("Run saved to results store")
		}
	}

	if config.WebEnabled {
		log.Info().Msg("Dashboard still serving; press Ctrl+C to exit")
		<-ctx.Done()
	}
}
