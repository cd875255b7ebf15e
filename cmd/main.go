package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tribunal/internal/adapters/config"
	"tribunal/internal/adapters/errors/noop"
	"tribunal/internal/adapters/errors/sentry"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tribunal",
	Short: "Multi-agent stock analysis over a JSON-RPC tool gateway",
	Long: `Tribunal exposes financial data tools (news sentiment, technical
indicators) over a JSON-RPC gateway, and drives a three-agent conversation
(sentiment analyst, technical analyst, orchestrator) to a final verdict.`,
}

func main() {
	rootCmd.AddCommand(serveCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initializes logging and error tracking.
// Callers defer logger.Sync and flush the tracker on exit.
func bootstrap() (*config.Config, errors.Tracker, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		return nil, nil, errors.Wrap(err, "failed to init logger")
	}

	tracker := initErrorTracker(cfg)
	logger.SetErrorTracker(tracker)

	return cfg, tracker, nil
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config) errors.Tracker {
	log := logger.Get()

	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}
