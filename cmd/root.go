package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/config"
)

var (
	logLevel   string
	configPath string
	logger     *slog.Logger

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rootlab",
	Short: "Numerical root finding with iteration traces",
	Long: `rootlab finds roots of scalar functions with bisection, regula falsi,
Newton-Raphson and fixed-point iteration (optionally Aitken-accelerated),
printing the full iteration history of every run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
		} else {
			cfg, err = config.LoadFromEnv()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.General.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}

		opts := &slog.HandlerOptions{Level: parseLevel(level)}
		handler := slog.NewJSONHandler(os.Stdout, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
		return nil
	},
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (.toml, .yaml); defaults to $ROOTLAB_CONFIG or ./rootlab.toml")
}
