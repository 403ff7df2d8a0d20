package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/meikuraledutech/pipeline/internal/config"
	"github.com/meikuraledutech/pipeline/internal/logging"
	"github.com/meikuraledutech/pipeline/postgres"
)

// errReported marks failures already shown to the user by a Reporter.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:           "pipeline",
	Short:         "Submit pipeline graphs for structural analysis",
	Long:          `pipeline checks a node/edge graph locally and sends it to the analysis service, which reports node and edge counts and whether the graph is a DAG.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $PIPELINE_CONFIG or ./pipeline.yaml)")
	rootCmd.PersistentFlags().String("endpoint", "", "Analysis service base URL")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if v, _ := cmd.Flags().GetString("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(level), nil
}

// openStore connects to the configured database.
func openStore(ctx context.Context, cfg *config.Config) (*postgres.PGStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	return postgres.New(pool), pool.Close, nil
}
