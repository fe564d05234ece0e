package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/air-quality-etl/internal/config"
	"github.com/i474232898/air-quality-etl/internal/pipeline"
	"github.com/i474232898/air-quality-etl/internal/store"
)

var dryRun bool

var rootCmd = &cobra.Command{
	Use:   "airqetl",
	Short: "Batch ETL pipeline for hourly city air-quality data",
	Long: `airqetl pulls hourly air-quality measurements for a configured set of
cities, enriches them into risk-scored observations, uploads them to a
Postgres table in batches, and derives KPI, risk-distribution, and trend
tables from the persisted data.

Stages can run individually (extract, transform, load, analyze) or as one
ordered run. Configuration comes from the environment, optionally a .env
file.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "use an in-memory store instead of Postgres")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the environment configuration with CLI overrides applied.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dryRun {
		cfg.DryRun = true
	}
	return cfg, nil
}

// openStore connects the persisted-dataset backend: Postgres normally, the
// in-memory store for dry runs. The caller owns Close.
func openStore(ctx context.Context, cfg *config.AppConfig) (store.Store, error) {
	if cfg.DryRun {
		return store.NewMemoryStore(), nil
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required (or pass --dry-run)")
	}

	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Table)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// buildPipeline wires the full pipeline for a subcommand.
func buildPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, *config.AppConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	pipe, err := pipeline.New(cfg, st)
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}
	return pipe, st, cfg, nil
}
