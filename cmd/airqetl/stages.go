package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i474232898/air-quality-etl/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch raw hourly payloads for the configured cities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStageCommand(func(ctx context.Context, pipe *pipeline.Pipeline) error {
			return pipe.RunExtract(ctx)
		})
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Normalize and enrich raw captures into the staged snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStageCommand(func(ctx context.Context, pipe *pipeline.Pipeline) error {
			return pipe.RunTransform(ctx)
		})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Upload the most recent staged snapshot in batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStageCommand(func(ctx context.Context, pipe *pipeline.Pipeline) error {
			return pipe.RunLoad(ctx)
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute KPI, risk-distribution, and trend tables from the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStageCommand(func(ctx context.Context, pipe *pipeline.Pipeline) error {
			return pipe.RunAnalyze(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(extractCmd, transformCmd, loadCmd, analyzeCmd)
}

func runStageCommand(fn func(context.Context, *pipeline.Pipeline) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipe, st, _, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(ctx, pipe)
}
