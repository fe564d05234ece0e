// Package pipeline runs the four ETL stages in strict order: Extract,
// Transform, Load, Analyze. The first stage error halts the whole run;
// per-item tolerance (a failed city, a failed batch retry) lives inside
// the stages themselves.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/air-quality-etl/internal/airquality"
	"github.com/i474232898/air-quality-etl/internal/analytics"
	"github.com/i474232898/air-quality-etl/internal/config"
	"github.com/i474232898/air-quality-etl/internal/extract"
	"github.com/i474232898/air-quality-etl/internal/load"
	"github.com/i474232898/air-quality-etl/internal/retry"
	"github.com/i474232898/air-quality-etl/internal/store"
	"github.com/i474232898/air-quality-etl/internal/transform"
)

// Pipeline wires the four stages against one configuration and one store.
type Pipeline struct {
	cfg       *config.AppConfig
	extractor *extract.Extractor
	raw       *extract.RawStore
	stager    *transform.Stager
	loader    *load.Loader
	engine    *analytics.Engine
}

// New builds a pipeline from configuration. The store decides where the
// Load stage writes; pass a MemoryStore for dry runs.
func New(cfg *config.AppConfig, st store.Store) (*Pipeline, error) {
	raw, err := extract.NewRawStore(cfg.RawDir)
	if err != nil {
		return nil, err
	}

	stager, err := transform.NewStager(cfg.StagedDir)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.FetchTimeout}
	fetcher := extract.NewFetcher(client, cfg.BaseURL, cfg.HourlyFields, retry.Policy{
		MaxAttempts: cfg.MaxRetries,
		Delay:       cfg.FetchBackoff,
	})

	return &Pipeline{
		cfg:       cfg,
		extractor: extract.NewExtractor(fetcher, raw, cfg.Cities, cfg.InterCallDelay),
		raw:       raw,
		stager:    stager,
		loader: load.NewLoader(st, cfg.BatchSize, retry.Policy{
			MaxAttempts: cfg.BatchRetries,
			Delay:       cfg.BatchRetryDelay,
		}),
		engine: analytics.NewEngine(st),
	}, nil
}

// Run executes Extract -> Transform -> Load -> Analyze, timing each stage
// and halting on the first stage failure.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := time.Now()
	log.Printf("pipeline: run %s started", runID)

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Extract", p.runExtract},
		{"Transform", p.runTransform},
		{"Load", p.runLoad},
		{"Analyze", p.runAnalyze},
	}

	for _, stage := range stages {
		if err := p.runStage(ctx, stage.name, stage.fn); err != nil {
			runsTotal.WithLabelValues("failure").Inc()
			return fmt.Errorf("pipeline stopped at %s: %w", stage.name, err)
		}
	}

	runsTotal.WithLabelValues("success").Inc()
	log.Printf("pipeline: run %s finished in %s", runID, time.Since(started).Round(time.Millisecond))
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	log.Printf("pipeline: starting %s", name)
	start := time.Now()

	err := fn(ctx)
	elapsed := time.Since(start)
	stageDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		log.Printf("pipeline: %s failed after %s: %v", name, elapsed.Round(time.Millisecond), err)
		return err
	}

	log.Printf("pipeline: completed %s in %s", name, elapsed.Round(time.Millisecond))
	return nil
}

// Extract fetches every configured city and persists the raw captures.
// Individual city failures are tolerated; the stage itself only fails on
// cancellation.
func (p *Pipeline) runExtract(ctx context.Context) error {
	saved, err := p.extractor.Run(ctx)
	if err != nil {
		return err
	}
	citiesFetchedTotal.WithLabelValues("success").Add(float64(len(saved)))
	citiesFetchedTotal.WithLabelValues("failure").Add(float64(len(p.cfg.Cities) - len(saved)))
	return nil
}

// Transform normalizes and enriches all raw captures into the staged
// snapshot. No raw files at all is a stage-level failure.
func (p *Pipeline) runTransform(ctx context.Context) error {
	payloads, err := p.raw.LoadAll()
	if err != nil {
		return err
	}
	if len(payloads) == 0 {
		return fmt.Errorf("no raw files in %s; run extract first", p.cfg.RawDir)
	}

	dataset := p.stager.Build(payloads)
	_, err = p.stager.WriteSnapshot(dataset)
	return err
}

// Load uploads the staged snapshot. The loader tolerates failed batches
// internally, but the stage reports success only when every batch made it.
func (p *Pipeline) runLoad(ctx context.Context) error {
	dataset, err := p.stager.ReadSnapshot()
	if err != nil {
		return err
	}
	return p.LoadDataset(ctx, dataset)
}

// LoadDataset runs the load stage over an already-staged dataset; the load
// subcommand uses it directly after re-reading the latest snapshot.
func (p *Pipeline) LoadDataset(ctx context.Context, dataset airquality.Dataset) error {
	report, err := p.loader.Load(ctx, dataset)
	if err != nil {
		return err
	}

	rowsUploadedTotal.Add(float64(report.UploadedCount))
	batchesFailedTotal.Add(float64(len(report.FailedBatches)))

	log.Printf("load: %d rows uploaded, %d/%d batches failed",
		report.UploadedCount, len(report.FailedBatches), report.TotalBatches)

	if !report.Complete() {
		return fmt.Errorf("%d of %d batches failed permanently", len(report.FailedBatches), report.TotalBatches)
	}
	return nil
}

// Analyze recomputes the derived tables from the persisted dataset and
// exports the CSV artifacts.
func (p *Pipeline) runAnalyze(ctx context.Context) error {
	report, err := p.engine.Analyze(ctx)
	if err != nil {
		return err
	}
	return analytics.WriteArtifacts(p.cfg.ProcessedDir, report)
}

// Stager exposes the staged-snapshot handler for standalone subcommands.
func (p *Pipeline) Stager() *transform.Stager {
	return p.stager
}

// Engine exposes the analytics engine for standalone subcommands and the
// HTTP API.
func (p *Pipeline) Engine() *analytics.Engine {
	return p.engine
}

// RunExtract, RunTransform, and RunAnalyze expose individual stages for the
// per-stage subcommands, with the same timing and logging as a full run.
func (p *Pipeline) RunExtract(ctx context.Context) error {
	return p.runStage(ctx, "Extract", p.runExtract)
}

func (p *Pipeline) RunTransform(ctx context.Context) error {
	return p.runStage(ctx, "Transform", p.runTransform)
}

func (p *Pipeline) RunLoad(ctx context.Context) error {
	return p.runStage(ctx, "Load", p.runLoad)
}

func (p *Pipeline) RunAnalyze(ctx context.Context) error {
	return p.runStage(ctx, "Analyze", p.runAnalyze)
}
