package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/air-quality-etl/internal/pipeline"
)

// Scheduler periodically runs the full pipeline, one run at a time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pipe      *pipeline.Pipeline
	interval  time.Duration
}

// New creates a Scheduler that triggers a pipeline run every interval.
func New(pipe *pipeline.Pipeline, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// Batch runs must not overlap; a slow upstream would otherwise stack
	// extractions against the same raw directory.
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		pipe:      pipe,
		interval:  interval,
	}
}

// Start schedules the recurring run and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: starting pipeline run")

		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()

		if err := s.pipe.Run(ctx); err != nil {
			log.Printf("scheduler: pipeline run failed: %v", err)
			return
		}
		log.Println("scheduler: pipeline run completed")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
