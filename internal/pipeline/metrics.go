package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airqetl_pipeline_runs_total",
			Help: "Pipeline runs by outcome",
		},
		[]string{"status"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airqetl_stage_duration_seconds",
			Help:    "Elapsed time per pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	citiesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airqetl_cities_fetched_total",
			Help: "Per-city extraction outcomes",
		},
		[]string{"status"},
	)

	rowsUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airqetl_rows_uploaded_total",
			Help: "Rows uploaded to the remote store",
		},
	)

	batchesFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airqetl_batches_failed_total",
			Help: "Batches that exhausted their upload retries",
		},
	)
)
