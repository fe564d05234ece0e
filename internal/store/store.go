// Package store provides the persisted-dataset backends: Postgres for real
// runs and an in-memory implementation for tests and dry runs.
package store

import (
	"context"
	"errors"

	"github.com/i474232898/air-quality-etl/internal/airquality"
)

// ErrNoData is returned when the persisted dataset is empty.
var ErrNoData = errors.New("no air quality data in store")

// Store is the contract the loader and analytics engine share. Inserts are
// plain appends: no dedup key is enforced, so re-running the loader against
// the same staged dataset re-inserts every row.
type Store interface {
	EnsureSchema(ctx context.Context) error
	InsertRows(ctx context.Context, rows []airquality.ObservationRow) error
	FetchAll(ctx context.Context) ([]airquality.ObservationRow, error)
	Close()
}
