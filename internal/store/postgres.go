package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/air-quality-etl/internal/airquality"
)

// PostgresStore persists observation rows in a single table whose columns
// match the enriched-row field names, lower-cased.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore opens a connection pool against the configured database.
func NewPostgresStore(ctx context.Context, databaseURL, table string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// EnsureSchema creates the target table when it does not exist yet. No
// migration beyond that; the pipeline assumes it owns the table shape.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	city TEXT NOT NULL,
	time TIMESTAMP,
	pm10 DOUBLE PRECISION,
	pm2_5 DOUBLE PRECISION,
	carbon_monoxide DOUBLE PRECISION,
	nitrogen_dioxide DOUBLE PRECISION,
	sulphur_dioxide DOUBLE PRECISION,
	ozone DOUBLE PRECISION,
	uv_index DOUBLE PRECISION,
	aqi_category TEXT,
	severity DOUBLE PRECISION,
	risk_level TEXT,
	hour INTEGER
)`, s.table)

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring table %s: %w", s.table, err)
	}
	return nil
}

// InsertRows appends a batch of rows in one round trip.
func (s *PostgresStore) InsertRows(ctx context.Context, rows []airquality.ObservationRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s
(city, time, pm10, pm2_5, carbon_monoxide, nitrogen_dioxide, sulphur_dioxide, ozone, uv_index, aqi_category, severity, risk_level, hour)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`, s.table)

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query,
			r.City, r.Timestamp, r.PM10, r.PM25, r.CarbonMonoxide,
			r.NitrogenDioxide, r.SulphurDioxide, r.Ozone, r.UVIndex,
			string(r.AQICategory), r.Severity, string(r.RiskLevel), r.Hour)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("inserting rows into %s: %w", s.table, err)
		}
	}
	return nil
}

// FetchAll reads the whole persisted dataset back in insert order.
func (s *PostgresStore) FetchAll(ctx context.Context) ([]airquality.ObservationRow, error) {
	query := fmt.Sprintf(`SELECT city, time, pm10, pm2_5, carbon_monoxide, nitrogen_dioxide, sulphur_dioxide, ozone, uv_index, aqi_category, severity, risk_level, hour
FROM %s ORDER BY id`, s.table)

	pgRows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer pgRows.Close()

	var rows []airquality.ObservationRow
	for pgRows.Next() {
		var (
			r        airquality.ObservationRow
			category *string
			risk     *string
		)
		if err := pgRows.Scan(&r.City, &r.Timestamp, &r.PM10, &r.PM25, &r.CarbonMonoxide,
			&r.NitrogenDioxide, &r.SulphurDioxide, &r.Ozone, &r.UVIndex,
			&category, &r.Severity, &risk, &r.Hour); err != nil {
			return nil, err
		}
		if category != nil {
			r.AQICategory = airquality.AQICategory(*category)
		}
		if risk != nil {
			r.RiskLevel = airquality.RiskLevel(*risk)
		}
		rows = append(rows, r)
	}

	return rows, pgRows.Err()
}
