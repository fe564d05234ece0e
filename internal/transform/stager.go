// Package transform builds the staged dataset: normalized, enriched rows
// with the no-signal ones dropped, written as one CSV snapshot per run.
package transform

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/i474232898/air-quality-etl/internal/airquality"
	"github.com/i474232898/air-quality-etl/internal/common"
)

// SnapshotName is the staged artifact; each run fully replaces it.
const SnapshotName = "air_quality_transformed.csv"

// Column order of the staged snapshot. The loader and any external reader
// rely on this exact sequence.
var snapshotHeader = []string{
	"city", "time", "pm10", "pm2_5", "carbon_monoxide", "nitrogen_dioxide",
	"sulphur_dioxide", "ozone", "uv_index", "AQI_Category", "severity",
	"Risk_Level", "hour",
}

// Stager assembles and persists the staged dataset.
type Stager struct {
	stagedDir string
}

// NewStager creates the staged directory if needed.
func NewStager(stagedDir string) (*Stager, error) {
	if err := os.MkdirAll(stagedDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staged directory: %w", err)
	}
	return &Stager{stagedDir: stagedDir}, nil
}

// Build normalizes and enriches the captured payloads and drops rows that
// carry no pollutant signal at all.
func (s *Stager) Build(payloads []airquality.RawPayload) airquality.Dataset {
	rows := airquality.Normalize(payloads)

	dataset := make(airquality.Dataset, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if !row.HasSignal() {
			dropped++
			continue
		}
		dataset = append(dataset, airquality.Enrich(row))
	}

	log.Printf("transform: %d rows staged, %d empty rows dropped", len(dataset), dropped)
	return dataset
}

// SnapshotPath returns where the staged snapshot lives.
func (s *Stager) SnapshotPath() string {
	return filepath.Join(s.stagedDir, SnapshotName)
}

// WriteSnapshot replaces the staged snapshot with this run's dataset.
func (s *Stager) WriteSnapshot(dataset airquality.Dataset) (string, error) {
	path := s.SnapshotPath()

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating staged snapshot: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(snapshotHeader); err != nil {
		return "", err
	}

	for _, r := range dataset {
		record := []string{
			r.City,
			common.FormatTimePtr(r.Timestamp),
			common.FormatFloatPtr(r.PM10),
			common.FormatFloatPtr(r.PM25),
			common.FormatFloatPtr(r.CarbonMonoxide),
			common.FormatFloatPtr(r.NitrogenDioxide),
			common.FormatFloatPtr(r.SulphurDioxide),
			common.FormatFloatPtr(r.Ozone),
			common.FormatFloatPtr(r.UVIndex),
			string(r.AQICategory),
			common.FormatFloatPtr(r.Severity),
			string(r.RiskLevel),
			common.FormatIntPtr(r.Hour),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing staged snapshot: %w", err)
	}

	log.Printf("transform: snapshot saved to %s", path)
	return path, nil
}

// ReadSnapshot loads the most recent staged snapshot, letting the loader
// run standalone after a transform-only invocation.
func (s *Stager) ReadSnapshot() (airquality.Dataset, error) {
	f, err := os.Open(s.SnapshotPath())
	if err != nil {
		return nil, fmt.Errorf("opening staged snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading staged snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("staged snapshot is empty")
	}

	dataset := make(airquality.Dataset, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(snapshotHeader) {
			return nil, fmt.Errorf("staged snapshot row has %d columns, want %d", len(rec), len(snapshotHeader))
		}
		dataset = append(dataset, airquality.ObservationRow{
			City:            rec[0],
			Timestamp:       common.CoerceTime(rec[1]),
			PM10:            common.ParseFloatPtr(rec[2]),
			PM25:            common.ParseFloatPtr(rec[3]),
			CarbonMonoxide:  common.ParseFloatPtr(rec[4]),
			NitrogenDioxide: common.ParseFloatPtr(rec[5]),
			SulphurDioxide:  common.ParseFloatPtr(rec[6]),
			Ozone:           common.ParseFloatPtr(rec[7]),
			UVIndex:         common.ParseFloatPtr(rec[8]),
			AQICategory:     airquality.AQICategory(rec[9]),
			Severity:        common.ParseFloatPtr(rec[10]),
			RiskLevel:       airquality.RiskLevel(rec[11]),
			Hour:            common.ParseIntPtr(rec[12]),
		})
	}

	return dataset, nil
}
