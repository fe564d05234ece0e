package analytics

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/i474232898/air-quality-etl/internal/common"
)

// Derived artifact names under the processed directory.
const (
	SummaryFile = "summary_metrics.csv"
	RiskFile    = "city_risk_distribution.csv"
	TrendsFile  = "pollution_trends.csv"
)

// WriteArtifacts exports the three derived tables as CSV files. An empty
// report still produces the files so downstream consumers see headers.
func WriteArtifacts(processedDir string, report Report) error {
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return fmt.Errorf("creating processed directory: %w", err)
	}

	if err := writeSummary(filepath.Join(processedDir, SummaryFile), report); err != nil {
		return err
	}
	if err := writeRisk(filepath.Join(processedDir, RiskFile), report); err != nil {
		return err
	}
	if err := writeTrends(filepath.Join(processedDir, TrendsFile), report); err != nil {
		return err
	}

	log.Printf("analytics: CSV outputs saved to %s", processedDir)
	return nil
}

func writeSummary(path string, report Report) error {
	header := []string{
		"city_highest_avg_pm2_5", "highest_avg_pm2_5",
		"city_highest_avg_severity", "highest_avg_severity",
		"worst_hour_of_day", "worst_hour_avg_pm2_5",
	}

	var records [][]string
	if s := report.Summary; s != nil {
		records = append(records, []string{
			s.CityHighestAvgPM25,
			strconv.FormatFloat(s.HighestAvgPM25, 'g', -1, 64),
			s.CityHighestAvgSeverity,
			strconv.FormatFloat(s.HighestAvgSeverity, 'g', -1, 64),
			strconv.Itoa(s.WorstHourOfDay),
			strconv.FormatFloat(s.WorstHourAvgPM25, 'g', -1, 64),
		})
	}

	return writeCSV(path, header, records)
}

func writeRisk(path string, report Report) error {
	header := []string{"city", "risk_flag", "count", "total", "percent"}

	records := make([][]string, 0, len(report.Risk))
	for _, d := range report.Risk {
		records = append(records, []string{
			d.City,
			string(d.Risk),
			strconv.Itoa(d.Count),
			strconv.Itoa(d.Total),
			strconv.FormatFloat(d.Percent, 'f', 2, 64),
		})
	}

	return writeCSV(path, header, records)
}

func writeTrends(path string, report Report) error {
	header := []string{"city", "time", "pm2_5", "pm10", "ozone"}

	records := make([][]string, 0, len(report.Trends))
	for _, t := range report.Trends {
		ts := t.Timestamp
		records = append(records, []string{
			t.City,
			common.FormatTimePtr(&ts),
			common.FormatFloatPtr(t.PM25),
			common.FormatFloatPtr(t.PM10),
			common.FormatFloatPtr(t.Ozone),
		})
	}

	return writeCSV(path, header, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
