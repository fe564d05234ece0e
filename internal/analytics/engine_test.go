package analytics

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/air-quality-etl/internal/airquality"
	"github.com/i474232898/air-quality-etl/internal/store"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func tsAt(hour int) *time.Time {
	t := time.Date(2025, 3, 1, hour, 0, 0, 0, time.UTC)
	return &t
}

func seed(t *testing.T, rows ...airquality.ObservationRow) *Engine {
	t.Helper()
	st := store.NewMemoryStore()
	if err := st.InsertRows(context.Background(), rows); err != nil {
		t.Fatal(err)
	}
	return NewEngine(st)
}

func TestAnalyzeKpis(t *testing.T) {
	engine := seed(t,
		airquality.ObservationRow{City: "Delhi", Timestamp: tsAt(8), Hour: ip(8), PM25: fp(100), Severity: fp(500), RiskLevel: airquality.RiskHigh},
		airquality.ObservationRow{City: "Delhi", Timestamp: tsAt(9), Hour: ip(9), PM25: fp(80), Severity: fp(300), RiskLevel: airquality.RiskModerate},
		airquality.ObservationRow{City: "Mumbai", Timestamp: tsAt(8), Hour: ip(8), PM25: fp(40), Severity: fp(100), RiskLevel: airquality.RiskLow},
	)

	report, err := engine.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	s := report.Summary
	if s == nil {
		t.Fatal("expected a summary")
	}
	if s.CityHighestAvgPM25 != "Delhi" || s.HighestAvgPM25 != 90 {
		t.Errorf("top pm2_5 = %s/%v, want Delhi/90", s.CityHighestAvgPM25, s.HighestAvgPM25)
	}
	if s.CityHighestAvgSeverity != "Delhi" || s.HighestAvgSeverity != 400 {
		t.Errorf("top severity = %s/%v, want Delhi/400", s.CityHighestAvgSeverity, s.HighestAvgSeverity)
	}
	// Hour 8 mean = (100+40)/2 = 70, hour 9 mean = 80.
	if s.WorstHourOfDay != 9 || s.WorstHourAvgPM25 != 80 {
		t.Errorf("worst hour = %d/%v, want 9/80", s.WorstHourOfDay, s.WorstHourAvgPM25)
	}
}

func TestAnalyzeTieBreaksOnCityName(t *testing.T) {
	engine := seed(t,
		airquality.ObservationRow{City: "Mumbai", PM25: fp(50)},
		airquality.ObservationRow{City: "Delhi", PM25: fp(50)},
	)

	report, err := engine.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.CityHighestAvgPM25 != "Delhi" {
		t.Fatalf("tie went to %q, want first city in ascending name order", report.Summary.CityHighestAvgPM25)
	}
}

func TestAnalyzeSkipsAllNullCities(t *testing.T) {
	engine := seed(t,
		airquality.ObservationRow{City: "Aachen", PM25: nil}, // sorts first but has no pm2_5 signal
		airquality.ObservationRow{City: "Delhi", PM25: fp(10)},
	)

	report, err := engine.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.CityHighestAvgPM25 != "Delhi" {
		t.Fatalf("top pm2_5 city = %q, want Delhi (null-only city excluded)", report.Summary.CityHighestAvgPM25)
	}
}

func TestRiskDistributionPercentages(t *testing.T) {
	rows := make([]airquality.ObservationRow, 0, 100)
	for i := 0; i < 80; i++ {
		rows = append(rows, airquality.ObservationRow{City: "Delhi", RiskLevel: airquality.RiskLow})
	}
	for i := 0; i < 20; i++ {
		rows = append(rows, airquality.ObservationRow{City: "Delhi", RiskLevel: airquality.RiskHigh})
	}
	engine := seed(t, rows...)

	report, err := engine.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Risk) != 2 {
		t.Fatalf("got %d distribution rows, want 2", len(report.Risk))
	}

	// Sorted by city then risk string: "High Risk" before "Low Risk".
	high, low := report.Risk[0], report.Risk[1]
	if high.Risk != airquality.RiskHigh || high.Count != 20 || high.Total != 100 || high.Percent != 20.0 {
		t.Errorf("high bucket = %+v, want count 20 of 100 at 20.00%%", high)
	}
	if low.Risk != airquality.RiskLow || low.Count != 80 || low.Percent != 80.0 {
		t.Errorf("low bucket = %+v, want count 80 at 80.00%%", low)
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.125, 0.13}, // exact half rounds away from zero
		{66.666666, 66.67},
		{20.0, 20.0},
		{0.124, 0.12},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTrendsSortedAndNullTimestampsExcluded(t *testing.T) {
	engine := seed(t,
		airquality.ObservationRow{City: "Mumbai", Timestamp: tsAt(1), PM25: fp(1)},
		airquality.ObservationRow{City: "Delhi", Timestamp: tsAt(2), PM25: fp(2)},
		airquality.ObservationRow{City: "Delhi", Timestamp: tsAt(1), PM25: fp(3)},
		airquality.ObservationRow{City: "Delhi", Timestamp: nil, PM25: fp(4)},
	)

	report, err := engine.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	trends := report.Trends
	if len(trends) != 3 {
		t.Fatalf("got %d trend rows, want 3 (null timestamp excluded)", len(trends))
	}
	if trends[0].City != "Delhi" || trends[0].Timestamp.Hour() != 1 {
		t.Errorf("first trend row = %s@%d, want Delhi@1", trends[0].City, trends[0].Timestamp.Hour())
	}
	if trends[2].City != "Mumbai" {
		t.Errorf("last trend row city = %s, want Mumbai", trends[2].City)
	}
}

func TestAnalyzeEmptyStore(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore())

	report, err := engine.Analyze(context.Background())
	if err != nil {
		t.Fatalf("empty dataset must not error: %v", err)
	}
	if report.Summary != nil {
		t.Error("summary should be nil for empty dataset")
	}
	if len(report.Risk) != 0 || len(report.Trends) != 0 {
		t.Error("distribution and trends should be empty")
	}
}

func TestWriteArtifacts(t *testing.T) {
	engine := seed(t,
		airquality.ObservationRow{City: "Delhi", Timestamp: tsAt(8), Hour: ip(8), PM25: fp(100), Severity: fp(500), RiskLevel: airquality.RiskHigh},
	)
	report, err := engine.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := WriteArtifacts(dir, report); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{SummaryFile, RiskFile, TrendsFile} {
		records, err := readCSVFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("artifact %s: %v", name, err)
		}
		if len(records) < 2 {
			t.Errorf("artifact %s has %d records, want header plus data", name, len(records))
		}
	}
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}
