package transform

import (
	"encoding/csv"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/i474232898/air-quality-etl/internal/airquality"
)

func fp(v float64) *float64 { return &v }

func samplePayload() airquality.RawPayload {
	return airquality.RawPayload{
		City: "Delhi",
		Hourly: &airquality.HourlyBlock{
			Time:            []any{"2025-03-01T00:00", "2025-03-01T01:00"},
			PM10:            []any{40.0, nil},
			PM25:            []any{60.0, nil},
			CarbonMonoxide:  []any{2.0, nil},
			NitrogenDioxide: []any{10.0, nil},
			SulphurDioxide:  []any{5.0, nil},
			Ozone:           []any{20.0, nil},
			UVIndex:         []any{0.5, nil},
		},
	}
}

func TestBuildDropsRowsWithoutSignal(t *testing.T) {
	s, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dataset := s.Build([]airquality.RawPayload{samplePayload()})
	if len(dataset) != 1 {
		t.Fatalf("staged %d rows, want 1 (all-null pollutant row dropped)", len(dataset))
	}

	row := dataset[0]
	if row.Severity == nil || *row.Severity != 544 {
		t.Fatalf("severity = %v, want 544", row.Severity)
	}
	if row.RiskLevel != airquality.RiskHigh {
		t.Fatalf("risk = %q, want %q", row.RiskLevel, airquality.RiskHigh)
	}
}

func TestSnapshotColumnOrder(t *testing.T) {
	s, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dataset := s.Build([]airquality.RawPayload{samplePayload()})
	path, err := s.WriteSnapshot(dataset)
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	wantHeader := []string{
		"city", "time", "pm10", "pm2_5", "carbon_monoxide", "nitrogen_dioxide",
		"sulphur_dioxide", "ozone", "uv_index", "AQI_Category", "severity",
		"Risk_Level", "hour",
	}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Fatalf("header = %v\nwant    %v", records[0], wantHeader)
	}
}

func TestSnapshotReplacesPriorRun(t *testing.T) {
	s, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	first := s.Build([]airquality.RawPayload{samplePayload(), samplePayload()})
	if _, err := s.WriteSnapshot(first); err != nil {
		t.Fatal(err)
	}

	second := s.Build([]airquality.RawPayload{samplePayload()})
	if _, err := s.WriteSnapshot(second); err != nil {
		t.Fatal(err)
	}

	reread, err := s.ReadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(reread) != len(second) {
		t.Fatalf("snapshot has %d rows, want %d (each run supersedes the last)", len(reread), len(second))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	ts := time.Date(2025, 3, 1, 5, 0, 0, 0, time.UTC)
	h := 5
	dataset := airquality.Dataset{
		{
			City: "Delhi", Timestamp: &ts,
			PM10: fp(40), PM25: fp(60), CarbonMonoxide: fp(2),
			NitrogenDioxide: fp(10), SulphurDioxide: fp(5), Ozone: fp(20),
			UVIndex: nil, // nulls survive the round trip as nulls
			AQICategory: airquality.CategoryModerate,
			Severity:    fp(544), RiskLevel: airquality.RiskHigh, Hour: &h,
		},
	}

	if _, err := s.WriteSnapshot(dataset); err != nil {
		t.Fatal(err)
	}

	reread, err := s.ReadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(reread, dataset) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", reread, dataset)
	}
}
