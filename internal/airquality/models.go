package airquality

import (
	"time"
)

// AQICategory is the five-bucket classification of PM2.5 concentration.
type AQICategory string

const (
	CategoryGood          AQICategory = "Good"
	CategoryModerate      AQICategory = "Moderate"
	CategoryUnhealthy     AQICategory = "Unhealthy"
	CategoryVeryUnhealthy AQICategory = "Very Unhealthy"
	CategoryHazardous     AQICategory = "Hazardous"
	CategoryUnknown       AQICategory = "Unknown"
)

// RiskLevel is the coarse three-bucket classification of the severity score.
type RiskLevel string

const (
	RiskHigh     RiskLevel = "High Risk"
	RiskModerate RiskLevel = "Moderate Risk"
	RiskLow      RiskLevel = "Low Risk"
)

// RawPayload is one captured upstream response for a city. The hourly block
// holds positionally-aligned arrays: index i across every array belongs to
// the same timestamp. Raw values stay untyped until coercion because the
// upstream occasionally emits nulls or junk in numeric positions.
type RawPayload struct {
	City       string       `json:"-"`
	CapturedAt time.Time    `json:"-"`
	Hourly     *HourlyBlock `json:"hourly"`
}

// HourlyBlock mirrors the upstream time-series container.
type HourlyBlock struct {
	Time            []any `json:"time"`
	PM10            []any `json:"pm10"`
	PM25            []any `json:"pm2_5"`
	CarbonMonoxide  []any `json:"carbon_monoxide"`
	NitrogenDioxide []any `json:"nitrogen_dioxide"`
	SulphurDioxide  []any `json:"sulphur_dioxide"`
	Ozone           []any `json:"ozone"`
	UVIndex         []any `json:"uv_index"`
}

// ObservationRow is one (city, timestamp) observation after normalization,
// plus the derived fields added by enrichment. All measurements are nullable.
type ObservationRow struct {
	City            string     `json:"city"`
	Timestamp       *time.Time `json:"time"`
	PM10            *float64   `json:"pm10"`
	PM25            *float64   `json:"pm2_5"`
	CarbonMonoxide  *float64   `json:"carbon_monoxide"`
	NitrogenDioxide *float64   `json:"nitrogen_dioxide"`
	SulphurDioxide  *float64   `json:"sulphur_dioxide"`
	Ozone           *float64   `json:"ozone"`
	UVIndex         *float64   `json:"uv_index"`

	AQICategory AQICategory `json:"aqi_category"`
	Severity    *float64    `json:"severity"`
	RiskLevel   RiskLevel   `json:"risk_level"`
	Hour        *int        `json:"hour"`
}

// HasSignal reports whether at least one of the six pollutant measurements
// is present. Rows without any are dropped before staging.
func (r ObservationRow) HasSignal() bool {
	for _, v := range []*float64{r.PM25, r.PM10, r.CarbonMonoxide, r.NitrogenDioxide, r.SulphurDioxide, r.Ozone} {
		if v != nil {
			return true
		}
	}
	return false
}

// Dataset is an ordered collection of observation rows; one staged snapshot
// per pipeline run.
type Dataset []ObservationRow

// KpiSummary is the single-row headline metrics table recomputed on every
// analysis run.
type KpiSummary struct {
	CityHighestAvgPM25     string  `json:"city_highest_avg_pm2_5"`
	HighestAvgPM25         float64 `json:"highest_avg_pm2_5"`
	CityHighestAvgSeverity string  `json:"city_highest_avg_severity"`
	HighestAvgSeverity     float64 `json:"highest_avg_severity"`
	WorstHourOfDay         int     `json:"worst_hour_of_day"`
	WorstHourAvgPM25       float64 `json:"worst_hour_avg_pm2_5"`
}

// RiskDistribution is one row per (city, risk level): how many observations
// fell into that bucket and what share of the city's total they make up.
type RiskDistribution struct {
	City    string    `json:"city"`
	Risk    RiskLevel `json:"risk_flag"`
	Count   int       `json:"count"`
	Total   int       `json:"total"`
	Percent float64   `json:"percent"`
}

// TrendRow is one row per (city, timestamp) in the pollution trend table.
type TrendRow struct {
	City      string    `json:"city"`
	Timestamp time.Time `json:"time"`
	PM25      *float64  `json:"pm2_5"`
	PM10      *float64  `json:"pm10"`
	Ozone     *float64  `json:"ozone"`
}
