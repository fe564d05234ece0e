package airquality

// Severity weights per pollutant. The score is a single-number proxy for
// how dangerous the air is at that hour.
const (
	weightPM25 = 5
	weightPM10 = 3
	weightNO2  = 4
	weightSO2  = 4
	weightCO   = 2
	weightO3   = 3
)

// CategorizeAQI buckets a PM2.5 concentration into an AQI category.
// Band boundaries are inclusive on the lower band; a missing reading
// maps to Unknown.
func CategorizeAQI(pm25 *float64) AQICategory {
	if pm25 == nil {
		return CategoryUnknown
	}
	switch v := *pm25; {
	case v <= 50:
		return CategoryGood
	case v <= 100:
		return CategoryModerate
	case v <= 200:
		return CategoryUnhealthy
	case v <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

// SeverityScore computes the weighted pollutant sum. Nulls propagate: if any
// of the six inputs is missing the score is nil rather than treating the
// missing term as zero.
func SeverityScore(r ObservationRow) *float64 {
	inputs := []*float64{r.PM25, r.PM10, r.NitrogenDioxide, r.SulphurDioxide, r.CarbonMonoxide, r.Ozone}
	for _, v := range inputs {
		if v == nil {
			return nil
		}
	}
	s := weightPM25**r.PM25 +
		weightPM10**r.PM10 +
		weightNO2**r.NitrogenDioxide +
		weightSO2**r.SulphurDioxide +
		weightCO**r.CarbonMonoxide +
		weightO3**r.Ozone
	return &s
}

// ClassifyRisk buckets a severity score. Boundaries are exclusive-above
// (>400, >200); a nil score falls through to Low Risk.
func ClassifyRisk(severity *float64) RiskLevel {
	if severity == nil {
		return RiskLow
	}
	switch v := *severity; {
	case v > 400:
		return RiskHigh
	case v > 200:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Enrich derives the feature columns for a row. Pure: calling it twice on
// the same input yields identical derived fields.
func Enrich(r ObservationRow) ObservationRow {
	r.AQICategory = CategorizeAQI(r.PM25)
	r.Severity = SeverityScore(r)
	r.RiskLevel = ClassifyRisk(r.Severity)
	if r.Timestamp != nil {
		h := r.Timestamp.Hour()
		r.Hour = &h
	} else {
		r.Hour = nil
	}
	return r
}
