// Package analytics derives KPI summaries, risk distributions, and trend
// tables from the persisted dataset.
package analytics

import (
	"context"
	"log"
	"math"
	"sort"

	"github.com/i474232898/air-quality-etl/internal/airquality"
	"github.com/i474232898/air-quality-etl/internal/store"
)

// Report bundles one analysis run. Summary is nil when the persisted
// dataset was empty.
type Report struct {
	Summary *airquality.KpiSummary
	Risk    []airquality.RiskDistribution
	Trends  []airquality.TrendRow
}

// Engine reads back the persisted dataset and computes the derived tables.
type Engine struct {
	store store.Store
}

// NewEngine wires an analytics engine against the given store.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st}
}

// Analyze computes KPIs, per-city risk distribution, and pollution trends.
// An empty dataset yields an empty report and a diagnostic, never an error.
func (e *Engine) Analyze(ctx context.Context) (Report, error) {
	rows, err := e.store.FetchAll(ctx)
	if err != nil {
		return Report{}, err
	}

	if len(rows) == 0 {
		log.Printf("analytics: no data in store")
		return Report{}, nil
	}

	return Report{
		Summary: computeSummary(rows),
		Risk:    computeRiskDistribution(rows),
		Trends:  computeTrends(rows),
	}, nil
}

// Round2 rounds to two decimals, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func computeSummary(rows []airquality.ObservationRow) *airquality.KpiSummary {
	summary := &airquality.KpiSummary{WorstHourOfDay: -1}

	pm25ByCity := meansBy(rows, func(r airquality.ObservationRow) (string, *float64) {
		return r.City, r.PM25
	})
	summary.CityHighestAvgPM25, summary.HighestAvgPM25 = maxMean(pm25ByCity)

	sevByCity := meansBy(rows, func(r airquality.ObservationRow) (string, *float64) {
		return r.City, r.Severity
	})
	summary.CityHighestAvgSeverity, summary.HighestAvgSeverity = maxMean(sevByCity)

	hourMeans := make(map[int]*runningMean)
	for _, r := range rows {
		if r.Hour == nil || r.PM25 == nil {
			continue
		}
		w, ok := hourMeans[*r.Hour]
		if !ok {
			w = &runningMean{}
			hourMeans[*r.Hour] = w
		}
		w.add(*r.PM25)
	}

	bestHour := -1
	bestMean := 0.0
	for hour, w := range hourMeans {
		m := w.mean()
		// Ties resolve to the lowest hour for determinism.
		if bestHour == -1 || m > bestMean || (m == bestMean && hour < bestHour) {
			bestHour = hour
			bestMean = m
		}
	}
	summary.WorstHourOfDay = bestHour
	summary.WorstHourAvgPM25 = bestMean

	return summary
}

func computeRiskDistribution(rows []airquality.ObservationRow) []airquality.RiskDistribution {
	type key struct {
		city string
		risk airquality.RiskLevel
	}

	counts := make(map[key]int)
	totals := make(map[string]int)
	for _, r := range rows {
		counts[key{r.City, r.RiskLevel}]++
		totals[r.City]++
	}

	dist := make([]airquality.RiskDistribution, 0, len(counts))
	for k, count := range counts {
		total := totals[k.city]
		dist = append(dist, airquality.RiskDistribution{
			City:    k.city,
			Risk:    k.risk,
			Count:   count,
			Total:   total,
			Percent: Round2(float64(count) / float64(total) * 100),
		})
	}

	sort.Slice(dist, func(i, j int) bool {
		if dist[i].City != dist[j].City {
			return dist[i].City < dist[j].City
		}
		return dist[i].Risk < dist[j].Risk
	})

	return dist
}

func computeTrends(rows []airquality.ObservationRow) []airquality.TrendRow {
	trends := make([]airquality.TrendRow, 0, len(rows))
	for _, r := range rows {
		if r.Timestamp == nil {
			continue
		}
		trends = append(trends, airquality.TrendRow{
			City:      r.City,
			Timestamp: *r.Timestamp,
			PM25:      r.PM25,
			PM10:      r.PM10,
			Ozone:     r.Ozone,
		})
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].City != trends[j].City {
			return trends[i].City < trends[j].City
		}
		return trends[i].Timestamp.Before(trends[j].Timestamp)
	})

	return trends
}

// meansBy accumulates per-key means of one nullable field, skipping nulls.
// Keys whose field is always null get no entry.
func meansBy(rows []airquality.ObservationRow, pick func(airquality.ObservationRow) (string, *float64)) map[string]*runningMean {
	means := make(map[string]*runningMean)
	for _, r := range rows {
		k, v := pick(r)
		if v == nil {
			continue
		}
		w, ok := means[k]
		if !ok {
			w = &runningMean{}
			means[k] = w
		}
		w.add(*v)
	}
	return means
}

// maxMean picks the key with the highest mean; equal maxima resolve to the
// key that sorts first.
func maxMean(means map[string]*runningMean) (string, float64) {
	keys := make([]string, 0, len(means))
	for k := range means {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	bestMean := 0.0
	for _, k := range keys {
		m := means[k].mean()
		if best == "" || m > bestMean {
			best = k
			bestMean = m
		}
	}
	return best, bestMean
}

// runningMean is a running mean accumulator.
type runningMean struct {
	n    int
	value float64
}

func (w *runningMean) add(v float64) {
	w.n++
	w.value += (v - w.value) / float64(w.n)
}

func (w *runningMean) mean() float64 {
	return w.value
}
