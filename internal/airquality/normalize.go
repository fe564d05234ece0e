package airquality

import (
	"log"
	"time"

	"github.com/i474232898/air-quality-etl/internal/common"
)

// Normalize flattens raw payloads into per-timestamp observation rows.
// The hourly arrays are assumed index-aligned; a payload with mismatched
// lengths yields rows up to the shortest array. A payload without an hourly
// container is skipped with a diagnostic, never an error.
func Normalize(payloads []RawPayload) []ObservationRow {
	var rows []ObservationRow

	for _, p := range payloads {
		if p.Hourly == nil {
			log.Printf("transform: skipping %s capture, no hourly container", p.City)
			continue
		}
		rows = append(rows, normalizePayload(p)...)
	}

	return rows
}

func normalizePayload(p RawPayload) []ObservationRow {
	h := p.Hourly

	n := len(h.Time)
	for _, arr := range [][]any{h.PM10, h.PM25, h.CarbonMonoxide, h.NitrogenDioxide, h.SulphurDioxide, h.Ozone, h.UVIndex} {
		if len(arr) < n {
			n = len(arr)
		}
	}

	rows := make([]ObservationRow, 0, n)
	for i := 0; i < n; i++ {
		row := ObservationRow{
			City:            p.City,
			Timestamp:       coerceTimeAt(h.Time, i),
			PM10:            common.CoerceFloat(h.PM10[i]),
			PM25:            common.CoerceFloat(h.PM25[i]),
			CarbonMonoxide:  common.CoerceFloat(h.CarbonMonoxide[i]),
			NitrogenDioxide: common.CoerceFloat(h.NitrogenDioxide[i]),
			SulphurDioxide:  common.CoerceFloat(h.SulphurDioxide[i]),
			Ozone:           common.CoerceFloat(h.Ozone[i]),
			UVIndex:         common.CoerceFloat(h.UVIndex[i]),
		}
		rows = append(rows, row)
	}
	return rows
}

func coerceTimeAt(arr []any, i int) *time.Time {
	s, ok := arr[i].(string)
	if !ok {
		return nil
	}
	return common.CoerceTime(s)
}
