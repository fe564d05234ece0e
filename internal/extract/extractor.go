package extract

import (
	"context"
	"log"
	"time"

	"github.com/i474232898/air-quality-etl/internal/config"
)

// Extractor runs the extract stage: one fetch per configured city, each
// successful payload persisted to the raw store. Cities are processed in
// configured order with a fixed delay between successful calls to respect
// upstream rate limits.
type Extractor struct {
	fetcher *Fetcher
	raw     *RawStore
	cities  []config.City
	delay   time.Duration

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewExtractor wires the extract stage.
func NewExtractor(fetcher *Fetcher, raw *RawStore, cities []config.City, delay time.Duration) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		raw:     raw,
		cities:  cities,
		delay:   delay,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Run fetches every city. A city whose fetch exhausts retries is skipped;
// a raw-store write failure is fatal to that city only. Returns the paths
// of the captures that were saved.
func (e *Extractor) Run(ctx context.Context) ([]string, error) {
	var saved []string

	for _, city := range e.cities {
		if ctx.Err() != nil {
			return saved, ctx.Err()
		}

		body, err := e.fetcher.Fetch(ctx, city)
		if err != nil {
			log.Printf("extract: giving up on %s: %v", city.Name, err)
			continue
		}

		path, err := e.raw.Persist(city.Name, e.now().UTC().Truncate(time.Second), body)
		if err != nil {
			log.Printf("extract: could not persist %s: %v", city.Name, err)
			continue
		}

		log.Printf("extract: saved raw data for %s: %s", city.Name, path)
		saved = append(saved, path)

		if e.delay > 0 {
			e.sleep(e.delay)
		}
	}

	log.Printf("extract: complete, %d/%d cities saved", len(saved), len(e.cities))
	return saved, nil
}
