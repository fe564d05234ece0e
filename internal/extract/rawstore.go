package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/i474232898/air-quality-etl/internal/airquality"
)

// RawStore persists captured payloads as immutable JSON files, one per
// (city, capture timestamp). Files are never overwritten or merged; a newer
// capture simply lands next to the old one.
type RawStore struct {
	dir string
}

// NewRawStore creates the raw directory if needed.
func NewRawStore(dir string) (*RawStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating raw directory: %w", err)
	}
	return &RawStore{dir: dir}, nil
}

// Persist writes one capture with second-granularity naming:
// <city>_raw_<YYYYMMDD_HHMMSS>.json.
func (s *RawStore) Persist(city string, capturedAt time.Time, body []byte) (string, error) {
	name := fmt.Sprintf("%s_raw_%s.json", city, capturedAt.Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("writing raw payload for %s: %w", city, err)
	}
	return path, nil
}

// List returns every raw file in the store, sorted by name so captures come
// back in a stable city-then-timestamp order.
func (s *RawStore) List() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Load parses one raw file back into a payload. The city is recovered from
// the filename prefix, the capture timestamp from the second component.
func (s *RawStore) Load(path string) (airquality.RawPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return airquality.RawPayload{}, fmt.Errorf("reading raw payload %s: %w", path, err)
	}

	var payload airquality.RawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return airquality.RawPayload{}, fmt.Errorf("decoding raw payload %s: %w", path, err)
	}

	base := filepath.Base(path)
	payload.City = strings.SplitN(base, "_", 2)[0]
	if parts := strings.Split(strings.TrimSuffix(base, ".json"), "_raw_"); len(parts) == 2 {
		if ts, err := time.Parse("20060102_150405", parts[1]); err == nil {
			payload.CapturedAt = ts
		}
	}

	return payload, nil
}

// LoadAll loads every stored capture.
func (s *RawStore) LoadAll() ([]airquality.RawPayload, error) {
	paths, err := s.List()
	if err != nil {
		return nil, err
	}

	payloads := make([]airquality.RawPayload, 0, len(paths))
	for _, p := range paths {
		payload, err := s.Load(p)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}
