package common

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts accepted from the upstream API and staged snapshots.
// Open-Meteo hourly timestamps carry no seconds or zone.
var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// CoerceFloat converts a decoded JSON value to a float pointer.
// Anything that is not numeric (or numeric-looking text) becomes nil,
// never an error.
func CoerceFloat(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return &f
		}
	case int:
		f := float64(x)
		return &f
	case string:
		return ParseFloatPtr(x)
	}
	return nil
}

// CoerceTime parses a timestamp string, returning nil when no known
// layout matches.
func CoerceTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}

// ParseFloatPtr parses a decimal string into a float pointer, nil on failure.
func ParseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseIntPtr parses a decimal string into an int pointer, nil on failure.
func ParseIntPtr(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// FormatFloatPtr renders a float pointer for tabular output; nil becomes
// the empty string.
func FormatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

// FormatIntPtr renders an int pointer for tabular output; nil becomes
// the empty string.
func FormatIntPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// FormatTimePtr renders a timestamp pointer using the upstream layout;
// nil becomes the empty string.
func FormatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02T15:04")
}
