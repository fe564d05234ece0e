package common

import (
	"encoding/json"
	"testing"
)

func TestCoerceFloat(t *testing.T) {
	if v := CoerceFloat(3.14); v == nil || *v != 3.14 {
		t.Errorf("float64: got %v", v)
	}
	if v := CoerceFloat(json.Number("2.5")); v == nil || *v != 2.5 {
		t.Errorf("json.Number: got %v", v)
	}
	if v := CoerceFloat("1.25"); v == nil || *v != 1.25 {
		t.Errorf("numeric string: got %v", v)
	}
	if v := CoerceFloat("abc"); v != nil {
		t.Errorf("junk string: got %v, want nil", *v)
	}
	if v := CoerceFloat(nil); v != nil {
		t.Errorf("nil: got %v, want nil", *v)
	}
	if v := CoerceFloat(true); v != nil {
		t.Errorf("bool: got %v, want nil", *v)
	}
}

func TestCoerceTime(t *testing.T) {
	if ts := CoerceTime("2025-03-01T05:00"); ts == nil || ts.Hour() != 5 {
		t.Errorf("open-meteo layout: got %v", ts)
	}
	if ts := CoerceTime("2025-03-01T05:00:00Z"); ts == nil {
		t.Error("RFC3339 should parse")
	}
	if ts := CoerceTime("yesterday"); ts != nil {
		t.Errorf("junk: got %v, want nil", ts)
	}
	if ts := CoerceTime(""); ts != nil {
		t.Errorf("empty: got %v, want nil", ts)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	v := 12.375
	if got := ParseFloatPtr(FormatFloatPtr(&v)); got == nil || *got != v {
		t.Errorf("float round trip: got %v", got)
	}
	if FormatFloatPtr(nil) != "" {
		t.Error("nil float should format empty")
	}
	if ParseFloatPtr("") != nil {
		t.Error("empty string should parse to nil")
	}

	n := 23
	if got := ParseIntPtr(FormatIntPtr(&n)); got == nil || *got != n {
		t.Errorf("int round trip: got %v", got)
	}
}
