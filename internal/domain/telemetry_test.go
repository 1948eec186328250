package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewTelemetryEncoding(t *testing.T) {
	s := Sample{
		TempC:      21.5,
		CapturedAt: time.Date(2025, 1, 1, 0, 0, 42, 0, time.UTC),
	}

	raw, err := json.Marshal(NewTelemetry("egg-01", s))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"device_id":"egg-01","ts":"2025-01-01T00:00:42.000Z","temp_c":21.50}`
	if string(raw) != want {
		t.Fatalf("expected payload %s, got %s", want, raw)
	}
}

func TestTelemetryRoundTrip(t *testing.T) {
	in := []byte(`{"device_id":"egg-01","ts":"2025-01-01T00:00:42.000Z","temp_c":21.50}`)

	var tel Telemetry
	if err := json.Unmarshal(in, &tel); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	out, err := json.Marshal(tel)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(in) {
		t.Fatalf("round trip changed payload: %s -> %s", in, out)
	}
}

func TestTimestampParsesBack(t *testing.T) {
	captured := time.Date(2025, 6, 30, 23, 59, 59, 250*int(time.Millisecond), time.UTC)
	tel := NewTelemetry("egg-01", Sample{TempC: 37.5, CapturedAt: captured})

	parsed, err := time.Parse(TimestampLayout, tel.TS)
	if err != nil {
		t.Fatalf("parse ts %q: %v", tel.TS, err)
	}
	if !parsed.Equal(captured) {
		t.Fatalf("expected %v, got %v", captured, parsed)
	}
}

func TestTemperatureFormatting(t *testing.T) {
	cases := []struct {
		temp float64
		want string
	}{
		{37.5, "37.50"},
		{21.0, "21.00"},
		{-0.054, "-0.05"},
		{99.999, "100.00"},
	}
	for _, tc := range cases {
		tel := NewTelemetry("egg-01", Sample{TempC: tc.temp, CapturedAt: time.Unix(0, 0)})
		if string(tel.TempC) != tc.want {
			t.Fatalf("temp %v: expected %s, got %s", tc.temp, tc.want, tel.TempC)
		}
	}
}

func TestTelemetryTopic(t *testing.T) {
	if got := TelemetryTopic("egg-01"); got != "egg/egg-01/telemetry" {
		t.Fatalf("expected egg/egg-01/telemetry, got %s", got)
	}
}
