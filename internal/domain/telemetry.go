package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TopicPattern is the MQTT topic every device publishes telemetry on.
const TopicPattern = "egg/{device_id}/telemetry"

// TimestampLayout renders capture times as UTC ISO-8601 with millisecond
// precision, e.g. 2025-01-01T00:00:42.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Telemetry is the wire form of a Sample. TempC is kept as a json.Number so
// the two-decimal formatting survives a decode/encode round trip.
type Telemetry struct {
	DeviceID string      `json:"device_id"`
	TS       string      `json:"ts"`
	TempC    json.Number `json:"temp_c"`
}

// NewTelemetry binds a sample to its device for publishing. The timestamp is
// the sample's capture time, not the publish time, so drained buffer entries
// keep their original chronology.
func NewTelemetry(deviceID string, s Sample) Telemetry {
	return Telemetry{
		DeviceID: deviceID,
		TS:       s.CapturedAt.UTC().Format(TimestampLayout),
		TempC:    json.Number(strconv.FormatFloat(s.TempC, 'f', 2, 64)),
	}
}

// TelemetryTopic expands TopicPattern for one device.
func TelemetryTopic(deviceID string) string {
	return strings.ReplaceAll(TopicPattern, "{device_id}", deviceID)
}
