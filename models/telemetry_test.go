package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fullPayload() TelemetryPayload {
	return TelemetryPayload{
		Version:   ptr(1),
		DeviceID:  ptr("device-1"),
		Timestamp: ptr("2024-01-01T12:00:00Z"),
		Status: &StatusPayload{
			Online:    ptr(true),
			UptimeSec: ptr(3600),
		},
		Sensors: &SensorPayload{
			TemperatureC:     ptr(21.5),
			Ph:               ptr(7.2),
			DoMgPerL:         ptr(8.4),
			TurbiditySensorV: ptr(0.55),
		},
		Camera: &CameraPayload{
			TurbidityIndex: ptr(0.31),
			AvgColorHex:    ptr("#aabbcc"),
		},
	}
}

func TestTelemetryFromPayloadFlattensFields(t *testing.T) {
	data, err := TelemetryFromPayload(fullPayload())
	require.NoError(t, err)

	assert.Equal(t, 1, data.Version)
	assert.Equal(t, "device-1", data.DeviceID)
	assert.True(t, data.Online)
	assert.Equal(t, 3600, data.UptimeSec)
	assert.Equal(t, 21.5, data.TemperatureC)
	assert.Equal(t, 7.2, data.Ph)
	assert.Equal(t, 8.4, data.DoMgPerL)
	assert.Equal(t, 0.55, data.TurbiditySensorV)
	assert.Equal(t, 0.31, data.TurbidityIndex)
	assert.Equal(t, "#aabbcc", data.AvgColorHex)
	assert.Zero(t, data.ID)
}

func TestTelemetryFromPayloadFromRawJSON(t *testing.T) {
	raw := `{
		"version": 2,
		"device_id": "pond-edge-7",
		"timestamp": "2024-06-15T08:30:00Z",
		"status": {"online": false, "uptime_sec": 12},
		"sensors": {"temperature_c": 19.8, "ph": 6.9, "do_mg_per_l": 7.7, "turbidity_sensor_v": 0.42},
		"camera": {"turbidity_index": 0.12, "avg_color_hex": "#102030"}
	}`

	var payload TelemetryPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	data, err := TelemetryFromPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "pond-edge-7", data.DeviceID)
	assert.Equal(t, 2, data.Version)
	assert.False(t, data.Online)
	assert.Equal(t, 12, data.UptimeSec)
	assert.Equal(t, "#102030", data.AvgColorHex)
	assert.True(t, data.Timestamp.Equal(time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)))
}

func TestTelemetryFromPayloadMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TelemetryPayload)
	}{
		{"device_id", func(p *TelemetryPayload) { p.DeviceID = nil }},
		{"timestamp", func(p *TelemetryPayload) { p.Timestamp = nil }},
		{"status", func(p *TelemetryPayload) { p.Status = nil }},
		{"status.online", func(p *TelemetryPayload) { p.Status.Online = nil }},
		{"sensors.ph", func(p *TelemetryPayload) { p.Sensors.Ph = nil }},
		{"camera.avg_color_hex", func(p *TelemetryPayload) { p.Camera.AvgColorHex = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := fullPayload()
			tt.mutate(&payload)

			_, err := TelemetryFromPayload(payload)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestTelemetryFromPayloadRejectsBadTimestamp(t *testing.T) {
	payload := fullPayload()
	payload.Timestamp = ptr("yesterday at noon")

	_, err := TelemetryFromPayload(payload)
	require.Error(t, err)
}

func TestTelemetryFromPayloadRejectsNegativeUptime(t *testing.T) {
	payload := fullPayload()
	payload.Status.UptimeSec = ptr(-5)

	_, err := TelemetryFromPayload(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uptime_sec")
}

func TestParseTimestampZSuffix(t *testing.T) {
	parsed, err := ParseTimestamp("2024-01-01T12:00:00Z")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestParseTimestampVariants(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T12:00:00+00:00", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-01-01T14:00:00+02:00", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-01-01T12:00:00.500Z", time.Date(2024, 1, 1, 12, 0, 0, 500_000_000, time.UTC)},
		{"2024-01-01T12:00:00", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		parsed, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, parsed.Equal(tt.want), "parsed %s as %s", tt.in, parsed)
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, in := range []string{"", "not-a-time", "2024-13-45T99:00:00Z"} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}
}
