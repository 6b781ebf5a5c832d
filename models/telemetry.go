package models

import (
	"fmt"
	"strings"
	"time"
)

// TelemetryData is one ingested reading from an edge device. Records are
// written once and never updated; the store assigns the id on insert.
type TelemetryData struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Version   int       `json:"version"`
	DeviceID  string    `json:"device_id" gorm:"index;not null"`
	Timestamp time.Time `json:"timestamp"`

	// Status fields
	Online    bool `json:"online"`
	UptimeSec int  `json:"uptime_sec"`

	// Sensor fields
	TemperatureC     float64 `json:"temperature_c"`
	Ph               float64 `json:"ph"`
	DoMgPerL         float64 `json:"do_mg_per_l"`
	TurbiditySensorV float64 `json:"turbidity_sensor_v"`

	// Camera fields
	TurbidityIndex float64 `json:"turbidity_index"`
	AvgColorHex    string  `json:"avg_color_hex"`
}

func (TelemetryData) TableName() string {
	return "telemetry_data"
}

// TelemetryPayload is the nested JSON shape the edge devices publish on the
// telemetry topic. Fields are pointers so a missing key is distinguishable
// from a zero value.
type TelemetryPayload struct {
	Version   *int           `json:"version"`
	DeviceID  *string        `json:"device_id"`
	Timestamp *string        `json:"timestamp"`
	Status    *StatusPayload `json:"status"`
	Sensors   *SensorPayload `json:"sensors"`
	Camera    *CameraPayload `json:"camera"`
}

type StatusPayload struct {
	Online    *bool `json:"online"`
	UptimeSec *int  `json:"uptime_sec"`
}

type SensorPayload struct {
	TemperatureC     *float64 `json:"temperature_c"`
	Ph               *float64 `json:"ph"`
	DoMgPerL         *float64 `json:"do_mg_per_l"`
	TurbiditySensorV *float64 `json:"turbidity_sensor_v"`
}

type CameraPayload struct {
	TurbidityIndex *float64 `json:"turbidity_index"`
	AvgColorHex    *string  `json:"avg_color_hex"`
}

// TelemetryFromPayload flattens a device payload into a TelemetryData record.
// Any missing field or malformed timestamp fails the whole conversion; no
// partial record is produced.
func TelemetryFromPayload(p TelemetryPayload) (TelemetryData, error) {
	var missing []string
	if p.Version == nil {
		missing = append(missing, "version")
	}
	if p.DeviceID == nil {
		missing = append(missing, "device_id")
	}
	if p.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if p.Status == nil {
		missing = append(missing, "status")
	} else {
		if p.Status.Online == nil {
			missing = append(missing, "status.online")
		}
		if p.Status.UptimeSec == nil {
			missing = append(missing, "status.uptime_sec")
		}
	}
	if p.Sensors == nil {
		missing = append(missing, "sensors")
	} else {
		if p.Sensors.TemperatureC == nil {
			missing = append(missing, "sensors.temperature_c")
		}
		if p.Sensors.Ph == nil {
			missing = append(missing, "sensors.ph")
		}
		if p.Sensors.DoMgPerL == nil {
			missing = append(missing, "sensors.do_mg_per_l")
		}
		if p.Sensors.TurbiditySensorV == nil {
			missing = append(missing, "sensors.turbidity_sensor_v")
		}
	}
	if p.Camera == nil {
		missing = append(missing, "camera")
	} else {
		if p.Camera.TurbidityIndex == nil {
			missing = append(missing, "camera.turbidity_index")
		}
		if p.Camera.AvgColorHex == nil {
			missing = append(missing, "camera.avg_color_hex")
		}
	}
	if len(missing) > 0 {
		return TelemetryData{}, fmt.Errorf("telemetry payload missing fields: %s", strings.Join(missing, ", "))
	}

	timestamp, err := ParseTimestamp(*p.Timestamp)
	if err != nil {
		return TelemetryData{}, err
	}
	if *p.Status.UptimeSec < 0 {
		return TelemetryData{}, fmt.Errorf("telemetry payload has negative uptime_sec: %d", *p.Status.UptimeSec)
	}

	return TelemetryData{
		Version:          *p.Version,
		DeviceID:         *p.DeviceID,
		Timestamp:        timestamp,
		Online:           *p.Status.Online,
		UptimeSec:        *p.Status.UptimeSec,
		TemperatureC:     *p.Sensors.TemperatureC,
		Ph:               *p.Sensors.Ph,
		DoMgPerL:         *p.Sensors.DoMgPerL,
		TurbiditySensorV: *p.Sensors.TurbiditySensorV,
		TurbidityIndex:   *p.Camera.TurbidityIndex,
		AvgColorHex:      *p.Camera.AvgColorHex,
	}, nil
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp parses an ISO-8601 timestamp. A trailing Z is rewritten to
// +00:00 first, so Z-suffixed UTC timestamps are always accepted. Timestamps
// without an offset are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.Replace(s, "Z", "+00:00", 1)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
