package mqtt

import (
	"strings"
	"testing"

	"github.com/danssolutions/greenscale-server/config"
	"github.com/danssolutions/greenscale-server/models"
	"github.com/danssolutions/greenscale-server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeMessage is a canned broker message for driving the handler directly.
type fakeMessage struct {
	payload []byte
}

func (fakeMessage) Duplicate() bool   { return false }
func (fakeMessage) Qos() byte         { return 0 }
func (fakeMessage) Retained() bool    { return false }
func (fakeMessage) Topic() string     { return Topic }
func (fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte { return m.payload }
func (fakeMessage) Ack()              {}

func setupListenerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Farm{}, &models.Device{}, &models.TelemetryData{}))

	config.DB = db
	return db
}

func telemetryCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.TelemetryData{}).Count(&count).Error)
	return count
}

const validPayload = `{
	"version": 1,
	"device_id": "tank-1",
	"timestamp": "2024-06-15T08:30:00Z",
	"status": {"online": true, "uptime_sec": 3600},
	"sensors": {"temperature_c": 21.5, "ph": 7.2, "do_mg_per_l": 8.4, "turbidity_sensor_v": 0.55},
	"camera": {"turbidity_index": 0.31, "avg_color_hex": "#aabbcc"}
}`

func TestHandleMessagePersistsValidPayload(t *testing.T) {
	db := setupListenerDB(t)
	require.NoError(t, db.Create(&models.Device{ID: "tank-1"}).Error)

	handler := handleMessage(zap.NewNop())
	handler(nil, fakeMessage{payload: []byte(validPayload)})

	require.EqualValues(t, 1, telemetryCount(t, db))
	record, err := repository.LatestTelemetryByDevice(db, "tank-1")
	require.NoError(t, err)
	assert.Equal(t, 1, record.Version)
	assert.Equal(t, 3600, record.UptimeSec)
	assert.Equal(t, 0.31, record.TurbidityIndex)
	assert.Equal(t, "#aabbcc", record.AvgColorHex)
}

func TestHandleMessageDropsBadMessagesAndKeepsRunning(t *testing.T) {
	db := setupListenerDB(t)
	handler := handleMessage(zap.NewNop())

	tests := []struct {
		name    string
		payload string
	}{
		{"undecodable JSON", `{"version": 1,`},
		{"wrong field type", `{"version": "one"}`},
		{"missing fields", `{"version": 1, "device_id": "tank-1"}`},
		{"bad timestamp", strings.Replace(validPayload, "2024-06-15T08:30:00Z", "noon", 1)},
		{"unknown device", validPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				handler(nil, fakeMessage{payload: []byte(tt.payload)})
			})
		})
	}

	assert.Zero(t, telemetryCount(t, db), "dropped messages must not write")
}
