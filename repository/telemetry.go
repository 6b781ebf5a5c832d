package repository

import (
	"errors"
	"time"

	"github.com/danssolutions/greenscale-server/models"
	"gorm.io/gorm"
)

// ErrDeviceNotFound is returned when telemetry references a device id that is
// not present in the device registry.
var ErrDeviceNotFound = errors.New("device not found")

// defaultPeriodAhead is how far past "now" an open-ended period query reaches,
// so readings from devices with slightly fast clocks are still included.
const defaultPeriodAhead = 24 * time.Hour

// AddTelemetry persists one reading. The referenced device must already be
// registered; on an unknown device nothing is written. The store assigns the
// id, overriding whatever the inbound record carries.
func AddTelemetry(db *gorm.DB, data *models.TelemetryData) error {
	exists, err := DeviceExists(db, data.DeviceID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrDeviceNotFound
	}
	data.ID = 0
	return db.Create(data).Error
}

// AllTelemetry returns every stored reading in storage order.
func AllTelemetry(db *gorm.DB) ([]models.TelemetryData, error) {
	records := []models.TelemetryData{}
	err := db.Find(&records).Error
	return records, err
}

// LatestTelemetryByDevice returns the reading with the greatest timestamp for
// the device, or gorm.ErrRecordNotFound when the device has none.
func LatestTelemetryByDevice(db *gorm.DB, deviceID string) (models.TelemetryData, error) {
	var record models.TelemetryData
	err := db.Where("device_id = ?", deviceID).Order("timestamp desc").First(&record).Error
	return record, err
}

// TelemetryPeriodByDevice returns the device's readings with
// start <= timestamp <= end, ascending by timestamp. A nil end defaults to
// one day past the current instant.
func TelemetryPeriodByDevice(db *gorm.DB, deviceID string, start time.Time, end *time.Time) ([]models.TelemetryData, error) {
	until := time.Now().UTC().Add(defaultPeriodAhead)
	if end != nil {
		until = *end
	}
	records := []models.TelemetryData{}
	err := db.Where("device_id = ? AND timestamp >= ? AND timestamp <= ?", deviceID, start, until).
		Order("timestamp asc").
		Find(&records).Error
	return records, err
}
