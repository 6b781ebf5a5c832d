package repository

import (
	"github.com/danssolutions/greenscale-server/models"
	"gorm.io/gorm"
)

// DeviceExists reports whether a device id is present in the registry. This is
// the sole gate telemetry ingestion checks; farm association is not consulted.
func DeviceExists(db *gorm.DB, deviceID string) (bool, error) {
	var count int64
	err := db.Model(&models.Device{}).Where("id = ?", deviceID).Count(&count).Error
	return count > 0, err
}

func CreateDevice(db *gorm.DB, device *models.Device) error {
	return db.Create(device).Error
}

// DeleteDevice removes a device and reports how many rows were affected, so
// callers can distinguish a missing device from a successful delete.
func DeleteDevice(db *gorm.DB, deviceID string) (int64, error) {
	result := db.Where("id = ?", deviceID).Delete(&models.Device{})
	return result.RowsAffected, result.Error
}

func DevicesByFarm(db *gorm.DB, farmID uint) ([]models.Device, error) {
	devices := []models.Device{}
	err := db.Where("farm_id = ?", farmID).Find(&devices).Error
	return devices, err
}
