package controllers

import (
	"github.com/danssolutions/greenscale-server/config"
	"github.com/danssolutions/greenscale-server/models"

	"gorm.io/gorm"
)

// MigrateModels runs the database migrations.
func MigrateModels(db *gorm.DB) error {
	config.DB = db
	return db.AutoMigrate(&models.User{}, &models.Farm{}, &models.Device{}, &models.TelemetryData{})
}
