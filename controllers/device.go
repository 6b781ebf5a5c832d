package controllers

import (
	"net/http"

	"github.com/danssolutions/greenscale-server/config"
	"github.com/danssolutions/greenscale-server/models"
	"github.com/danssolutions/greenscale-server/repository"

	"github.com/gin-gonic/gin"
)

// CreateDevice registers a device. The id comes from the hardware itself and
// must be unique; the farm association is optional.
func CreateDevice(c *gin.Context) {
	var device models.Device
	if err := c.ShouldBindJSON(&device); err != nil || device.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := repository.CreateDevice(config.DB, &device); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Device already exists"})
		return
	}
	c.JSON(http.StatusCreated, device)
}

// DeleteDevice removes a device from the registry. Its telemetry history is
// kept.
func DeleteDevice(c *gin.Context) {
	affected, err := repository.DeleteDevice(config.DB, c.Param("device_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete device"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device deleted successfully"})
}
