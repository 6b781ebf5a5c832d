package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danssolutions/greenscale-server/config"
	"github.com/danssolutions/greenscale-server/models"
	"github.com/danssolutions/greenscale-server/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetFarm returns a farm by id.
func GetFarm(c *gin.Context) {
	var farm models.Farm
	if err := config.DB.First(&farm, "id = ?", c.Param("farm_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Farm not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch farm"})
		return
	}
	c.JSON(http.StatusOK, farm)
}

// CreateFarm creates a farm with its configured sensor ranges.
func CreateFarm(c *gin.Context) {
	var farm models.Farm
	if err := c.ShouldBindJSON(&farm); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	farm.ID = 0
	if err := config.DB.Create(&farm).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create farm"})
		return
	}
	c.JSON(http.StatusCreated, farm)
}

// UpdateFarm replaces every configurable field of the farm, not a merge.
func UpdateFarm(c *gin.Context) {
	var farm models.Farm
	if err := config.DB.First(&farm, "id = ?", c.Param("farm_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Farm not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch farm"})
		return
	}

	var input models.Farm
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	input.ID = farm.ID
	if err := config.DB.Save(&input).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update farm"})
		return
	}
	c.JSON(http.StatusOK, input)
}

// DeleteFarm removes the farm. Its devices are left in place, still carrying
// the deleted farm id.
func DeleteFarm(c *gin.Context) {
	result := config.DB.Where("id = ?", c.Param("farm_id")).Delete(&models.Farm{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete farm"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Farm not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Farm deleted successfully"})
}

// GetFarmDevices lists the devices associated with a farm.
func GetFarmDevices(c *gin.Context) {
	farmID, err := strconv.ParseUint(c.Param("farm_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farm id"})
		return
	}

	devices, err := repository.DevicesByFarm(config.DB, uint(farmID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch devices"})
		return
	}
	c.JSON(http.StatusOK, devices)
}
