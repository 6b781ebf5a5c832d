package controllers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/danssolutions/greenscale-server/config"
	"github.com/danssolutions/greenscale-server/models"
	"github.com/danssolutions/greenscale-server/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetAllTelemetry returns every stored reading.
func GetAllTelemetry(c *gin.Context) {
	records, err := repository.AllTelemetry(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch telemetry data"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetLatestTelemetry returns the newest reading for a device, or 404 when the
// device has no readings yet.
func GetLatestTelemetry(c *gin.Context) {
	record, err := repository.LatestTelemetryByDevice(config.DB, c.Param("device_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No telemetry data for device"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch telemetry data"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetTelemetryPeriod returns a device's readings between start and end,
// ascending. start is required; end is optional and defaults to one day past
// now inside the repository.
func GetTelemetryPeriod(c *gin.Context) {
	startParam := c.Query("start")
	if startParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start is required"})
		return
	}
	start, err := models.ParseTimestamp(startParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start timestamp"})
		return
	}
	end, ok := optionalEnd(c)
	if !ok {
		return
	}

	records, err := repository.TelemetryPeriodByDevice(config.DB, c.Param("device_id"), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch telemetry data"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ExportTelemetryCSV sends a device's history as a CSV file. start and end are
// both optional; omitting start exports from the beginning of time.
func ExportTelemetryCSV(c *gin.Context) {
	start := time.Time{}
	if startParam := c.Query("start"); startParam != "" {
		parsed, err := models.ParseTimestamp(startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start timestamp"})
			return
		}
		start = parsed
	}
	end, ok := optionalEnd(c)
	if !ok {
		return
	}

	deviceID := c.Param("device_id")
	records, err := repository.TelemetryPeriodByDevice(config.DB, deviceID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch telemetry data"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-telemetry.csv", deviceID))
	if err := writeTelemetryCSV(c.Writer, records); err != nil {
		// Headers are already out, so there is no error response to send.
		config.Logger.Warn("telemetry CSV export interrupted",
			zap.String("device_id", deviceID), zap.Error(err))
	}
}

func writeTelemetryCSV(w io.Writer, records []models.TelemetryData) error {
	writer := csv.NewWriter(w)
	writer.Write([]string{"timestamp", "online", "uptime_sec", "temperature_c", "ph", "do_mg_per_l", "turbidity_sensor_v", "turbidity_index", "avg_color_hex"})
	for _, record := range records {
		writer.Write([]string{
			record.Timestamp.Format(time.RFC3339),
			strconv.FormatBool(record.Online),
			strconv.Itoa(record.UptimeSec),
			fmt.Sprintf("%.2f", record.TemperatureC),
			fmt.Sprintf("%.2f", record.Ph),
			fmt.Sprintf("%.2f", record.DoMgPerL),
			fmt.Sprintf("%.2f", record.TurbiditySensorV),
			fmt.Sprintf("%.2f", record.TurbidityIndex),
			record.AvgColorHex,
		})
	}
	writer.Flush()
	return writer.Error()
}

func optionalEnd(c *gin.Context) (*time.Time, bool) {
	endParam := c.Query("end")
	if endParam == "" {
		return nil, true
	}
	end, err := models.ParseTimestamp(endParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end timestamp"})
		return nil, false
	}
	return &end, true
}
