package main

import (
	"log"
	"os"

	"github.com/danssolutions/greenscale-server/config"
	"github.com/danssolutions/greenscale-server/controllers"
	"github.com/danssolutions/greenscale-server/middlewares"
	"github.com/danssolutions/greenscale-server/mqtt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	godotenv.Load()

	logger, err := config.NewLogger()
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()
	config.Logger = logger

	// Connect to PostgreSQL database
	dsn := os.Getenv("DATABASE_URL")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Set the global DB in the config package and migrate models
	if err := controllers.MigrateModels(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Start the telemetry listener. Ingestion is best-effort: if the broker
	// is unreachable the API keeps serving queries without it.
	if err := mqtt.StartListener(logger); err != nil {
		logger.Error("MQTT listener not started", zap.Error(err))
	}

	// Set up Gin router with CORS configuration
	r := gin.Default()
	r.Use(middlewares.CORS())

	// Public routes
	r.POST("/signup", controllers.Signup)
	r.POST("/login", controllers.Login)
	r.GET("/ws", controllers.HandleWebSocket)

	api := r.Group("/api")
	api.GET("/telemetry-data/all", controllers.GetAllTelemetry)
	api.GET("/telemetry-data/:device_id/latest", controllers.GetLatestTelemetry)
	api.GET("/telemetry-data/:device_id/period", controllers.GetTelemetryPeriod)
	api.GET("/telemetry-data/:device_id/export", controllers.ExportTelemetryCSV)
	api.GET("/farms/:farm_id", controllers.GetFarm)
	api.POST("/farms", controllers.CreateFarm)
	api.PUT("/farms/:farm_id/edit", controllers.UpdateFarm)
	api.DELETE("/farms/:farm_id/delete", controllers.DeleteFarm)
	api.GET("/farms/:farm_id/devices", controllers.GetFarmDevices)
	api.POST("/devices", controllers.CreateDevice)
	api.DELETE("/devices/:device_id/delete", controllers.DeleteDevice)
	api.GET("/users", controllers.GetUsers)

	// Protected routes using auth middleware
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	auth.GET("/profile", controllers.GetProfile)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
