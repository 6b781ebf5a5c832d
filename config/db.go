package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// DB is a global variable to hold the database connection. gorm pools
// connections internally, so each operation runs on its own short-lived
// session and nothing is held across requests.
var DB *gorm.DB

// Logger is the process-wide structured logger. It defaults to a nop logger
// so packages stay usable in tests before main wires the real one.
var Logger = zap.NewNop()

// NewLogger builds the production logger used by main and the MQTT listener:
// JSON to stdout with ISO-8601 timestamps, for Docker log collectors.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
