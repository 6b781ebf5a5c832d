package controllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/danssolutions/greenscale-server/config"
	"github.com/danssolutions/greenscale-server/models"
	"github.com/danssolutions/greenscale-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Broadcasts originate from the MQTT listener's goroutines while connects and
// disconnects happen on HTTP goroutines, so the client set needs a lock.
var (
	wsClients = make(map[*websocket.Conn]bool)
	wsMutex   sync.Mutex
)

// HandleWebSocket upgrades the connection and keeps it registered for live
// telemetry updates until the client goes away.
func HandleWebSocket(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wsMutex.Lock()
	wsClients[conn] = true
	wsMutex.Unlock()

	defer func() {
		wsMutex.Lock()
		delete(wsClients, conn)
		wsMutex.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// BroadcastTelemetry pushes a freshly ingested record to all connected clients.
func BroadcastTelemetry(data models.TelemetryData) {
	msg, _ := json.Marshal(data)
	broadcast(msg)
}

// NotifyOutOfRange sends a notification when a reading falls outside its
// farm's configured ranges. Devices without a farm are skipped; the reading
// itself is already persisted either way.
func NotifyOutOfRange(data models.TelemetryData) {
	var device models.Device
	if err := config.DB.First(&device, "id = ?", data.DeviceID).Error; err != nil || device.FarmID == nil {
		return
	}
	var farm models.Farm
	if err := config.DB.First(&farm, *device.FarmID).Error; err != nil {
		return
	}

	violations := utils.OutOfRange(farm, data)
	if len(violations) == 0 {
		return
	}

	notification := map[string]interface{}{
		"message":    "Out-of-range telemetry detected",
		"violations": violations,
		"data":       data,
	}
	msg, _ := json.Marshal(notification)
	broadcast(msg)
}

func broadcast(msg []byte) {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	for conn := range wsClients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			config.Logger.Debug("websocket write failed", zap.Error(err))
		}
	}
}
