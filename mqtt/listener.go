package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danssolutions/greenscale-server/config"
	"github.com/danssolutions/greenscale-server/controllers"
	"github.com/danssolutions/greenscale-server/models"
	"github.com/danssolutions/greenscale-server/repository"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Topic is the single topic the edge devices publish telemetry on.
const Topic = "greenscale/greenscale-edge/telemetry"

const connectTimeout = 10 * time.Second

// StartListener connects to the broker and subscribes to the telemetry topic.
// Message handling runs on the paho client's own goroutines, independent of
// the HTTP serving context. An initial connect failure is returned to the
// caller; ingestion is best-effort and must not stop the query API, so main
// only logs it. Reconnects after an established connection drop are handled
// by the client itself.
func StartListener(logger *zap.Logger) error {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "127.0.0.1"
	}
	port := os.Getenv("MQTT_PORT")
	if port == "" {
		port = "1883"
	}

	scheme := "tcp"
	opts := paho.NewClientOptions()
	if caPath := os.Getenv("MQTT_CA_CERT"); caPath != "" {
		tlsConfig, err := pinnedCATLSConfig(caPath)
		if err != nil {
			return fmt.Errorf("load MQTT CA certificate: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%s", scheme, broker, port))
	opts.SetClientID("greenscale-api-" + uuid.NewString())
	opts.SetUsername(os.Getenv("MQTT_USERNAME"))
	opts.SetPassword(os.Getenv("MQTT_PASSWORD"))
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	opts.OnConnect = func(client paho.Client) {
		logger.Info("connected to MQTT broker")
		// Subscribing here resubscribes after every reconnect. A failed
		// subscribe is logged but does not tear down the connection.
		if token := client.Subscribe(Topic, 0, handleMessage(logger)); token.Wait() && token.Error() != nil {
			logger.Error("MQTT subscribe failed", zap.String("topic", Topic), zap.Error(token.Error()))
			return
		}
		logger.Info("subscribed to topic", zap.String("topic", Topic))
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// handleMessage processes one delivered message. Every failure is logged and
// the message dropped; a bad message never kills the listener.
func handleMessage(logger *zap.Logger) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		var payload models.TelemetryPayload
		if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
			logger.Warn("undecodable telemetry message",
				zap.String("topic", msg.Topic()), zap.Error(err))
			return
		}

		data, err := models.TelemetryFromPayload(payload)
		if err != nil {
			logger.Warn("invalid telemetry payload", zap.Error(err))
			return
		}

		if err := repository.AddTelemetry(config.DB, &data); err != nil {
			logger.Warn("telemetry not persisted",
				zap.String("device_id", data.DeviceID), zap.Error(err))
			return
		}

		controllers.BroadcastTelemetry(data)
		controllers.NotifyOutOfRange(data)
	}
}

func pinnedCATLSConfig(path string) (*tls.Config, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return &tls.Config{RootCAs: pool}, nil
}
