package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"anpr-crossing/internal/config"
	"anpr-crossing/internal/domain/anpr"
)

var ErrNotConfigured = errors.New("mqtt broker is not configured")

const publishTimeout = 5 * time.Second

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes every plate record as JSON on one topic.
type MQTTSink struct {
	client publisher
	conn   mqtt.Client
	topic  string
	log    zerolog.Logger
}

func NewMQTTSink(cfg config.MQTTConfig, log zerolog.Logger) (*MQTTSink, error) {
	if cfg.Broker == "" {
		return nil, ErrNotConfigured
	}
	log = log.With().Str("component", "mqtt_sink").Str("broker", cfg.Broker).Logger()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("client_id", cfg.ClientID).Msg("mqtt connection established")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost, will auto-reconnect")
	}

	client := mqtt.NewClient(opts)
	// With connect retry the token only completes once the broker is reachable,
	// so startup does not wait for it.
	token := client.Connect()
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Msg("mqtt connection failed")
		}
	}()

	return &MQTTSink{client: client, conn: client, topic: cfg.Topic, log: log}, nil
}

type plateMessage struct {
	ID                  string  `json:"id"`
	Plate               string  `json:"plate"`
	EntryDate           string  `json:"entry_date"`
	EntryTime           string  `json:"entry_time"`
	EmittedAt           string  `json:"emitted_at"`
	CameraID            string  `json:"camera_id"`
	TrackID             int64   `json:"track_id"`
	ClassName           string  `json:"class_name"`
	Confidence          float64 `json:"confidence"`
	DetectionConfidence float64 `json:"detection_confidence"`
}

func encode(record anpr.PlateRecord) ([]byte, error) {
	return json.Marshal(plateMessage{
		ID:                  record.ID.String(),
		Plate:               record.Text,
		EntryDate:           record.EntryDate,
		EntryTime:           record.EntryTime,
		EmittedAt:           record.EmittedAt.Format(time.RFC3339Nano),
		CameraID:            record.CameraID,
		TrackID:             record.TrackID,
		ClassName:           record.ClassName,
		Confidence:          record.Confidence,
		DetectionConfidence: record.DetectionConfidence,
	})
}

func (s *MQTTSink) Append(_ context.Context, record anpr.PlateRecord) {
	payload, err := encode(record)
	if err != nil {
		s.log.Error().Err(err).Str("record_id", record.ID.String()).Msg("failed to encode plate record")
		return
	}

	token := s.client.Publish(s.topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		s.log.Warn().Str("record_id", record.ID.String()).Str("topic", s.topic).Msg("mqtt publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		s.log.Error().Err(err).Str("record_id", record.ID.String()).Str("topic", s.topic).Msg("mqtt publish failed")
		return
	}

	s.log.Debug().Str("record_id", record.ID.String()).Str("topic", s.topic).Msg("plate record published")
}

func (s *MQTTSink) Close() {
	if s.conn != nil {
		s.conn.Disconnect(250)
	}
}
