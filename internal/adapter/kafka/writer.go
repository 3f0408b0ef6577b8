package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/api"
	"github.com/couchcryptid/nato-watch-service/internal/config"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Sighting is the message value published for each aircraft in a snapshot.
type Sighting struct {
	api.AirspaceAircraft
	ObservedAt time.Time `json:"observed_at"`
}

// Writer publishes aircraft sightings to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sightings topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one message per aircraft in a single WriteMessages call.
// Messages are keyed by hex so one aircraft's sightings stay on one partition.
func (w *Writer) Publish(ctx context.Context, aircraft []domain.Aircraft) error {
	if len(aircraft) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(aircraft))
	for i := range aircraft {
		msg, err := serializeToMessage(&aircraft[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write sightings: %w", err)
	}
	w.logger.Debug("sightings published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(a *domain.Aircraft) (kafkago.Message, error) {
	data, err := json.Marshal(Sighting{AirspaceAircraft: api.NewAirspaceAircraft(a), ObservedAt: a.Timestamp.UTC()})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sighting: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.Hex),
		Value: data,
		Time:  a.Timestamp,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(a.Source)},
			{Key: "is_military", Value: []byte(strconv.FormatBool(a.IsMilitary))},
			{Key: "observed_at", Value: []byte(a.Timestamp.UTC().Format(time.RFC3339))},
		},
	}, nil
}
