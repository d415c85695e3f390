package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-surrogate/internal/config"
	"github.com/couchcryptid/climate-surrogate/internal/scenario"
	"github.com/couchcryptid/climate-surrogate/internal/surrogate"
)

// EventTypeModelPublished is the event_type header of model announcements.
const EventTypeModelPublished = "model.published"

// ModelPublished announces a newly saved surrogate artifact.
type ModelPublished struct {
	EventID               string          `json:"event_id"`
	ModelID               string          `json:"model_id"`
	Domain                scenario.Domain `json:"domain"`
	FormatVersion         int             `json:"format_version"`
	FeatureNames          []string        `json:"feature_names"`
	TargetName            string          `json:"target"`
	DatasetDigest         string          `json:"dataset_digest"`
	SamplingPolicyVersion int             `json:"sampling_policy_version"`
	TrainingSamples       int             `json:"training_samples"`
	ValidationMAE         float64         `json:"validation_mae"`
	ValidationRMSE        float64         `json:"validation_rmse"`
	ValidationR2          float64         `json:"validation_r2"`
	TrainedAt             time.Time       `json:"trained_at"`
	PublishedAt           time.Time       `json:"published_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces model events to a Kafka topic.
// It implements pipeline.EventPublisher.
type Writer struct {
	writer messageWriter
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured model topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaModelTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		Compression:  kafkago.Zstd,
	}
	return &Writer{writer: w, clock: clockwork.NewRealClock(), logger: logger}
}

// PublishModel sends one ModelPublished event keyed by domain, so successive
// models for a domain stay ordered on one partition.
func (w *Writer) PublishModel(ctx context.Context, m *surrogate.TrainedModel) error {
	event := newModelPublished(m, w.clock.Now().UTC())
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish model %s: %w", m.ID, err)
	}
	w.logger.Debug("model event published", "event_id", event.EventID, "model_id", m.ID, "domain", m.Domain)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func newModelPublished(m *surrogate.TrainedModel, now time.Time) ModelPublished {
	return ModelPublished{
		EventID:               uuid.NewString(),
		ModelID:               m.ID,
		Domain:                m.Domain,
		FormatVersion:         m.FormatVersion,
		FeatureNames:          m.FeatureNames,
		TargetName:            m.TargetName,
		DatasetDigest:         m.DatasetDigest,
		SamplingPolicyVersion: m.SamplingPolicyVersion,
		TrainingSamples:       m.TrainingSamples,
		ValidationMAE:         m.Metrics.MAE,
		ValidationRMSE:        m.Metrics.RMSE,
		ValidationR2:          m.Metrics.R2,
		TrainedAt:             m.TrainedAt,
		PublishedAt:           now,
	}
}

// serializeToMessage marshals a ModelPublished event into a Kafka message.
func serializeToMessage(event ModelPublished) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize model event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Domain),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventTypeModelPublished)},
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "model_id", Value: []byte(event.ModelID)},
			{Key: "published_at", Value: []byte(event.PublishedAt.Format(time.RFC3339))},
		},
	}, nil
}
