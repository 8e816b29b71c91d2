package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/solar-forecast-service/internal/config"
	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/observability"
)

// Publisher produces appended measurements to a Kafka topic.
type Publisher struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured measurement topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaMeasurementTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// Publish serializes one measurement and writes it to the topic.
func (p *Publisher) Publish(ctx context.Context, m domain.Measurement) error {
	msg, err := serializeToMessage(m)
	if err != nil {
		p.metrics.KafkaPublishes.WithLabelValues("error").Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.KafkaPublishes.WithLabelValues("error").Inc()
		return fmt.Errorf("publish measurement: %w", err)
	}
	p.metrics.KafkaPublishes.WithLabelValues("success").Inc()
	p.logger.Debug("measurement published", "topic", p.writer.Topic, "key", string(msg.Key))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Measurement into a Kafka message keyed by its
// dataset timestamp.
func serializeToMessage(m domain.Measurement) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize measurement: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(domain.FormatTime(m.Time)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("add-form")},
			{Key: "published_at", Value: []byte(domain.Now().Format(time.RFC3339))},
		},
	}, nil
}
