package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/flood-vulnerability-service/internal/config"
	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

const (
	maxAttempts    = 3
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 2 * time.Second

	// Assessments are written one at a time; kafka-go's default one-second
	// batch wait would hold each write.
	batchTimeout = 10 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces FVI assessments to a Kafka topic.
// It implements pipeline.ResultPublisher.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
	backoff time.Duration
}

// NewPublisher creates a Kafka producer for the configured assessment topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger, backoff: initialBackoff}
}

// Publish writes one assessment keyed by its ID, retrying transient broker
// errors with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, result domain.Result) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		p.metrics.PublishErrors.Inc()
		return err
	}

	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			p.metrics.AssessmentsPublished.Inc()
			return nil
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		p.logger.Warn("publish assessment failed, retrying",
			"error", err, "id", result.ID, "attempt", attempt, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}

	p.metrics.PublishErrors.Inc()
	return fmt.Errorf("publish assessment %s: %w", result.ID, err)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Result into a Kafka message.
func serializeToMessage(result domain.Result) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(result.RiskLevel)},
			{Key: "inference", Value: []byte(result.Inference)},
			{Key: "computed_at", Value: []byte(result.ComputedAt().Format(time.RFC3339))},
		},
	}, nil
}
