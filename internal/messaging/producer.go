package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	apperrors "github.com/allisson/orderflow/internal/errors"
)

// MessageWriter is the subset of *kafka.Writer used by the producer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter creates a synchronous writer that waits for all in-sync replicas and
// routes messages by key hash. Topics must already exist.
func NewKafkaWriter(bootstrapServers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(bootstrapServers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: false,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
	}
}

// Producer publishes OrderPlaced records keyed by order short code.
type Producer struct {
	writer     MessageWriter
	serializer *Serializer
	logger     *slog.Logger
}

// NewProducer creates a new Producer.
func NewProducer(writer MessageWriter, serializer *Serializer, logger *slog.Logger) *Producer {
	return &Producer{
		writer:     writer,
		serializer: serializer,
		logger:     logger,
	}
}

// PublishOrderPlaced writes event with metadata headers and returns once the broker
// has acknowledged it.
func (p *Producer) PublishOrderPlaced(ctx context.Context, event *OrderPlaced, metadata EventMetadata) error {
	value, err := p.serializer.Serialize(ctx, event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:     []byte(event.OrderShortCode),
		Value:   value,
		Headers: metadata.Headers(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return apperrors.Wrapf(ErrPublish, "order %s: %v", event.OrderShortCode, err)
	}

	p.logger.Debug("order placed event published",
		slog.String("order_short_code", event.OrderShortCode),
		slog.String("event_id", metadata.EventID.String()),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
