package fulfillment

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/messaging"
	orderDomain "github.com/allisson/orderflow/internal/order/domain"
)

// MessageReader is the subset of *kafka.Reader used by the consumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Deserializer decodes registry-framed records.
type Deserializer interface {
	Deserialize(ctx context.Context, data []byte, v any) error
}

// Queue receives orders for fulfillment.
type Queue interface {
	Enqueue(ctx context.Context, order *orderDomain.Order) error
	Close()
}

// NewKafkaReader creates a consumer group reader that starts from the earliest offset
// when the group has none and commits offsets every second.
func NewKafkaReader(bootstrapServers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        bootstrapServers,
		GroupID:        groupID,
		Topic:          topic,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
}

// Consumer reads OrderPlaced events and hands them to the worker pool. When the pool
// is full, Enqueue blocks and polling pauses with it.
type Consumer struct {
	reader       MessageReader
	deserializer Deserializer
	queue        Queue
	logger       *slog.Logger
}

// NewConsumer creates a new Consumer.
func NewConsumer(reader MessageReader, deserializer Deserializer, queue Queue, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:       reader,
		deserializer: deserializer,
		queue:        queue,
		logger:       logger,
	}
}

// Run polls until ctx is cancelled, returning nil in that case. Any other read error is
// returned. On exit the reader and the queue are closed.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("failed to close kafka reader", slog.Any("error", err))
		}
		c.queue.Close()
	}()

	c.logger.Info("order consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if isCancellation(ctx, err) {
				c.logger.Info("order consumer stopping")
				return nil
			}
			return apperrors.Wrap(err, "failed to read order message")
		}

		order, ok := c.decode(ctx, msg)
		if !ok {
			continue
		}

		if err := c.queue.Enqueue(ctx, order); err != nil {
			if isCancellation(ctx, err) {
				c.logger.Info("order consumer stopping")
				return nil
			}
			return apperrors.Wrap(err, "failed to enqueue order")
		}
	}
}

// decode turns a message into an order. Undecodable messages are logged and skipped:
// retrying cannot make them valid.
func (c *Consumer) decode(ctx context.Context, msg kafka.Message) (*orderDomain.Order, bool) {
	attrs := []any{
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
		slog.String("key", string(msg.Key)),
	}

	var event messaging.OrderPlaced
	if err := c.deserializer.Deserialize(ctx, msg.Value, &event); err != nil {
		c.logger.Error("skipping undecodable order message", append(attrs, slog.Any("error", err))...)
		return nil, false
	}

	order, err := event.ToOrder()
	if err != nil {
		c.logger.Error("skipping malformed order message", append(attrs, slog.Any("error", err))...)
		return nil, false
	}

	metadata, err := messaging.MetadataFromHeaders(msg.Headers)
	if err != nil {
		c.logger.Warn("order message has incomplete metadata", append(attrs, slog.Any("error", err))...)
	} else {
		attrs = append(attrs,
			slog.String("event_id", metadata.EventID.String()),
			slog.Int("event_version", metadata.EventVersion),
			slog.Time("occurred_at", metadata.OccurredAt),
		)
	}

	c.logger.Info("received order", append(attrs, slog.String("order_short_code", order.OrderShortCode))...)
	return order, true
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (apperrors.Is(err, context.Canceled) || apperrors.Is(err, context.DeadlineExceeded))
}
