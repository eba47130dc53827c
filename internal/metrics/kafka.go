package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

// KafkaMetrics exports kafka-go client statistics. kafka-go resets its counters on every
// Stats call, so each sample is added to the running Prometheus totals.
// A nil *KafkaMetrics ignores every observation.
type KafkaMetrics struct {
	messages *prometheus.CounterVec
	errors   *prometheus.CounterVec
	retries  *prometheus.CounterVec
	lag      *prometheus.GaugeVec
	queued   *prometheus.GaugeVec
}

// NewKafkaMetrics registers the Kafka client metrics on the provided registerer.
func NewKafkaMetrics(reg prometheus.Registerer, namespace string) (*KafkaMetrics, error) {
	km := &KafkaMetrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Messages written or read by the Kafka clients.",
		}, []string{"client", "topic"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_errors_total",
			Help:      "Errors reported by the Kafka clients.",
		}, []string{"client", "topic"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_writer_retries_total",
			Help:      "Write attempts retried by the Kafka writer.",
		}, []string{"topic"}),
		lag: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kafka_consumer_lag",
			Help:      "Messages between the consumer offset and the end of the partition.",
		}, []string{"topic"}),
		queued: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kafka_consumer_queue_length",
			Help:      "Messages fetched by the reader and not yet handed to the consumer.",
		}, []string{"topic"}),
	}

	for _, collector := range []prometheus.Collector{km.messages, km.errors, km.retries, km.lag, km.queued} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return km, nil
}

// ObserveWriter adds one writer stats sample.
func (k *KafkaMetrics) ObserveWriter(stats kafka.WriterStats) {
	if k == nil {
		return
	}
	k.messages.WithLabelValues("writer", normalizeTopic(stats.Topic)).Add(float64(stats.Messages))
	k.errors.WithLabelValues("writer", normalizeTopic(stats.Topic)).Add(float64(stats.Errors))
	k.retries.WithLabelValues(normalizeTopic(stats.Topic)).Add(float64(stats.Retries))
}

// ObserveReader adds one reader stats sample.
func (k *KafkaMetrics) ObserveReader(stats kafka.ReaderStats) {
	if k == nil {
		return
	}
	topic := normalizeTopic(stats.Topic)
	k.messages.WithLabelValues("reader", topic).Add(float64(stats.Messages))
	k.errors.WithLabelValues("reader", topic).Add(float64(stats.Errors))
	k.lag.WithLabelValues(topic).Set(float64(stats.Lag))
	k.queued.WithLabelValues(topic).Set(float64(stats.QueueLength))
}

// SampleKafkaStats calls sample every interval until ctx ends, and once more on the way
// out so the final counters are not lost.
func SampleKafkaStats(ctx context.Context, interval time.Duration, sample func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sample()
			return ctx.Err()
		case <-ticker.C:
			sample()
		}
	}
}

func normalizeTopic(topic string) string {
	if topic == "" {
		return "unknown"
	}
	return topic
}
