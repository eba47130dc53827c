package topics

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/provisioning"
)

const (
	configRetentionMs   = "retention.ms"
	configCleanupPolicy = "cleanup.policy"
)

// AdminClient is the subset of *kafka.Client used for provisioning.
type AdminClient interface {
	Metadata(ctx context.Context, req *kafka.MetadataRequest) (*kafka.MetadataResponse, error)
	CreateTopics(ctx context.Context, req *kafka.CreateTopicsRequest) (*kafka.CreateTopicsResponse, error)
}

// FileSource reads provisioning files.
type FileSource interface {
	ReadFile(ctx context.Context, key string) ([]byte, error)
}

// ProvisionerConfig holds topic provisioning settings.
type ProvisionerConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	TopicsFile string
}

// Provisioner creates the topics listed in the topic definition file that the
// cluster does not have yet.
type Provisioner struct {
	config ProvisionerConfig
	admin  AdminClient
	source FileSource
	logger *slog.Logger
}

// NewAdminClient creates a kafka-go client bound to the bootstrap servers.
func NewAdminClient(bootstrapServers []string) *kafka.Client {
	return &kafka.Client{
		Addr:    kafka.TCP(bootstrapServers...),
		Timeout: 10 * time.Second,
	}
}

// NewProvisioner creates a new Provisioner.
func NewProvisioner(
	config ProvisionerConfig,
	admin AdminClient,
	source FileSource,
	logger *slog.Logger,
) *Provisioner {
	return &Provisioner{
		config: config,
		admin:  admin,
		source: source,
		logger: logger,
	}
}

// Run waits for the broker and creates the missing topics.
func (p *Provisioner) Run(ctx context.Context) error {
	if err := p.WaitForBroker(ctx); err != nil {
		return err
	}
	return p.RegisterTopics(ctx)
}

// WaitForBroker issues metadata requests until at least one broker is reported.
func (p *Provisioner) WaitForBroker(ctx context.Context) error {
	return provisioning.WaitFor(ctx, "kafka broker", p.config.MaxRetries, p.config.RetryDelay, p.logger,
		func(ctx context.Context) error {
			resp, err := p.admin.Metadata(ctx, &kafka.MetadataRequest{})
			if err != nil {
				return err
			}
			if len(resp.Brokers) == 0 {
				return errors.New("metadata response lists no brokers")
			}
			return nil
		})
}

// RegisterTopics creates every defined topic that does not exist yet. A missing
// definition file is not an error.
func (p *Provisioner) RegisterTopics(ctx context.Context) error {
	data, err := p.source.ReadFile(ctx, p.config.TopicsFile)
	if err != nil {
		if apperrors.Is(err, provisioning.ErrFileNotFound) {
			p.logger.Warn("topics file not found, nothing to create", slog.String("file", p.config.TopicsFile))
			return nil
		}
		return err
	}

	file, err := ParseFile(data)
	if err != nil {
		return err
	}
	if len(file.Topics) == 0 {
		p.logger.Warn("topics file defines no topics", slog.String("file", p.config.TopicsFile))
		return nil
	}

	existing := p.existingTopics(ctx)

	var missing []kafka.TopicConfig
	for _, definition := range file.Topics {
		if _, ok := existing[definition.Name]; ok {
			p.logger.Info("topic already exists", slog.String("topic", definition.Name))
			continue
		}
		missing = append(missing, topicConfig(definition))
	}

	if len(missing) == 0 {
		return nil
	}

	resp, err := p.admin.CreateTopics(ctx, &kafka.CreateTopicsRequest{Topics: missing})
	if err != nil {
		return apperrors.Wrap(err, "failed to create topics")
	}

	var errs []error
	for _, topic := range missing {
		topicErr := resp.Errors[topic.Topic]
		switch {
		case topicErr == nil:
			p.logger.Info("topic created",
				slog.String("topic", topic.Topic),
				slog.Int("partitions", topic.NumPartitions),
				slog.Int("replication_factor", topic.ReplicationFactor),
			)
		case errors.Is(topicErr, kafka.TopicAlreadyExists):
			p.logger.Info("topic already exists", slog.String("topic", topic.Topic))
		default:
			errs = append(errs, apperrors.Wrapf(topicErr, "failed to create topic %s", topic.Topic))
		}
	}

	return apperrors.Join(errs...)
}

// existingTopics returns the topic names known to the cluster. A failed lookup is
// logged and treated as an empty cluster; creation then tolerates duplicates.
func (p *Provisioner) existingTopics(ctx context.Context) map[string]struct{} {
	names := make(map[string]struct{})

	resp, err := p.admin.Metadata(ctx, &kafka.MetadataRequest{})
	if err != nil {
		p.logger.Warn("could not list existing topics", slog.Any("error", err))
		return names
	}

	for _, topic := range resp.Topics {
		if topic.Error != nil {
			continue
		}
		names[topic.Name] = struct{}{}
	}
	return names
}

func topicConfig(definition Definition) kafka.TopicConfig {
	config := kafka.TopicConfig{
		Topic:             definition.Name,
		NumPartitions:     definition.Partitions,
		ReplicationFactor: definition.ReplicationFactor,
	}

	if definition.RetentionMs != nil {
		config.ConfigEntries = append(config.ConfigEntries, kafka.ConfigEntry{
			ConfigName:  configRetentionMs,
			ConfigValue: strconv.FormatInt(*definition.RetentionMs, 10),
		})
	}
	if definition.CleanupPolicy != nil && *definition.CleanupPolicy != "" {
		config.ConfigEntries = append(config.ConfigEntries, kafka.ConfigEntry{
			ConfigName:  configCleanupPolicy,
			ConfigValue: *definition.CleanupPolicy,
		})
	}
	return config
}
