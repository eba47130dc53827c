package registry

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/provisioning"
)

// schemaSuffix marks Avro schema files in the provisioning source.
const schemaSuffix = ".avsc"

// Registrar is the registry surface the provisioner needs.
type Registrar interface {
	Subjects(ctx context.Context) ([]string, error)
	Register(ctx context.Context, subject, schema string) (int, error)
}

// FileSource lists and reads provisioning files.
type FileSource interface {
	ReadFile(ctx context.Context, key string) ([]byte, error)
	ListKeys(ctx context.Context, prefix, suffix string) ([]string, error)
}

// ProvisionerConfig holds schema provisioning settings.
type ProvisionerConfig struct {
	MaxRetries    int
	RetryDelay    time.Duration
	SchemasPrefix string
}

// SchemaProvisioner registers every Avro schema found in the provisioning source under
// the subject "{file basename}-value".
type SchemaProvisioner struct {
	config    ProvisionerConfig
	registrar Registrar
	source    FileSource
	logger    *slog.Logger
}

// NewSchemaProvisioner creates a new SchemaProvisioner.
func NewSchemaProvisioner(
	config ProvisionerConfig,
	registrar Registrar,
	source FileSource,
	logger *slog.Logger,
) *SchemaProvisioner {
	return &SchemaProvisioner{
		config:    config,
		registrar: registrar,
		source:    source,
		logger:    logger,
	}
}

// Run waits for the registry and registers the schemas.
func (p *SchemaProvisioner) Run(ctx context.Context) error {
	if err := p.WaitForRegistry(ctx); err != nil {
		return err
	}
	return p.RegisterSchemas(ctx)
}

// WaitForRegistry probes GET /subjects until the registry answers or the retry budget
// is spent.
func (p *SchemaProvisioner) WaitForRegistry(ctx context.Context) error {
	return provisioning.WaitFor(ctx, "schema registry", p.config.MaxRetries, p.config.RetryDelay, p.logger,
		func(ctx context.Context) error {
			_, err := p.registrar.Subjects(ctx)
			return err
		})
}

// RegisterSchemas registers each schema file. A schema the registry already holds is
// not an error.
func (p *SchemaProvisioner) RegisterSchemas(ctx context.Context) error {
	keys, err := p.source.ListKeys(ctx, p.config.SchemasPrefix, schemaSuffix)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		p.logger.Warn("no schema files found", slog.String("prefix", p.config.SchemasPrefix))
		return nil
	}

	for _, key := range keys {
		schema, err := p.source.ReadFile(ctx, key)
		if err != nil {
			return err
		}

		subject := SubjectForFile(key)
		id, err := p.registrar.Register(ctx, subject, string(schema))
		if err != nil {
			if apperrors.Is(err, ErrSchemaConflict) {
				p.logger.Info("schema already registered", slog.String("subject", subject))
				continue
			}
			return apperrors.Wrapf(err, "failed to register schema for subject %s", subject)
		}

		p.logger.Info("schema registered", slog.String("subject", subject), slog.Int("schema_id", id))
	}

	return nil
}

// SubjectForFile maps "schemas/orders.avsc" to "orders-value".
func SubjectForFile(key string) string {
	return ValueSubject(strings.TrimSuffix(path.Base(key), schemaSuffix))
}

// ValueSubject returns the value subject of a topic.
func ValueSubject(topic string) string {
	return topic + "-value"
}
