package messaging

import (
	"context"
	"sync"

	"github.com/hamba/avro/v2"

	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/registry"
)

// SchemaRegistry is the registry surface needed to encode and decode framed records.
type SchemaRegistry interface {
	LatestSchema(ctx context.Context, subject string) (*registry.Schema, error)
	SchemaByID(ctx context.Context, id int) (string, error)
}

// Serializer encodes values with the latest schema registered for a subject. It never
// registers schemas; provisioning does that.
type Serializer struct {
	registry SchemaRegistry
	subject  string

	mu       sync.Mutex
	schema   avro.Schema
	schemaID int
}

// NewSerializer creates a Serializer for the value subject of topic.
func NewSerializer(schemaRegistry SchemaRegistry, topic string) *Serializer {
	return &Serializer{
		registry: schemaRegistry,
		subject:  registry.ValueSubject(topic),
	}
}

// Serialize returns v encoded in the registry wire format.
func (s *Serializer) Serialize(ctx context.Context, v any) ([]byte, error) {
	schema, schemaID, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}

	body, err := avro.Marshal(schema, v)
	if err != nil {
		return nil, apperrors.Wrapf(ErrSerialization, "avro encode for %s: %v", s.subject, err)
	}
	return registry.EncodeFrame(schemaID, body), nil
}

// latest returns the cached schema, fetching it on first use. Failed lookups are not
// cached.
func (s *Serializer) latest(ctx context.Context) (avro.Schema, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema != nil {
		return s.schema, s.schemaID, nil
	}

	registered, err := s.registry.LatestSchema(ctx, s.subject)
	if err != nil {
		return nil, 0, apperrors.Wrapf(ErrSerialization, "schema lookup for %s: %v", s.subject, err)
	}

	schema, err := parseSchema(registered.Schema)
	if err != nil {
		return nil, 0, err
	}

	s.schema = schema
	s.schemaID = registered.ID
	return s.schema, s.schemaID, nil
}

// Deserializer decodes framed records using the writer schema named by the frame's
// schema id.
type Deserializer struct {
	registry SchemaRegistry

	mu      sync.RWMutex
	schemas map[int]avro.Schema
}

// NewDeserializer creates a Deserializer.
func NewDeserializer(schemaRegistry SchemaRegistry) *Deserializer {
	return &Deserializer{
		registry: schemaRegistry,
		schemas:  make(map[int]avro.Schema),
	}
}

// Deserialize decodes data into v.
func (d *Deserializer) Deserialize(ctx context.Context, data []byte, v any) error {
	schemaID, body, err := registry.DecodeFrame(data)
	if err != nil {
		return apperrors.Wrapf(ErrSerialization, "%v", err)
	}

	schema, err := d.schema(ctx, schemaID)
	if err != nil {
		return err
	}

	if err := avro.Unmarshal(schema, body, v); err != nil {
		return apperrors.Wrapf(ErrSerialization, "avro decode with schema %d: %v", schemaID, err)
	}
	return nil
}

func (d *Deserializer) schema(ctx context.Context, id int) (avro.Schema, error) {
	d.mu.RLock()
	schema, ok := d.schemas[id]
	d.mu.RUnlock()
	if ok {
		return schema, nil
	}

	text, err := d.registry.SchemaByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrapf(ErrSerialization, "schema lookup for id %d: %v", id, err)
	}

	schema, err = parseSchema(text)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.schemas[id] = schema
	d.mu.Unlock()
	return schema, nil
}

// parseSchema parses with a private cache so that versions sharing a record name do
// not collide in the package-level cache.
func parseSchema(text string) (avro.Schema, error) {
	schema, err := avro.ParseWithCache(text, "", &avro.SchemaCache{})
	if err != nil {
		return nil, apperrors.Wrapf(ErrSerialization, "parse schema: %v", err)
	}
	return schema, nil
}
