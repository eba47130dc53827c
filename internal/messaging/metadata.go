package messaging

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	apperrors "github.com/allisson/orderflow/internal/errors"
	outboxDomain "github.com/allisson/orderflow/internal/outbox/domain"
)

// Header keys carrying event metadata.
const (
	HeaderEventID      = "event-id"
	HeaderEventVersion = "event-version"
	HeaderOccurredAt   = "occurred-at"
	HeaderEntityType   = "entity-type"
	HeaderEntityID     = "entity-id"
)

// EventMetadata travels in message headers; the payload holds business fields only.
type EventMetadata struct {
	EventID      uuid.UUID
	EventVersion int
	OccurredAt   time.Time
	EntityType   string
	EntityID     string
}

// MetadataFromOutboxEvent builds the metadata of an outbox row.
func MetadataFromOutboxEvent(event *outboxDomain.OutboxEvent) EventMetadata {
	return EventMetadata{
		EventID:      event.ID,
		EventVersion: event.EventVersion,
		OccurredAt:   event.OccurredAt,
		EntityType:   string(event.EntityType),
		EntityID:     event.EntityID,
	}
}

// Headers encodes the metadata as UTF-8 message headers.
func (m EventMetadata) Headers() []kafka.Header {
	return []kafka.Header{
		{Key: HeaderEventID, Value: []byte(m.EventID.String())},
		{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(m.EventVersion))},
		{Key: HeaderOccurredAt, Value: []byte(m.OccurredAt.Format(time.RFC3339Nano))},
		{Key: HeaderEntityType, Value: []byte(m.EntityType)},
		{Key: HeaderEntityID, Value: []byte(m.EntityID)},
	}
}

// MetadataFromHeaders decodes message headers. Every metadata header must be present.
func MetadataFromHeaders(headers []kafka.Header) (EventMetadata, error) {
	values := make(map[string]string, len(headers))
	for _, header := range headers {
		values[header.Key] = string(header.Value)
	}

	lookup := func(key string) (string, error) {
		value, ok := values[key]
		if !ok {
			return "", apperrors.Wrapf(ErrInvalidMetadata, "missing header %s", key)
		}
		return value, nil
	}

	var metadata EventMetadata

	raw, err := lookup(HeaderEventID)
	if err != nil {
		return EventMetadata{}, err
	}
	if metadata.EventID, err = uuid.Parse(raw); err != nil {
		return EventMetadata{}, apperrors.Wrapf(ErrInvalidMetadata, "header %s: %v", HeaderEventID, err)
	}

	if raw, err = lookup(HeaderEventVersion); err != nil {
		return EventMetadata{}, err
	}
	if metadata.EventVersion, err = strconv.Atoi(raw); err != nil {
		return EventMetadata{}, apperrors.Wrapf(ErrInvalidMetadata, "header %s: %v", HeaderEventVersion, err)
	}

	if raw, err = lookup(HeaderOccurredAt); err != nil {
		return EventMetadata{}, err
	}
	if metadata.OccurredAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
		return EventMetadata{}, apperrors.Wrapf(ErrInvalidMetadata, "header %s: %v", HeaderOccurredAt, err)
	}

	if metadata.EntityType, err = lookup(HeaderEntityType); err != nil {
		return EventMetadata{}, err
	}
	if metadata.EntityID, err = lookup(HeaderEntityID); err != nil {
		return EventMetadata{}, err
	}

	return metadata, nil
}
