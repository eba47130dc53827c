package messaging

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	outboxDomain "github.com/allisson/orderflow/internal/outbox/domain"
)

func TestEventMetadata_Headers(t *testing.T) {
	eventID := uuid.MustParse("0190a4c2-7b3e-7c41-9a55-4a7e8f0c1d2e")
	occurredAt := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)

	headers := EventMetadata{
		EventID:      eventID,
		EventVersion: 1,
		OccurredAt:   occurredAt,
		EntityType:   "ORDER",
		EntityID:     "ABCDEFGH23",
	}.Headers()

	assert.Equal(t, []kafka.Header{
		{Key: "event-id", Value: []byte("0190a4c2-7b3e-7c41-9a55-4a7e8f0c1d2e")},
		{Key: "event-version", Value: []byte("1")},
		{Key: "occurred-at", Value: []byte("2026-03-14T09:26:53.589793Z")},
		{Key: "entity-type", Value: []byte("ORDER")},
		{Key: "entity-id", Value: []byte("ABCDEFGH23")},
	}, headers)
}

func TestMetadataFromHeaders(t *testing.T) {
	event := outboxDomain.NewOutboxEvent(
		outboxDomain.EntityTypeOrder,
		"ABCDEFGH23",
		outboxDomain.EventTypeOrderPlaced,
		outboxDomain.OrderPlacedVersion,
		"{}",
		time.Now().Truncate(time.Microsecond),
	)
	metadata := MetadataFromOutboxEvent(event)

	t.Run("Success", func(t *testing.T) {
		decoded, err := MetadataFromHeaders(metadata.Headers())

		require.NoError(t, err)
		assert.Equal(t, metadata.EventID, decoded.EventID)
		assert.Equal(t, 1, decoded.EventVersion)
		assert.True(t, metadata.OccurredAt.Equal(decoded.OccurredAt))
		assert.Equal(t, "ORDER", decoded.EntityType)
		assert.Equal(t, "ABCDEFGH23", decoded.EntityID)
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		headers := metadata.Headers()[:4]

		_, err := MetadataFromHeaders(headers)
		assert.ErrorIs(t, err, ErrInvalidMetadata)
		assert.Contains(t, err.Error(), "entity-id")
	})

	t.Run("Error_MalformedVersion", func(t *testing.T) {
		headers := metadata.Headers()
		headers[1].Value = []byte("v1")

		_, err := MetadataFromHeaders(headers)
		assert.ErrorIs(t, err, ErrInvalidMetadata)
	})

	t.Run("Error_MalformedOccurredAt", func(t *testing.T) {
		headers := metadata.Headers()
		headers[2].Value = []byte("yesterday")

		_, err := MetadataFromHeaders(headers)
		assert.ErrorIs(t, err, ErrInvalidMetadata)
	})
}
