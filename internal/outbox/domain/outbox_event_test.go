package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewOutboxEvent(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	occurredAt := time.Date(2025, 1, 2, 0, 4, 5, 0, loc)

	event := NewOutboxEvent(EntityTypeOrder, "ABCDEFGH23", EventTypeOrderPlaced, OrderPlacedVersion, `{}`, occurredAt)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EntityTypeOrder, event.EntityType)
	assert.Equal(t, "ABCDEFGH23", event.EntityID)
	assert.Equal(t, EventTypeOrderPlaced, event.EventType)
	assert.Equal(t, 1, event.EventVersion)
	assert.Equal(t, OutboxEventStatusPending, event.Status)
	assert.Equal(t, 0, event.RetryCount)
	assert.Nil(t, event.PublishedAt)
	assert.Nil(t, event.LastError)
	assert.Nil(t, event.ClaimedAt)
	assert.Equal(t, time.UTC, event.OccurredAt.Location())
	assert.True(t, occurredAt.Equal(event.OccurredAt))
}
