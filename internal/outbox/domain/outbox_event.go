// Package domain defines the core outbox domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the delivery state of an outbox event.
type OutboxEventStatus string

const (
	OutboxEventStatusPending    OutboxEventStatus = "PENDING"
	OutboxEventStatusProcessing OutboxEventStatus = "PROCESSING"
	OutboxEventStatusPublished  OutboxEventStatus = "PUBLISHED"
	OutboxEventStatusFailed     OutboxEventStatus = "FAILED"
)

// EntityType names the aggregate an event belongs to.
type EntityType string

const (
	EntityTypeOrder EntityType = "ORDER"
)

// EventType names the kind of domain event stored in the outbox.
type EventType string

const (
	EventTypeOrderPlaced EventType = "ORDER_PLACED"
)

// OrderPlacedVersion is the payload version written for ORDER_PLACED events.
const OrderPlacedVersion = 1

// LeaseExpiredError is the last_error recorded when a stuck PROCESSING row is re-queued.
const LeaseExpiredError = "processing lease expired"

// OutboxEvent represents an event in the transactional outbox pattern.
type OutboxEvent struct {
	ID           uuid.UUID
	EntityType   EntityType
	EntityID     string
	EventType    EventType
	EventVersion int
	// Payload is the JSON document the relay translates into the wire event.
	Payload     string
	OccurredAt  time.Time
	Status      OutboxEventStatus
	PublishedAt *time.Time
	RetryCount  int
	LastError   *string
	// ClaimedAt is set when a relay moves the event to PROCESSING.
	ClaimedAt *time.Time
}

// NewOutboxEvent builds a PENDING event with a fresh identifier.
func NewOutboxEvent(
	entityType EntityType,
	entityID string,
	eventType EventType,
	eventVersion int,
	payload string,
	occurredAt time.Time,
) *OutboxEvent {
	return &OutboxEvent{
		ID:           uuid.Must(uuid.NewV7()),
		EntityType:   entityType,
		EntityID:     entityID,
		EventType:    eventType,
		EventVersion: eventVersion,
		Payload:      payload,
		OccurredAt:   occurredAt.UTC(),
		Status:       OutboxEventStatusPending,
	}
}
