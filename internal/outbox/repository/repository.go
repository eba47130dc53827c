// Package repository provides data persistence implementations for outbox entities.
package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orderflow/internal/outbox/domain"
)

const eventColumns = `id, entity_type, entity_id, event_type, event_version, payload, occurred_at,
			  status, published_at, retry_count, last_error, claimed_at`

// claimedState applies the PROCESSING transition to an event read under lock, so the
// caller sees the same state the claim UPDATE wrote.
func claimedState(event *domain.OutboxEvent, claimedAt time.Time) {
	if event.Status == domain.OutboxEventStatusFailed {
		event.RetryCount++
	}
	event.Status = domain.OutboxEventStatusProcessing
	event.ClaimedAt = &claimedAt
}

func eventIDs(events []*domain.OutboxEvent) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}
	return ids
}

func uuidStrings(ids []uuid.UUID) []string {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return values
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
