package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orderflow/internal/database"
	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/outbox/domain"
)

// MySQLOutboxEventRepository handles outbox event persistence for MySQL.
type MySQLOutboxEventRepository struct {
	db        *sql.DB
	txManager database.TxManager
}

// NewMySQLOutboxEventRepository creates a new MySQLOutboxEventRepository.
func NewMySQLOutboxEventRepository(db *sql.DB) *MySQLOutboxEventRepository {
	return &MySQLOutboxEventRepository{
		db:        db,
		txManager: database.NewTxManager(db),
	}
}

// Create inserts a new outbox event. It must run inside the transaction that writes
// the originating entity.
func (r *MySQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	querier, err := database.RequireTx(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}

	query := `INSERT INTO outbox_events (id, entity_type, entity_id, event_type, event_version, payload,
			  occurred_at, status, published_at, retry_count, last_error, claimed_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// Convert UUID to bytes for MySQL BINARY(16)
	idBytes, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox event id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		event.EntityType,
		event.EntityID,
		event.EventType,
		event.EventVersion,
		event.Payload,
		event.OccurredAt,
		event.Status,
		event.PublishedAt,
		event.RetryCount,
		nullString(event.LastError),
		event.ClaimedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

// ClaimBatch locks up to batchSize claimable events of eventType, skipping rows held by
// other relays, and moves them to PROCESSING in the same transaction.
func (r *MySQLOutboxEventRepository) ClaimBatch(
	ctx context.Context,
	eventType domain.EventType,
	batchSize int,
	retryLimit int,
) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, r.db)

		query := `SELECT ` + eventColumns + `
			  FROM outbox_events
			  WHERE event_type = ?
			    AND (status = 'PENDING' OR (status = 'FAILED' AND retry_count < ?))
			  ORDER BY occurred_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

		rows, err := querier.QueryContext(ctx, query, eventType, retryLimit, batchSize)
		if err != nil {
			return err
		}
		defer rows.Close() //nolint:errcheck

		for rows.Next() {
			var event domain.OutboxEvent
			var idBytes []byte
			var lastError sql.NullString

			err := rows.Scan(
				&idBytes,
				&event.EntityType,
				&event.EntityID,
				&event.EventType,
				&event.EventVersion,
				&event.Payload,
				&event.OccurredAt,
				&event.Status,
				&event.PublishedAt,
				&event.RetryCount,
				&lastError,
				&event.ClaimedAt,
			)
			if err != nil {
				return err
			}

			// Convert bytes back to UUID
			if err := event.ID.UnmarshalBinary(idBytes); err != nil {
				return err
			}
			if lastError.Valid {
				event.LastError = &lastError.String
			}

			events = append(events, &event)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		placeholders, args, err := inClause(eventIDs(events))
		if err != nil {
			return err
		}

		update := `UPDATE outbox_events
			  SET retry_count = CASE WHEN status = 'FAILED' THEN retry_count + 1 ELSE retry_count END,
			      status = 'PROCESSING',
			      claimed_at = ?
			  WHERE id IN (` + placeholders + `)`

		claimedAt := time.Now().UTC()
		if _, err := querier.ExecContext(ctx, update, append([]any{claimedAt}, args...)...); err != nil {
			return err
		}

		for _, event := range events {
			claimedState(event, claimedAt)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim outbox events")
	}

	return events, nil
}

// MarkPublished records a broker acknowledgement for each event in ids.
func (r *MySQLOutboxEventRepository) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders, args, err := inClause(ids)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark outbox events as published")
	}

	query := `UPDATE outbox_events
			  SET status = 'PUBLISHED', published_at = UTC_TIMESTAMP(6), last_error = NULL
			  WHERE id IN (` + placeholders + `) AND status = 'PROCESSING'`

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, r.db)
		_, err := querier.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to mark outbox events as published")
	}
	return nil
}

// MarkFailed moves each event to FAILED with its error message. The retry count is
// only advanced when the event is claimed again.
func (r *MySQLOutboxEventRepository) MarkFailed(ctx context.Context, failures map[uuid.UUID]string) error {
	if len(failures) == 0 {
		return nil
	}

	query := `UPDATE outbox_events
			  SET status = 'FAILED', last_error = ?
			  WHERE id = ? AND status = 'PROCESSING'`

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, r.db)
		for id, message := range failures {
			idBytes, err := id.MarshalBinary()
			if err != nil {
				return err
			}
			if _, err := querier.ExecContext(ctx, query, message, idBytes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to mark outbox events as failed")
	}
	return nil
}

// RequeueStuck moves events claimed before olderThan back to FAILED so a relay can
// claim them again. It returns the number of events moved.
func (r *MySQLOutboxEventRepository) RequeueStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_events
			  SET status = 'FAILED', last_error = ?
			  WHERE status = 'PROCESSING' AND claimed_at < ?`

	result, err := querier.ExecContext(ctx, query, domain.LeaseExpiredError, olderThan.UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to requeue stuck outbox events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}

// CountStuck returns how many events RequeueStuck would move.
func (r *MySQLOutboxEventRepository) CountStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM outbox_events WHERE status = 'PROCESSING' AND claimed_at < ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, olderThan.UTC()).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count stuck outbox events")
	}
	return count, nil
}

// inClause expands ids into "?, ?, ..." with their BINARY(16) arguments.
func inClause(ids []uuid.UUID) (string, []any, error) {
	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		idBytes, err := id.MarshalBinary()
		if err != nil {
			return "", nil, err
		}
		placeholders = append(placeholders, "?")
		args = append(args, idBytes)
	}
	return strings.Join(placeholders, ", "), args, nil
}
