// Package messaging carries OrderPlaced events over Kafka: the Avro wire record, the
// registry-bound serializer, header metadata and the producer.
package messaging

import (
	apperrors "github.com/allisson/orderflow/internal/errors"
)

var (
	// ErrSerialization wraps schema lookup and Avro encoding or decoding failures.
	ErrSerialization = apperrors.New("serialization failed")

	// ErrPublish wraps broker write failures.
	ErrPublish = apperrors.New("publish failed")

	// ErrInvalidMetadata indicates missing or malformed event headers.
	ErrInvalidMetadata = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid event metadata")
)
