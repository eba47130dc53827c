package domain

import (
	"github.com/allisson/orderflow/internal/errors"
)

// Order-specific error definitions.
var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.Wrap(errors.ErrNotFound, "order not found")

	// ErrOrderAlreadyExists indicates an order with the same short code already exists.
	ErrOrderAlreadyExists = errors.Wrap(errors.ErrConflict, "order already exists")

	// ErrEmptyOrder indicates an order was submitted without items.
	ErrEmptyOrder = errors.Wrap(errors.ErrInvalidInput, "order must contain at least one item")

	// ErrInvalidItemCount indicates an item count that is not positive.
	ErrInvalidItemCount = errors.Wrap(errors.ErrInvalidInput, "item count must be greater than zero")
)
