// Package dto provides data transfer objects for the order HTTP layer.
package dto

import (
	"math"

	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/orderflow/internal/validation"
)

// OrderItemRequest is one line of an order submission.
type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

// Validate checks a single order line. Counts are stored and published as 32-bit
// integers.
func (r OrderItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID,
			validation.Required.Error("product_id is required"),
			appValidation.UUID,
		),
		validation.Field(&r.Count,
			validation.Required.Error("count must be greater than zero"),
			validation.Min(1).Error("count must be greater than zero"),
			validation.Max(math.MaxInt32).Error("count must not exceed 2147483647"),
		),
	)
}

// PlaceOrderRequest represents the API request for placing an order.
type PlaceOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []OrderItemRequest `json:"items"`
}

// Validate validates the PlaceOrderRequest. Each item is validated through its own
// Validate method.
func (r *PlaceOrderRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.CustomerID,
			validation.Required.Error("customer_id is required"),
			appValidation.UUID,
		),
		validation.Field(&r.Items,
			validation.Required.Error("items must contain at least one item"),
		),
	)
	return appValidation.WrapValidationError(err)
}
