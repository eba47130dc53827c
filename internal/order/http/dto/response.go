package dto

import (
	"time"
)

// OrderItemResponse is one line of an order in API responses.
type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	OrderShortCode string              `json:"order_short_code"`
	CustomerID     string              `json:"customer_id"`
	Status         string              `json:"status"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
}
