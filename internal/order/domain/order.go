// Package domain defines the core order domain entities and types.
package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle stage of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
)

// ShortCodeLength is the number of characters in an order short code.
const ShortCodeLength = 10

// shortCodeAlphabet omits characters that are easy to misread (0, 1, I, O).
// Its length is a power of two so masking a random byte keeps the distribution uniform.
const shortCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// Order is a customer order. The JSON form is the outbox payload of ORDER_PLACED.
type Order struct {
	ID             uuid.UUID   `json:"order_id"`
	OrderShortCode string      `json:"order_short_code"`
	CustomerID     uuid.UUID   `json:"customer_id"`
	Items          []OrderItem `json:"items"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Count     int       `json:"count"`
}

// NewOrder builds a PENDING order with a fresh identifier and short code.
func NewOrder(customerID uuid.UUID, items []OrderItem, now time.Time) (*Order, error) {
	shortCode, err := NewShortCode()
	if err != nil {
		return nil, err
	}

	return &Order{
		ID:             uuid.Must(uuid.NewV7()),
		OrderShortCode: shortCode,
		CustomerID:     customerID,
		Items:          items,
		Status:         OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NewShortCode returns a random, human-friendly order identifier.
func NewShortCode() (string, error) {
	buf := make([]byte, ShortCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate short code: %w", err)
	}

	mask := byte(len(shortCodeAlphabet) - 1)
	for i := range buf {
		buf[i] = shortCodeAlphabet[buf[i]&mask]
	}

	return string(buf), nil
}

// IsValidShortCode reports whether code has the shape produced by NewShortCode.
func IsValidShortCode(code string) bool {
	if len(code) != ShortCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !containsByte(shortCodeAlphabet, code[i]) {
			return false
		}
	}
	return true
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// ItemCount returns the total number of units across all items.
func (o *Order) ItemCount() int {
	total := 0
	for _, item := range o.Items {
		total += item.Count
	}
	return total
}
