package dto

import (
	"github.com/google/uuid"

	"github.com/allisson/orderflow/internal/order/domain"
)

// ToOrderItems converts validated request items to domain items.
func ToOrderItems(items []OrderItemRequest) ([]domain.OrderItem, error) {
	result := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		result = append(result, domain.OrderItem{ProductID: productID, Count: item.Count})
	}
	return result, nil
}

// ToOrderResponse converts a domain Order to an OrderResponse DTO.
func ToOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID.String(),
			Count:     item.Count,
		})
	}

	return OrderResponse{
		OrderShortCode: order.OrderShortCode,
		CustomerID:     order.CustomerID.String(),
		Status:         string(order.Status),
		Items:          items,
		CreatedAt:      order.CreatedAt,
	}
}
