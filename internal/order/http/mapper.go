package http

import (
	"github.com/google/uuid"

	"github.com/allisson/orderflow/internal/order/domain"
	"github.com/allisson/orderflow/internal/order/http/dto"
)

func toDomainInput(req dto.PlaceOrderRequest) (uuid.UUID, []domain.OrderItem, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return uuid.Nil, nil, err
	}

	items, err := dto.ToOrderItems(req.Items)
	if err != nil {
		return uuid.Nil, nil, err
	}

	return customerID, items, nil
}
