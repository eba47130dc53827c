package messaging

import (
	"github.com/google/uuid"

	apperrors "github.com/allisson/orderflow/internal/errors"
	orderDomain "github.com/allisson/orderflow/internal/order/domain"
)

// OrderPlacedSchema is the Avro schema of the OrderPlaced wire record. The copy under
// provisioning/schemas is what gets registered.
const OrderPlacedSchema = `{
  "type": "record",
  "name": "OrderPlaced",
  "namespace": "orderflow.events",
  "fields": [
    {"name": "order_short_code", "type": "string"},
    {"name": "customer_id", "type": "string"},
    {
      "name": "items",
      "type": {
        "type": "array",
        "items": {
          "type": "record",
          "name": "OrderItem",
          "fields": [
            {"name": "product_id", "type": "string"},
            {"name": "count", "type": "int"}
          ]
        }
      }
    }
  ]
}`

// OrderPlaced is the wire record published for every placed order.
type OrderPlaced struct {
	OrderShortCode string            `avro:"order_short_code"`
	CustomerID     string            `avro:"customer_id"`
	Items          []OrderPlacedItem `avro:"items"`
}

// OrderPlacedItem is a line of an OrderPlaced record.
type OrderPlacedItem struct {
	ProductID string `avro:"product_id"`
	Count     int    `avro:"count"`
}

// NewOrderPlaced translates an order into its wire record, keeping item order.
func NewOrderPlaced(order *orderDomain.Order) *OrderPlaced {
	items := make([]OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderPlacedItem{
			ProductID: item.ProductID.String(),
			Count:     item.Count,
		})
	}

	return &OrderPlaced{
		OrderShortCode: order.OrderShortCode,
		CustomerID:     order.CustomerID.String(),
		Items:          items,
	}
}

// ToOrder parses the record back into an order. Malformed UUIDs yield ErrInvalidInput.
func (e *OrderPlaced) ToOrder() (*orderDomain.Order, error) {
	customerID, err := uuid.Parse(e.CustomerID)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid customer_id %q", e.CustomerID)
	}

	items := make([]orderDomain.OrderItem, 0, len(e.Items))
	for _, item := range e.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid product_id %q", item.ProductID)
		}
		items = append(items, orderDomain.OrderItem{ProductID: productID, Count: item.Count})
	}

	return &orderDomain.Order{
		OrderShortCode: e.OrderShortCode,
		CustomerID:     customerID,
		Items:          items,
		Status:         orderDomain.OrderStatusPending,
	}, nil
}
