package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/orderflow/internal/database"
	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/order/domain"
)

// MySQLOrderRepository handles order persistence for MySQL.
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQLOrderRepository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{
		db: db,
	}
}

// Create inserts an order and its items. Callers run it inside a transaction so the
// order and its items are written together.
func (r *MySQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO orders (order_id, order_short_code, customer_id, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := order.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal order id")
	}
	customerBytes, err := order.CustomerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal customer id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		order.OrderShortCode,
		customerBytes,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrOrderAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create order")
	}

	itemQuery := `INSERT INTO order_items (order_id, position, product_id, count) VALUES (?, ?, ?, ?)`

	for position, item := range order.Items {
		productBytes, err := item.ProductID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal product id")
		}
		if _, err := querier.ExecContext(ctx, itemQuery, idBytes, position, productBytes, item.Count); err != nil {
			return apperrors.Wrap(err, "failed to create order item")
		}
	}

	return nil
}

// GetByShortCode retrieves an order and its items by short code.
func (r *MySQLOrderRepository) GetByShortCode(ctx context.Context, shortCode string) (*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT order_id, order_short_code, customer_id, status, created_at, updated_at
			  FROM orders WHERE order_short_code = ?`

	var order domain.Order
	var idBytes, customerBytes []byte
	err := querier.QueryRowContext(ctx, query, shortCode).Scan(
		&idBytes,
		&order.OrderShortCode,
		&customerBytes,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order by short code")
	}

	if err := order.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal order id")
	}
	if err := order.CustomerID.UnmarshalBinary(customerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal customer id")
	}

	itemQuery := `SELECT product_id, count FROM order_items WHERE order_id = ? ORDER BY position ASC`

	rows, err := querier.QueryContext(ctx, itemQuery, idBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get order items")
	}
	defer rows.Close() //nolint:errcheck

	order.Items = make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		var productBytes []byte
		if err := rows.Scan(&productBytes, &item.Count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order item")
		}
		if err := item.ProductID.UnmarshalBinary(productBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal product id")
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate order items")
	}

	return &order, nil
}
