// Package repository provides data persistence implementations for order entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/orderflow/internal/database"
	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/order/domain"
)

// PostgreSQLOrderRepository handles order persistence for PostgreSQL.
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQLOrderRepository.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{
		db: db,
	}
}

// Create inserts an order and its items. Callers run it inside a transaction so the
// order and its items are written together.
func (r *PostgreSQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO orders (order_id, order_short_code, customer_id, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderShortCode,
		order.CustomerID,
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

	itemQuery := `INSERT INTO order_items (order_id, position, product_id, count) VALUES ($1, $2, $3, $4)`

	for position, item := range order.Items {
		if _, err := querier.ExecContext(ctx, itemQuery, order.ID, position, item.ProductID, item.Count); err != nil {
			return apperrors.Wrap(err, "failed to create order item")
		}
	}

	return nil
}

// GetByShortCode retrieves an order and its items by short code.
func (r *PostgreSQLOrderRepository) GetByShortCode(ctx context.Context, shortCode string) (*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT order_id, order_short_code, customer_id, status, created_at, updated_at
			  FROM orders WHERE order_short_code = $1`

	var order domain.Order
	err := querier.QueryRowContext(ctx, query, shortCode).Scan(
		&order.ID,
		&order.OrderShortCode,
		&order.CustomerID,
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

	itemQuery := `SELECT product_id, count FROM order_items WHERE order_id = $1 ORDER BY position ASC`

	rows, err := querier.QueryContext(ctx, itemQuery, order.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get order items")
	}
	defer rows.Close() //nolint:errcheck

	order.Items = make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order item")
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate order items")
	}

	return &order, nil
}
