package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/order/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func newTestOrder() *domain.Order {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Order{
		ID:             uuid.MustParse("0190a6e4-0000-7000-8000-000000000001"),
		OrderShortCode: "ABCDEFGH23",
		CustomerID:     uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Items: []domain.OrderItem{
			{ProductID: uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"), Count: 2},
			{ProductID: uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"), Count: 1},
		},
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgreSQLOrderRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)
		order := newTestOrder()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
			WithArgs(order.ID.String(), "ABCDEFGH23", order.CustomerID.String(), "PENDING",
				order.CreatedAt, order.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
			WithArgs(order.ID.String(), int64(0), order.Items[0].ProductID.String(), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
			WithArgs(order.ID.String(), int64(1), order.Items[1].ProductID.String(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), order))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateShortCode", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), newTestOrder())

		assert.ErrorIs(t, err, domain.ErrOrderAlreadyExists)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_ItemInsertFails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).WillReturnError(assert.AnError)

		err := repo.Create(context.Background(), newTestOrder())

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLOrderRepository_GetByShortCode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)
		expected := newTestOrder()

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE order_short_code = $1")).
			WithArgs("ABCDEFGH23").
			WillReturnRows(sqlmock.NewRows([]string{
				"order_id", "order_short_code", "customer_id", "status", "created_at", "updated_at",
			}).AddRow(expected.ID.String(), "ABCDEFGH23", expected.CustomerID.String(), "PENDING",
				expected.CreatedAt, expected.UpdatedAt))
		mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = $1 ORDER BY position ASC")).
			WithArgs(expected.ID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "count"}).
				AddRow(expected.Items[0].ProductID.String(), 2).
				AddRow(expected.Items[1].ProductID.String(), 1))

		order, err := repo.GetByShortCode(context.Background(), "ABCDEFGH23")

		require.NoError(t, err)
		assert.Equal(t, expected, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).WillReturnError(sql.ErrNoRows)

		order, err := repo.GetByShortCode(context.Background(), "ZZZZZZZZZZ")

		assert.Nil(t, order)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestMySQLOrderRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLOrderRepository(db)
		order := newTestOrder()
		order.Items = order.Items[:1]

		idBytes, _ := order.ID.MarshalBinary()
		customerBytes, _ := order.CustomerID.MarshalBinary()
		productBytes, _ := order.Items[0].ProductID.MarshalBinary()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
			WithArgs(idBytes, "ABCDEFGH23", customerBytes, "PENDING", order.CreatedAt, order.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
			WithArgs(idBytes, int64(0), productBytes, int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), order))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateShortCode", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLOrderRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		err := repo.Create(context.Background(), newTestOrder())

		assert.ErrorIs(t, err, domain.ErrOrderAlreadyExists)
	})
}

func TestMySQLOrderRepository_GetByShortCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLOrderRepository(db)
	expected := newTestOrder()
	expected.Items = expected.Items[:1]

	idBytes, _ := expected.ID.MarshalBinary()
	customerBytes, _ := expected.CustomerID.MarshalBinary()
	productBytes, _ := expected.Items[0].ProductID.MarshalBinary()

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE order_short_code = ?")).
		WithArgs("ABCDEFGH23").
		WillReturnRows(sqlmock.NewRows([]string{
			"order_id", "order_short_code", "customer_id", "status", "created_at", "updated_at",
		}).AddRow(idBytes, "ABCDEFGH23", customerBytes, "PENDING", expected.CreatedAt, expected.UpdatedAt))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = ?")).
		WithArgs(idBytes).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "count"}).AddRow(productBytes, 2))

	order, err := repo.GetByShortCode(context.Background(), "ABCDEFGH23")

	require.NoError(t, err)
	assert.Equal(t, expected, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}
