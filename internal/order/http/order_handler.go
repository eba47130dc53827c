// Package http provides HTTP handlers for order intake.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/orderflow/internal/httputil"
	"github.com/allisson/orderflow/internal/order/http/dto"
	orderUseCase "github.com/allisson/orderflow/internal/order/usecase"
	customValidation "github.com/allisson/orderflow/internal/validation"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderUseCase orderUseCase.OrderUseCase
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler with required dependencies.
func NewOrderHandler(orderUseCase orderUseCase.OrderUseCase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
		logger:       logger,
	}
}

// PlaceOrderHandler accepts an order submission.
// POST /orders
// Returns 200 OK with the persisted order. The ORDER_PLACED event is written in the same
// transaction and published asynchronously by the outbox relay.
func (h *OrderHandler) PlaceOrderHandler(c *gin.Context) {
	var req dto.PlaceOrderRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	customerID, items, err := toDomainInput(req)
	if err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	order, err := h.orderUseCase.PlaceOrder(c.Request.Context(), customerID, items)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("order placed",
		slog.String("order_short_code", order.OrderShortCode),
		slog.String("customer_id", order.CustomerID.String()),
		slog.Int("items", len(order.Items)),
	)

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// GetOrderHandler retrieves an order by short code.
// GET /orders/:short_code
// Returns 200 OK with the order or 404 Not Found.
func (h *OrderHandler) GetOrderHandler(c *gin.Context) {
	order, err := h.orderUseCase.GetOrder(c.Request.Context(), c.Param("short_code"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}
