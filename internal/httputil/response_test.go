package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/orderflow/internal/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "not found",
			err:          apperrors.Wrap(apperrors.ErrNotFound, "order not found"),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"not_found","message":"The requested resource was not found"}`,
		},
		{
			name:         "conflict",
			err:          apperrors.Wrap(apperrors.ErrConflict, "order already exists"),
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"conflict","message":"A conflict occurred with existing data"}`,
		},
		{
			name:         "invalid input",
			err:          apperrors.Wrap(apperrors.ErrInvalidInput, "items: cannot be blank."),
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"invalid_input","message":"items: cannot be blank.: invalid input"}`,
		},
		{
			name:         "unavailable",
			err:          apperrors.Wrap(apperrors.ErrUnavailable, "database"),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"error":"unavailable","message":"A required dependency is unavailable"}`,
		},
		{
			name:         "internal",
			err:          errors.New("connection reset"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"internal_error","message":"An internal error occurred"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestHandleErrorGin_NilError(t *testing.T) {
	c, w := newTestContext()

	HandleErrorGin(c, nil, nil)

	assert.Empty(t, w.Body.String())
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"unexpected EOF"}`, w.Body.String())
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newTestContext()

	HandleValidationErrorGin(c, errors.New("customer_id: must be a valid UUID."), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validation_error","message":"customer_id: must be a valid UUID."}`, w.Body.String())
}

func TestHandleTooManyRequestsGin(t *testing.T) {
	c, w := newTestContext()

	HandleTooManyRequestsGin(c, 2)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"error":"rate_limit_exceeded"`)
	assert.True(t, c.IsAborted())
}

func TestErrorResponse_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string { return "req-123" })))
	router.GET("/orders/:short_code", func(c *gin.Context) {
		HandleErrorGin(c, apperrors.ErrNotFound, nil)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/ZZZZZZZZZZ", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(
		t,
		`{"error":"not_found","message":"The requested resource was not found","request_id":"req-123"}`,
		w.Body.String(),
	)
}
