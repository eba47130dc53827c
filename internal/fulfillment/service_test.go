package fulfillment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFulfillmentService_DelayRange(t *testing.T) {
	service := NewFulfillmentService(newTestLogger())

	for range 100 {
		delay := service.delay()
		assert.GreaterOrEqual(t, delay, time.Duration(0))
		assert.Less(t, delay, 10*time.Second)
		assert.Zero(t, delay%time.Second)
	}
}

func TestFulfillmentService_FulfillOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service := NewFulfillmentService(newTestLogger())
		service.delay = func() time.Duration { return time.Millisecond }

		require.NoError(t, service.FulfillOrder(context.Background(), newTestOrder("ABCDEFGH23")))
	})

	t.Run("Cancelled", func(t *testing.T) {
		service := NewFulfillmentService(newTestLogger())
		service.delay = func() time.Duration { return time.Hour }

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := service.FulfillOrder(ctx, newTestOrder("ABCDEFGH23"))

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}
