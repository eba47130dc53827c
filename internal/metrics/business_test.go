package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine checks that the Prometheus output contains a business metric
// matching the given name, partial label pattern, and value. Uses regex to handle
// extra OTel scope labels injected by the Prometheus exporter.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	t.Run("Success_CreateBusinessMetrics", func(t *testing.T) {
		provider, err := NewProvider("test_app")
		require.NoError(t, err)

		businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

		require.NoError(t, err)
		assert.NotNil(t, businessMetrics)
	})
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	t.Run("Success_RecordSuccessfulOperation", func(t *testing.T) {
		// Should not panic
		bm.RecordOperation(context.Background(), "orders", "order_place", "success")
	})

	t.Run("Success_RecordFailedOperation", func(t *testing.T) {
		// Should not panic
		bm.RecordOperation(context.Background(), "orders", "order_place", "error")
	})

	t.Run("Success_RecordMultipleDomains", func(t *testing.T) {
		bm.RecordOperation(context.Background(), "orders", "order_place", "success")
		bm.RecordOperation(context.Background(), "outbox", "event_publish", "success")
		bm.RecordOperation(context.Background(), "fulfillment", "order_fulfill", "error")
	})
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	t.Run("Success_RecordSuccessfulDuration", func(t *testing.T) {
		// Should not panic
		bm.RecordDuration(context.Background(), "orders", "order_place", 123*time.Millisecond, "success")
	})

	t.Run("Success_RecordFailedDuration", func(t *testing.T) {
		// Should not panic
		bm.RecordDuration(context.Background(), "orders", "order_place", 456*time.Millisecond, "error")
	})

	t.Run("Success_RecordMultipleDomains", func(t *testing.T) {
		bm.RecordDuration(context.Background(), "orders", "order_place", 100*time.Millisecond, "success")
		bm.RecordDuration(context.Background(), "outbox", "event_publish", 200*time.Millisecond, "success")
		bm.RecordDuration(context.Background(), "fulfillment", "order_fulfill", 300*time.Millisecond, "error")
	})
}

func TestBusinessMetrics_RecordBatchSize(t *testing.T) {
	provider, err := NewProvider("batch_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "batch_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordBatchSize(ctx, "outbox", "relay_claim", 3)
	bm.RecordBatchSize(ctx, "outbox", "relay_claim", 7)

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	output := w.Body.String()

	assertBizMetricLine(t, output, `batch_test_batch_size_count`, `domain="outbox".*operation="relay_claim"`, `2`)
	assertBizMetricLine(t, output, `batch_test_batch_size_sum`, `domain="outbox".*operation="relay_claim"`, `10`)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.NotNil(t, noOpMetrics)
	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)

	t.Run("NoOp_RecordOperationDoesNotPanic", func(t *testing.T) {
		// Should not panic or do anything
		noOpMetrics.RecordOperation(context.Background(), "orders", "order_place", "success")
		noOpMetrics.RecordOperation(context.Background(), "outbox", "event_publish", "error")
	})

	t.Run("NoOp_RecordBatchSizeDoesNotPanic", func(t *testing.T) {
		noOpMetrics.RecordBatchSize(context.Background(), "outbox", "relay_claim", 10)
	})

	t.Run("NoOp_RecordDurationDoesNotPanic", func(t *testing.T) {
		// Should not panic or do anything
		noOpMetrics.RecordDuration(
			context.Background(),
			"fulfillment",
			"order_fulfill",
			100*time.Millisecond,
			"success",
		)
		noOpMetrics.RecordDuration(context.Background(), "outbox", "event_publish", 200*time.Millisecond, "error")
	})
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("integration_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "integration_test")
	require.NoError(t, err)

	// Record various operations
	ctx := context.Background()

	// Record operation counts
	bm.RecordOperation(ctx, "orders", "order_place", "success")
	bm.RecordOperation(ctx, "orders", "order_place", "success")
	bm.RecordOperation(ctx, "orders", "order_place", "error")
	bm.RecordOperation(ctx, "outbox", "event_publish", "success")
	bm.RecordOperation(ctx, "outbox", "relay_tick", "success")
	bm.RecordOperation(ctx, "fulfillment", "order_fulfill", "success")

	// Record operation durations
	bm.RecordDuration(ctx, "orders", "order_place", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "orders", "order_place", 60*time.Millisecond, "success")
	bm.RecordDuration(ctx, "orders", "order_place", 100*time.Millisecond, "error")
	bm.RecordDuration(ctx, "outbox", "event_publish", 10*time.Millisecond, "success")
	bm.RecordDuration(ctx, "outbox", "relay_tick", 20*time.Millisecond, "success")
	bm.RecordDuration(ctx, "fulfillment", "order_fulfill", 150*time.Millisecond, "success")

	// Metrics should be recorded without errors
	// Verify metrics in Prometheus registry
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)

	output := w.Body.String()

	// Check operation counts
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="orders".*operation="order_place".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="orders".*operation="order_place".*status="error"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="outbox".*operation="event_publish".*status="success"`,
		`1`,
	)

	// Check durations (existence)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_count`,
		`domain="orders".*operation="order_place".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_sum`,
		`domain="orders".*operation="order_place".*status="success"`,
		``,
	)
}
