package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(ctx context.Context, rps float64, burst int) *gin.Engine {
	router := gin.New()
	router.Use(RateLimitMiddleware(ctx, rps, burst, newTestLogger()))
	router.POST("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func postFrom(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("AllowsBurstThenRejects", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		router := newRateLimitedRouter(ctx, 1, 3)

		for range 3 {
			assert.Equal(t, http.StatusOK, postFrom(router, "198.51.100.1:1234").Code)
		}

		w := postFrom(router, "198.51.100.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	})

	t.Run("IndependentLimitsPerIP", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		router := newRateLimitedRouter(ctx, 1, 1)

		assert.Equal(t, http.StatusOK, postFrom(router, "198.51.100.1:1234").Code)
		assert.Equal(t, http.StatusTooManyRequests, postFrom(router, "198.51.100.1:1234").Code)
		assert.Equal(t, http.StatusOK, postFrom(router, "198.51.100.2:1234").Code)
	})

	t.Run("ForwardedForIsHonoured", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		router := newRateLimitedRouter(ctx, 1, 1)

		send := func(forwardedFor string) int {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/orders", nil)
			req.RemoteAddr = "127.0.0.1:1234"
			req.Header.Set("X-Forwarded-For", forwardedFor)
			router.ServeHTTP(w, req)
			return w.Code
		}

		assert.Equal(t, http.StatusOK, send("192.0.2.10"))
		assert.Equal(t, http.StatusOK, send("192.0.2.11"))
		assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.10"))
	})
}

func TestRateLimiterStore_EvictIdle(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	store.getLimiter("198.51.100.1")
	store.getLimiter("198.51.100.2")

	entry, _ := store.limiters.Load("198.51.100.1")
	entry.(*rateLimiterEntry).lastAccess = time.Now().Add(-2 * time.Hour)

	store.evictIdle(time.Now().Add(-time.Hour))

	_, stale := store.limiters.Load("198.51.100.1")
	_, fresh := store.limiters.Load("198.51.100.2")
	assert.False(t, stale)
	assert.True(t, fresh)
}
