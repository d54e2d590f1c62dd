package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamba-onchain-backend/internal/domain"
)

type failingWindow struct{}

func (failingWindow) incr(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("redis down")
}

func limitedRouter(policy RateLimitPolicy, primary windowCounter, fallback windowCounter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if w := c.GetHeader("X-Wallet"); w != "" {
			c.Set(string(domain.KeyWalletAddress), w)
		}
		c.Next()
	})
	r.Use(rateLimit(policy, func() windowCounter { return primary }, fallback))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, wallet string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if wallet != "" {
		req.Header.Set("X-Wallet", wallet)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	t.Run("Should reject once the wallet exceeds its window", func(t *testing.T) {
		r := limitedRouter(WalletPolicy(2, time.Minute), nil, newMemoryWindow())

		assert.Equal(t, http.StatusOK, hit(r, "0xAbC").Code)
		w := hit(r, "0xabc")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		w = hit(r, "0xABC")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))

		// another wallet has its own window
		assert.Equal(t, http.StatusOK, hit(r, "0xdef").Code)
	})

	t.Run("Should reset after the window", func(t *testing.T) {
		mem := newMemoryWindow()
		now := time.Now()
		mem.now = func() time.Time { return now }
		r := limitedRouter(IPPolicy(1, time.Minute), nil, mem)

		assert.Equal(t, http.StatusOK, hit(r, "").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(r, "").Code)

		now = now.Add(2 * time.Minute)
		assert.Equal(t, http.StatusOK, hit(r, "").Code)
		require.Len(t, mem.windows, 1)
	})

	t.Run("Should fall back to memory when the backend fails open", func(t *testing.T) {
		r := limitedRouter(IPPolicy(1, time.Minute), failingWindow{}, newMemoryWindow())
		assert.Equal(t, http.StatusOK, hit(r, "").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(r, "").Code)
	})

	t.Run("Should reject when a fail-closed backend errors", func(t *testing.T) {
		r := limitedRouter(SignInPolicy(), failingWindow{}, newMemoryWindow())
		assert.Equal(t, http.StatusServiceUnavailable, hit(r, "").Code)
	})
}
