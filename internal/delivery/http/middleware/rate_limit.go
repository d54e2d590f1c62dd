package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"chamba-onchain-backend/internal/delivery/http/response"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/pkg/logger"
	"chamba-onchain-backend/pkg/redis"
	"chamba-onchain-backend/pkg/security"
)

// RateLimitPolicy is a fixed-window limit on requests sharing a key.
type RateLimitPolicy struct {
	Name   string // also the counter key prefix
	Limit  int
	Window time.Duration
	// FailClosed rejects requests when Redis errors instead of counting in memory
	FailClosed bool
	Key        func(*gin.Context) string
}

// IPPolicy limits every route per client IP.
func IPPolicy(limit int, window time.Duration) RateLimitPolicy {
	return RateLimitPolicy{Name: "ip", Limit: limit, Window: window, Key: (*gin.Context).ClientIP}.withDefaults()
}

// SignInPolicy guards the nonce and verify endpoints.
func SignInPolicy() RateLimitPolicy {
	return RateLimitPolicy{Name: "signin", Limit: 10, Window: time.Minute, FailClosed: true, Key: (*gin.Context).ClientIP}
}

// WalletPolicy keys on the authenticated wallet so one address cannot
// spread load across IPs. It must run after AuthMiddleware.
func WalletPolicy(limit int, window time.Duration) RateLimitPolicy {
	return RateLimitPolicy{Name: "wallet", Limit: limit, Window: window, Key: func(c *gin.Context) string {
		if addr := c.GetString(string(domain.KeyWalletAddress)); addr != "" {
			return strings.ToLower(addr)
		}
		return c.ClientIP()
	}}.withDefaults()
}

func (p RateLimitPolicy) withDefaults() RateLimitPolicy {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	return p
}

// windowCounter increments key within window and reports the count and
// when the window resets.
type windowCounter interface {
	incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

type redisWindow struct {
	client *goredis.Client
}

func (w redisWindow) incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	var incr *goredis.IntCmd
	var ttl *goredis.DurationCmd
	_, err := w.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit counter: %w", err)
	}
	left := ttl.Val()
	if left <= 0 {
		left = window
	}
	return int(incr.Val()), time.Now().Add(left), nil
}

// memoryWindow is the per-process fallback. Expired windows are swept on
// writes instead of by a background goroutine.
type memoryWindow struct {
	mu        sync.Mutex
	windows   map[string]*fixedWindow
	lastSweep time.Time
	now       func() time.Time
}

type fixedWindow struct {
	count   int
	resetAt time.Time
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{windows: make(map[string]*fixedWindow), now: time.Now}
}

func (m *memoryWindow) incr(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > time.Minute {
		for k, w := range m.windows {
			if now.After(w.resetAt) {
				delete(m.windows, k)
			}
		}
		m.lastSweep = now
	}

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &fixedWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

var fallbackWindow = newMemoryWindow()

// RateLimit enforces policy with Redis when it is up and the in-memory
// window otherwise.
func RateLimit(policy RateLimitPolicy) gin.HandlerFunc {
	return rateLimit(policy, func() windowCounter {
		if c := redis.Client(); c != nil {
			return redisWindow{client: c}
		}
		return nil
	}, fallbackWindow)
}

func rateLimit(policy RateLimitPolicy, primary func() windowCounter, fallback windowCounter) gin.HandlerFunc {
	limit := strconv.Itoa(policy.Limit)

	return func(c *gin.Context) {
		key := "rl:" + policy.Name + ":" + policy.Key(c)

		counter := fallback
		if p := primary(); p != nil {
			counter = p
		}
		count, resetAt, err := counter.incr(c.Request.Context(), key, policy.Window)
		if err != nil {
			logger.Log.Error("rate limit backend failed", "policy", policy.Name, "path", c.FullPath(), "error", err)
			if policy.FailClosed {
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			count, resetAt, _ = fallback.incr(c.Request.Context(), key, policy.Window)
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(policy.Limit-count, 0)))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > policy.Limit {
			c.Header("Retry-After", strconv.Itoa(max(int(time.Until(resetAt).Seconds()), 1)))

			requestID := c.GetString(string(domain.KeyRequestID))
			logger.Log.Warn("rate limit exceeded", "policy", policy.Name, "key", key, "path", c.FullPath(), "request_id", requestID)
			security.DefaultLogger().LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.Request.UserAgent(), requestID, c.FullPath())

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
