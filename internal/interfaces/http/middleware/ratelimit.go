package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"github.com/sitestock/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Limiter decides whether one more request under key fits the current
// window. remaining is what is left after this request.
type Limiter interface {
	Allow(ctx context.Context, key string) (remaining int, ok bool, err error)
	Limit() int
}

// RateLimiter is a fixed-window limiter held in process memory
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
}

type window struct {
	used    int
	started time.Time
}

// NewRateLimiter creates an in-memory limiter of limit requests per window
func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  per,
		now:     time.Now,
	}
}

// Limit returns the requests allowed per window
func (rl *RateLimiter) Limit() int { return rl.limit }

// Allow implements Limiter
func (rl *RateLimiter) Allow(_ context.Context, key string) (int, bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.started) >= rl.window {
		w = &window{started: now}
		rl.clients[key] = w
	}
	if w.used >= rl.limit {
		return 0, false, nil
	}
	w.used++
	return rl.limit - w.used, true, nil
}

// Sweep drops windows that have expired
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, w := range rl.clients {
		if now.Sub(w.started) >= rl.window {
			delete(rl.clients, key)
		}
	}
}

// Run sweeps expired windows until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

// RedisRateLimiter is a fixed-window limiter shared by every replica
type RedisRateLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a limiter counting in Redis under prefix
func NewRedisRateLimiter(client redis.Cmdable, prefix string, limit int, per time.Duration) *RedisRateLimiter {
	if prefix == "" {
		prefix = "sitestock:ratelimit:"
	}
	return &RedisRateLimiter{client: client, prefix: prefix, limit: limit, window: per}
}

// Limit returns the requests allowed per window
func (rl *RedisRateLimiter) Limit() int { return rl.limit }

// Allow implements Limiter. The counter key carries the window number so
// expiry only reclaims memory.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (int, bool, error) {
	slot := time.Now().UnixNano() / int64(rl.window)
	k := rl.prefix + key + ":" + strconv.FormatInt(slot, 10)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, rl.window)
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	used := int(incr.Val())
	if used > rl.limit {
		return 0, false, nil
	}
	return rl.limit - used, true, nil
}

// RateLimitKey identifies the caller: the authenticated user when known,
// the client IP otherwise
func RateLimitKey(c *gin.Context) string {
	if userID := c.GetString(JWTUserIDKey); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

// RateLimit rejects callers that exhaust their window. Limiter failures
// let the request through.
func RateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := RateLimitKey(c)
		remaining, ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				c.GetString(logger.GinRequestIDKey),
			))
			return
		}
		c.Next()
	}
}
