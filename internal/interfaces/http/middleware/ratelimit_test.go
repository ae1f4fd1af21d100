package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitestock/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("exhausts then blocks", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			remaining, ok, err := limiter.Allow(ctx, "a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 2-i, remaining)
		}
		_, ok, _ := limiter.Allow(ctx, "a")
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		_, ok, _ := limiter.Allow(ctx, "a")
		assert.True(t, ok)
		_, ok, _ = limiter.Allow(ctx, "b")
		assert.True(t, ok)
		_, ok, _ = limiter.Allow(ctx, "a")
		assert.False(t, ok)
	})

	t.Run("window resets", func(t *testing.T) {
		now := time.Now()
		limiter := NewRateLimiter(1, time.Minute)
		limiter.now = func() time.Time { return now }
		_, ok, _ := limiter.Allow(ctx, "a")
		assert.True(t, ok)
		_, ok, _ = limiter.Allow(ctx, "a")
		assert.False(t, ok)

		now = now.Add(time.Minute)
		_, ok, _ = limiter.Allow(ctx, "a")
		assert.True(t, ok)
	})

	t.Run("sweep drops expired windows", func(t *testing.T) {
		now := time.Now()
		limiter := NewRateLimiter(1, time.Minute)
		limiter.now = func() time.Time { return now }
		_, _, _ = limiter.Allow(ctx, "a")
		now = now.Add(2 * time.Minute)
		limiter.Sweep()
		assert.Empty(t, limiter.clients)
	})

	t.Run("concurrent callers never exceed limit", func(t *testing.T) {
		limiter := NewRateLimiter(50, time.Minute)
		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := limiter.Allow(ctx, "shared"); ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, allowed)
	})
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (int, bool, error) {
	return 0, false, errors.New("redis down")
}
func (failingLimiter) Limit() int { return 1 }

func TestRateLimit(t *testing.T) {
	newRouter := func(limiter Limiter) *gin.Engine {
		router := gin.New()
		router.Use(RateLimit(limiter, nil))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("sets headers and blocks", func(t *testing.T) {
		router := newRouter(NewRateLimiter(1, time.Minute))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, dto.ErrCodeRateLimited, decode(t, w).Error.Code)
	})

	t.Run("fails open", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(failingLimiter{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimitKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "ip:10.0.0.1", RateLimitKey(c))

	c.Set(JWTUserIDKey, "u-1")
	assert.Equal(t, "user:u-1", RateLimitKey(c))
}
