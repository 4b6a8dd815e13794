package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/abaevpavel/pdfer-base/config"
	"github.com/abaevpavel/pdfer-base/pkg/logger"
	"github.com/gin-gonic/gin"
)

// KeyFunc names the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

// CallerKey counts authenticated callers per tenant and everyone else per
// client IP.
func CallerKey(c *gin.Context) string {
	if tenant := GetTenant(c); tenant != "" && tenant != AnonymousTenant {
		return "tenant:" + tenant
	}
	return "ip:" + c.ClientIP()
}

// RateLimiter is a fixed-window counter kept separately for every key.
type RateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*rateWindow
	rate      int           // requests per window
	window    time.Duration // time window
	lastSweep time.Time
	now       func() time.Time
}

type rateWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*rateWindow),
		rate:    rate,
		window:  window,
		now:     time.Now,
	}
}

// Allow counts one request for key. Over the limit it returns false and the
// time left until the key's window ends.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &rateWindow{start: now}
		l.windows[key] = w
	}
	if w.count >= l.rate {
		return false, w.start.Add(l.window).Sub(now)
	}
	w.count++
	return true, 0
}

// sweep drops expired windows, at most once per window length.
// Must be called with lock held
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects requests once their key has used up the window's quota
func RateLimit(limiter *RateLimiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		ok, retryAfter := limiter.Allow(k)
		if !ok {
			logger.Warn(c.Request.Context(), "rate limit exceeded",
				"key", k,
				"limit", limiter.rate,
				"window", limiter.window.String(),
			)

			c.Header("Retry-After", strconv.Itoa(int((retryAfter+time.Second-1)/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

// RateLimitFromConfig allows each caller cfg.RateLimit requests every
// cfg.RateLimitWindow seconds. A negative limit turns limiting off.
func RateLimitFromConfig(cfg *config.ServerConfig) gin.HandlerFunc {
	if cfg.RateLimit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	window := time.Duration(cfg.RateLimitWindow) * time.Second
	return RateLimit(NewRateLimiter(cfg.RateLimit, window), CallerKey)
}
