package logic

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP with a token bucket per IP.
// Buckets idle longer than the TTL are dropped by a background sweep.
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter        *rate.Limiter
	lastAccessUnix int64 // atomic
}

// NewRateLimiter allows perMinute requests per IP, with bursts up to the same amount
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 100
	}

	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		ttl:      10 * time.Minute,
		stop:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	now := time.Now()

	rl.mu.RLock()
	entry, exists := rl.limiters[ip]
	if exists {
		atomic.StoreInt64(&entry.lastAccessUnix, now.Unix())
		limiter := entry.limiter
		rl.mu.RUnlock()
		return limiter
	}
	rl.mu.RUnlock()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Another request may have created it meanwhile.
	if entry, exists := rl.limiters[ip]; exists {
		atomic.StoreInt64(&entry.lastAccessUnix, now.Unix())
		return entry.limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[ip] = &limiterEntry{
		limiter:        limiter,
		lastAccessUnix: now.Unix(),
	}

	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.cleanup(now)
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, entry := range rl.limiters {
		lastAccess := time.Unix(atomic.LoadInt64(&entry.lastAccessUnix), 0)
		if now.Sub(lastAccess) > rl.ttl {
			delete(rl.limiters, ip)
		}
	}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getLimiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":       "rate_limit_exceeded",
					"message":    "Too many requests. Please try again later.",
					"request_id": c.GetString("request_id"),
				},
			})
			return
		}

		c.Next()
	}
}
