package middleware

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Idle in-process limiters get evicted once the map fills up, so a churn
// of client IPs cannot grow it without bound.
const (
	maxTrackedIPs  = 4096
	limiterIdleAge = 3 * time.Minute
)

// RateLimiter bounds requests per client IP. Counting happens in redis
// when available so the limit holds across replicas; otherwise an
// in-process token bucket per IP takes over.
type RateLimiter struct {
	rdb       *redis.Client
	perMinute int

	mu       sync.Mutex
	limiters map[string]*ipLimiter
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a limiter. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{
		rdb:       rdb,
		perMinute: perMinute,
		limiters:  make(map[string]*ipLimiter),
	}
}

// Middleware enforces the per-IP limit, responding 429 when exceeded.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.perMinute <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		allowed, err := l.allow(c, ip)
		if err != nil {
			log.Printf("rate limit check failed, allowing request: %v", err)
			allowed = true
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(c *gin.Context, ip string) (bool, error) {
	if l.rdb == nil {
		return l.localLimiter(ip).Allow(), nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", ip, time.Now().Format("2006-01-02T15:04"))
	count, err := l.rdb.Incr(c.Request.Context(), key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		l.rdb.Expire(c.Request.Context(), key, time.Minute)
	}
	return count <= int64(l.perMinute), nil
}

func (l *RateLimiter) localLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if entry, ok := l.limiters[ip]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	if len(l.limiters) >= maxTrackedIPs {
		l.evictIdle(now)
	}
	entry := &ipLimiter{
		limiter:  rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.perMinute),
		lastSeen: now,
	}
	l.limiters[ip] = entry
	return entry.limiter
}

// evictIdle drops limiters that have not been used recently. Callers
// must hold mu.
func (l *RateLimiter) evictIdle(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleAge {
			delete(l.limiters, ip)
		}
	}
}
