package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func limitedRouter(l *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", l.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	router := limitedRouter(NewRateLimiter(nil, 2))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiterDisabledWhenZero(t *testing.T) {
	router := limitedRouter(NewRateLimiter(nil, 0))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLocalLimiterReusesEntryPerIP(t *testing.T) {
	l := NewRateLimiter(nil, 60)

	first := l.localLimiter("203.0.113.7")
	second := l.localLimiter("203.0.113.7")

	require.Same(t, first, second)
	require.Len(t, l.limiters, 1)
}

func TestLocalLimiterEvictsIdleEntries(t *testing.T) {
	l := NewRateLimiter(nil, 60)

	stale := time.Now().Add(-10 * time.Minute)
	for i := 0; i < maxTrackedIPs; i++ {
		ip := fmt.Sprintf("10.0.%d.%d", i/256, i%256)
		l.localLimiter(ip)
		l.limiters[ip].lastSeen = stale
	}
	require.Len(t, l.limiters, maxTrackedIPs)

	l.localLimiter("203.0.113.9")

	require.Len(t, l.limiters, 1)
	require.Contains(t, l.limiters, "203.0.113.9")
}
