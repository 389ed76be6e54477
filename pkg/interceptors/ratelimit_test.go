package interceptors

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	l := NewRateLimiter(PerMinute(5), 5)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(13 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "a token refills after 12s")
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	l := NewRateLimiter(PerMinute(5), 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(limiterIdleTTL + time.Second)
	l.Allow("b")

	_, ok := l.clients["a"]
	assert.False(t, ok)
}

func TestRateLimiter_SweepsOncePerIdleWindow(t *testing.T) {
	l := NewRateLimiter(PerMinute(5), 1)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	l.now = func() time.Time { return now }

	l.Allow("x")
	now = start.Add(time.Minute)
	l.Allow("a")

	now = start.Add(limiterIdleTTL + 30*time.Second)
	l.Allow("b")
	assert.Contains(t, l.clients, "a", "a has been idle for less than the TTL")
	assert.NotContains(t, l.clients, "x")

	now = start.Add(time.Minute + limiterIdleTTL + time.Second)
	l.Allow("c")
	assert.Contains(t, l.clients, "a", "no sweep until a full window after the last one")

	now = start.Add(2*limiterIdleTTL + time.Minute)
	l.Allow("d")
	assert.NotContains(t, l.clients, "a")
	assert.Contains(t, l.clients, "d")
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewRateLimiter(PerMinute(1), 1)
	r := gin.New()
	r.GET("/x", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}
