package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, remaining := rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, remaining = rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _ = rl.Allow("a")
	assert.False(t, ok, "third request in the window is rejected")

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "a new window resets the budget")
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	router := gin.New()
	router.POST("/orders", RateLimit(rl), func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), ErrCodeRateLimited)
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Millisecond)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
