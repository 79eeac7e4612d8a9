package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// slidingWindow 按 key 记录窗口内的请求时间
type slidingWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string][]time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{limit: limit, window: window, entries: make(map[string][]time.Time)}
}

// allow 未超限时记录本次请求并返回 true
func (w *slidingWindow) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	ts := prune(w.entries[key], now.Add(-w.window))
	if len(ts) >= w.limit {
		w.entries[key] = ts
		return false
	}
	w.entries[key] = append(ts, now)
	return true
}

// sweep 清理过期记录
func (w *slidingWindow) sweep(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.window)
	for key, ts := range w.entries {
		if ts = prune(ts, cutoff); len(ts) == 0 {
			delete(w.entries, key)
		} else {
			w.entries[key] = ts
		}
	}
}

func (w *slidingWindow) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// AuthRateLimit 登录/注册限流，每 IP 在 window 内最多 maxAttempts 次，超过返回 429
func AuthRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	limiter := newSlidingWindow(maxAttempts, window)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			limiter.sweep(now)
		}
	}()

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"code":    http.StatusTooManyRequests,
				"message": "too many attempts, please try again later",
			})
			return
		}
		c.Next()
	}
}
