package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docvault/docvault/internal/pkg/errcode"
	"github.com/docvault/docvault/internal/pkg/response"
)

const rateLimitKeyCapacity = 4096

type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   *lru.Cache[string, time.Time]
	now    func() time.Time
}

// RateLimit rejects a second hit on the same (ip, user, path) key inside the
// window. The LRU bounds memory under key churn.
func RateLimit(window time.Duration) gin.HandlerFunc {
	cache, _ := lru.New[string, time.Time](rateLimitKeyCapacity)
	limiter := &rateLimiter{
		window: window,
		last:   cache,
		now:    time.Now,
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	uid := "0"
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			uid = id
		}
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, uid, path}, "|")

	now := l.now()
	l.mu.Lock()
	last, exists := l.last.Get(key)
	if exists && now.Sub(last) < l.window {
		l.mu.Unlock()
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("user_id", uid),
			zap.String("path", path),
		)
		response.Error(c, errcode.ErrTooMany, http.StatusText(http.StatusTooManyRequests))
		c.Abort()
		return
	}
	l.last.Add(key, now)
	l.mu.Unlock()
	c.Next()
}
