package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc derives the throttling key for a request.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys the limiter on the X-User-ID header when present,
// falling back to the client IP. Authenticated clients get their own
// bucket; anonymous traffic shares one per address.
func KeyByUserOrIP(c *gin.Context) string {
	if uid := c.GetHeader("X-User-ID"); uid != "" {
		return "u:" + uid
	}
	return "ip:" + c.ClientIP()
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter returns a token-bucket middleware allowing rps sustained
// requests per second with the given burst, per key. Buckets idle for
// more than 10 minutes are garbage collected in the background. Rejected
// requests get a 429 with a Retry-After hint.
func RateLimiter(rps float64, burst int, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = KeyByUserOrIP
	}

	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	go func() {
		for range time.Tick(time.Minute) {
			mu.Lock()
			for k, v := range visitors {
				if time.Since(v.lastSeen) > 10*time.Minute {
					delete(visitors, k)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		k := key(c)

		mu.Lock()
		v, found := visitors[k]
		if !found {
			v = &visitor{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			visitors[k] = v
		}
		v.lastSeen = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			rid, _ := c.Get(requestIDKey)
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"request_id": asString(rid),
				"code":       "too_many_requests",
				"message":    "too many requests",
			})
			return
		}
		c.Next()
	}
}
