package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pliro-dev/pliro/internal/cache"
)

// ratelimitPrefix keeps limiter counters out of the response-cache namespace
// so pattern invalidation never clears a live window.
const ratelimitPrefix = "pliro-ratelimit:"

// RateLimit enforces fixed-window request budgets per client IP, one hourly
// and one daily. A zero limit disables its window. Store errors fail open:
// the limiter must never take the API down with it.
func RateLimit(hourly, daily int) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()

		if exceeded(ctx, fmt.Sprintf("%sh:%s", ratelimitPrefix, ip), hourly, time.Hour) ||
			exceeded(ctx, fmt.Sprintf("%sd:%s", ratelimitPrefix, ip), daily, 24*time.Hour) {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		ctx.Next()
	}
}

func exceeded(ctx *gin.Context, key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return false
	}

	count, err := cache.Default.Incr(ctx.Request.Context(), key, window)

	if err != nil {
		log.Printf("Rate limiter unavailable, allowing request: %v", err)
		return false
	}

	return count > int64(limit)
}
