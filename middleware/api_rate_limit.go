package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/FreightDesk/freight-desk-backend/config"
	"github.com/FreightDesk/freight-desk-backend/services"
	"github.com/gin-gonic/gin"
)

// APIRateLimiter limits inbound requests per client IP using a fixed window
// counter in Redis. Email providers retry webhook deliveries aggressively,
// so the limiter answers 429 with a Retry-After rather than dropping silently.
func APIRateLimiter(rateLimiter services.RateLimiterInterface, cfg config.RateLimitConfig) gin.HandlerFunc {
	window := time.Duration(cfg.WindowSeconds) * time.Second

	return func(c *gin.Context) {
		key := "api:" + c.ClientIP()

		allowed, retryAfter, err := rateLimiter.CheckLimit(
			c.Request.Context(),
			key,
			cfg.RequestsPerWindow,
			window,
		)
		if err != nil {
			// Redis being down should not take the intake pipeline with it
			c.Next()
			return
		}

		if !allowed {
			setRateLimitHeaders(c, cfg.RequestsPerWindow, 0, retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(retryAfter.Seconds()),
			})
			return
		}

		setRateLimitHeaders(c, cfg.RequestsPerWindow, cfg.RequestsPerWindow-1, 0)
		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, limit int, remaining int, retryAfter time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

	if retryAfter > 0 {
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}
}
