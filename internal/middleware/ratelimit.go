package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Counter increments a key that expires after window and returns the new
// value. *cache.RedisClient implements it.
type Counter interface {
	IncrWithin(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows limit requests per client IP in each fixed window. When
// the counter backend fails the request goes through.
func RateLimit(counter Counter, scope string, limit int64, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())

		n, err := counter.IncrWithin(c.Request.Context(), key, window)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"scope":     scope,
				"client_ip": c.ClientIP(),
			}).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if n > limit {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}

		c.Next()
	}
}
