package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"guesswho_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var rateLimiter *redis.Client

const (
	rateWindow   = time.Minute
	rateRequests = 120
)

// InitRedisRateLimiter подключает лимитер к redis; с пустым адресом
// лимитер выключен и RateLimit пропускает все
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		logger.Warn("rate limiter отключен: redis не сконфигурирован")
		return
	}
	rateLimiter = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RateLimit - fixed window на пользователя (по user_id из auth,
// иначе по IP). При недоступном redis запрос пропускается
func RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil {
			c.Next()
			return
		}

		who := c.ClientIP()
		if v, ok := c.Get("user_id"); ok {
			who = fmt.Sprintf("u%v", v)
		}
		key := fmt.Sprintf("ratelimit:%s:%d", who, time.Now().Unix()/int64(rateWindow.Seconds()))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		n, err := rateLimiter.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if n == 1 {
			rateLimiter.Expire(ctx, key, rateWindow)
		}
		if n > rateRequests {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
