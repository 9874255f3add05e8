package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/common/auth"
)

// WindowCounter counts hits for a key inside a fixed time window.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisWindowCounter is a WindowCounter backed by Redis INCR + EXPIRE NX.
type RedisWindowCounter struct {
	rdb *redis.Client
}

// NewRedisWindowCounter creates a RedisWindowCounter.
func NewRedisWindowCounter(rdb *redis.Client) *RedisWindowCounter {
	return &RedisWindowCounter{rdb: rdb}
}

// Hit increments the counter for key. The window TTL is set in the same
// transaction whenever the key has none, so a counter never outlives it.
func (r *RedisWindowCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// KeyFunc derives the rate limit bucket for a request.
type KeyFunc func(c *gin.Context) string

// ClientIPKey buckets requests by client IP.
func ClientIPKey(c *gin.Context) string {
	return "rate_limit:" + c.ClientIP()
}

// TokenSubjectKey buckets requests carrying a valid bearer token by user id
// and everything else by client IP. It runs ahead of the group-level
// AuthMiddleware, so it reads the token itself.
func TokenSubjectKey(jwtManager *auth.JWTManager) KeyFunc {
	return func(c *gin.Context) string {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || token == "" {
			return ClientIPKey(c)
		}
		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			return ClientIPKey(c)
		}
		return "rate_limit:user:" + claims.UserID.String()
	}
}

// RateLimitMiddleware rejects callers that exceed limit requests per window.
// Counter failures let the request through.
func RateLimitMiddleware(counter WindowCounter, keyFn KeyFunc, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = ClientIPKey
	}
	return func(c *gin.Context) {
		key := keyFn(c)

		current, err := counter.Hit(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(limit) - current
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if current > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
				},
			})
			return
		}
		c.Next()
	}
}
