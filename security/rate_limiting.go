package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis     *redis.Client
	perMinute int
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{
		redis:     redisClient,
		perMinute: perMinute,
	}
}

// BusinessRateLimit caps requests per caller per minute on the business API.
// Authenticated callers are keyed by record id, anonymous ones by IP. When
// Redis is unavailable the limiter fails open.
func (r *RateLimiter) BusinessRateLimit() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := fmt.Sprintf("ratelimit:ip:%s", e.RealIP())
		if e.Auth != nil {
			key = fmt.Sprintf("ratelimit:user:%s", e.Auth.Id)
		}

		ctx := e.Request.Context()
		count, err := r.redis.Incr(ctx, key).Result()
		if err == nil {
			if count == 1 {
				r.redis.Expire(ctx, key, time.Minute)
			}
			if count > int64(r.perMinute) {
				return apis.NewApiError(http.StatusTooManyRequests,
					"Rate limit exceeded. Please try again later.", nil)
			}
		}

		return e.Next()
	}
}
