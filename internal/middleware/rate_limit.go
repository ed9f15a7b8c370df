package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	Message           string
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		KeyPrefix:         "api:ratelimit:",
		Message:           "Too many requests. Please try again shortly.",
	}
}

const rateLimitWindow = time.Minute

// rateLimitScript is an atomic Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local window_start = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1, 0}
else
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local reset_at = 0
    if #oldest >= 2 then
        reset_at = tonumber(oldest[2]) + window
    end
    return {0, 0, reset_at}
end
`)

// RateLimit returns a gin middleware that rate limits by client IP
func RateLimit(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit(c, redisClient, cfg, cfg.KeyPrefix+c.ClientIP())
	}
}

// RateLimitPerUser keys the limit by the signed-in user, falling back to the client IP.
// It must run after Workspace.
func RateLimitPerUser(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := GetUserID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		limit(c, redisClient, cfg, cfg.KeyPrefix+"user:"+subject)
	}
}

func limit(c *gin.Context, redisClient *redis.Client, cfg RateLimitConfig, key string) {
	if redisClient == nil || cfg.RequestsPerMinute <= 0 {
		c.Next()
		return
	}

	now := time.Now().UnixMilli()
	result, err := rateLimitScript.Run(c.Request.Context(), redisClient, []string{key},
		cfg.RequestsPerMinute, rateLimitWindow.Milliseconds(), now,
	).Int64Slice()
	if err != nil {
		// fail open
		logger.GetLogger().Warn().Err(err).Msg("rate limit check failed")
		c.Next()
		return
	}

	allowed := result[0] == 1
	remaining := result[1]
	resetAt := result[2]

	c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if !allowed {
		retryAfter := (resetAt - now) / 1000
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt/1000, 10))
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		common.V2ErrorResponse(c, http.StatusTooManyRequests, cfg.Message, nil)
		c.Abort()
		return
	}

	c.Next()
}
