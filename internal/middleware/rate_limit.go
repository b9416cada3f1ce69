package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of a single rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether the caller identified by key may proceed.
// Peek reports the same decision without counting a request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Peek(ctx context.Context, key string) (Decision, error)
}

// RateLimiter is a fixed window limiter shared across instances through Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit:recipes"
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

func (rl *RateLimiter) windowKey(key string, now time.Time) (string, time.Time) {
	windowStart := now.Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix()), windowStart
}

// Allow counts the request against the current window
func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey, windowStart := rl.windowKey(key, time.Now())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: remaining,
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// Peek reports the requests left in the current window without counting one
func (rl *RateLimiter) Peek(ctx context.Context, key string) (Decision, error) {
	redisKey, windowStart := rl.windowKey(key, time.Now())
	d := Decision{
		Allowed:   true,
		Limit:     rl.config.Limit,
		Remaining: rl.config.Limit,
		Reset:     windowStart.Add(rl.config.Window),
	}

	count, err := rl.redis.Get(ctx, redisKey).Int()
	if err == redis.Nil {
		return d, nil
	}
	if err != nil {
		return Decision{}, err
	}

	d.Remaining = rl.config.Limit - count
	if d.Remaining <= 0 {
		d.Remaining = 0
		d.Allowed = false
	}
	return d, nil
}

// LocalRateLimiter is a per-process token bucket per key, used when no Redis is configured.
// A bucket idle for a whole window has refilled, so it is dropped from the cache.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	config   RateLimitConfig
	every    rate.Limit
}

// NewLocalRateLimiter allows config.Limit requests per config.Window per key, with bursts up to config.Limit
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	if config.Limit < 1 {
		config.Limit = 1
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &LocalRateLimiter{
		limiters: cache.New(config.Window, config.Window),
		config:   config,
		every:    rate.Every(config.Window / time.Duration(config.Limit)),
	}
}

// limiter returns the bucket for key and pushes its expiry a window ahead
func (l *LocalRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lim *rate.Limiter
	if v, ok := l.limiters.Get(key); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(l.every, l.config.Limit)
	}
	l.limiters.Set(key, lim, cache.DefaultExpiration)
	return lim
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	lim := l.limiter(key)
	now := time.Now()
	allowed := lim.AllowN(now, 1)

	d := l.decision(lim.TokensAt(now), now)
	d.Allowed = allowed
	return d, nil
}

func (l *LocalRateLimiter) Peek(_ context.Context, key string) (Decision, error) {
	now := time.Now()
	v, ok := l.limiters.Get(key)
	if !ok {
		return l.decision(float64(l.config.Limit), now), nil
	}
	return l.decision(v.(*rate.Limiter).TokensAt(now), now), nil
}

func (l *LocalRateLimiter) decision(tokens float64, now time.Time) Decision {
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) / float64(l.every) * float64(time.Second)))
	}

	return Decision{
		Allowed:   tokens >= 1,
		Limit:     l.config.Limit,
		Remaining: remaining,
		Reset:     reset,
	}
}

// RateLimit returns a Gin middleware that enforces limiter per client IP.
// A failing limiter lets the request through.
func RateLimit(limiter Limiter, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		setRateLimitHeaders(c, d)

		if !d.Allowed {
			retryAfter := int(time.Until(d.Reset).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// RateLimitStatus reports the caller's rate limit headers without counting the request
func RateLimitStatus(limiter Limiter, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Peek(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("rate limit status failed")
			c.Next()
			return
		}
		setRateLimitHeaders(c, d)
		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, d Decision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
}
