package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds request throughput per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// visitorLimiters hands out one rate.Limiter per client IP. Entries idle
// longer than maxIdle are swept out lazily as new clients arrive, so the map
// does not grow without bound under IP churn.
type visitorLimiters struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	cfg      RateLimitConfig
	maxIdle  time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterMaxIdle = 3 * time.Minute

func newVisitorLimiters(cfg RateLimitConfig) *visitorLimiters {
	return &visitorLimiters{
		visitors: make(map[string]*visitor),
		cfg:      cfg,
		maxIdle:  limiterMaxIdle,
	}
}

func (v *visitorLimiters) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now()
	if vis, ok := v.visitors[ip]; ok {
		vis.lastSeen = now
		return vis.limiter
	}

	if len(v.visitors) > 0 && len(v.visitors)%256 == 0 {
		v.prune(now)
	}
	vis := &visitor{
		limiter:  rate.NewLimiter(rate.Limit(v.cfg.RequestsPerSecond), v.cfg.BurstSize),
		lastSeen: now,
	}
	v.visitors[ip] = vis
	return vis.limiter
}

// prune requires v.mu to be held.
func (v *visitorLimiters) prune(now time.Time) {
	for ip, vis := range v.visitors {
		if now.Sub(vis.lastSeen) > v.maxIdle {
			delete(v.visitors, ip)
		}
	}
}

// RateLimit rejects clients that exhaust their per-IP token budget with 429
// and a Retry-After hint.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiters := newVisitorLimiters(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !limiters.get(c.RealIP()).Allow() {
				c.Response().Header().Set("Retry-After", "1")
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
