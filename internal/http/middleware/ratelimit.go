package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// IPRateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than idleTTL are evicted on the next lookup sweep.
type IPRateLimiter struct {
	mu        sync.Mutex
	ips       map[string]*ipLimiter
	rateLimit rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows perSecond requests per IP with the given burst.
func NewIPRateLimiter(perSecond float64, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		ips:       make(map[string]*ipLimiter),
		rateLimit: rate.Limit(perSecond),
		burst:     burst,
		idleTTL:   10 * time.Minute,
		now:       time.Now,
	}
}

// Limiter returns the bucket for ip, creating it on first use.
func (i *IPRateLimiter) Limiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) > i.idleTTL {
		for k, v := range i.ips {
			if now.Sub(v.lastSeen) > i.idleTTL {
				delete(i.ips, k)
			}
		}
		i.lastSweep = now
	}

	l, ok := i.ips[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(i.rateLimit, i.burst)}
		i.ips[ip] = l
	}
	l.lastSeen = now
	return l.limiter
}

// RateLimit rejects requests over the per-IP budget with 429 and the
// standard error envelope. A non-positive rate disables limiting.
func RateLimit(l *IPRateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil || l.rateLimit <= 0 {
			return c.Next()
		}
		lim := l.Limiter(c.IP())
		if lim.Allow() {
			return c.Next()
		}

		retry := time.Duration(float64(time.Second) / float64(l.rateLimit))
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(max(1, int(retry.Seconds()))))
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"request_id": rid,
			"error": fiber.Map{
				"code":    "RATE_LIMITED",
				"message": "too many requests",
			},
		})
	}
}
