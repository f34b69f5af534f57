package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter implements a token bucket per client IP.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens     int
	lastSeen   time.Time
	blocked    bool
	blockUntil time.Time
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}

	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) RateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if blocked, resetTime := rl.isBlocked(ip); blocked {
				log.Printf("RATE LIMIT: blocked request from IP %s (reset in %v)", ip, time.Until(resetTime))

				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"retry_after": int(time.Until(resetTime).Seconds()),
				})
			}

			rl.consume(ip)

			return next(c)
		}
	}
}

func (rl *RateLimiter) isBlocked(ip string) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:   rl.rate - 1,
			lastSeen: time.Now(),
		}
		return false, time.Time{}
	}

	now := time.Now()

	if v.blocked && now.Before(v.blockUntil) {
		return true, v.blockUntil
	}
	if v.blocked && now.After(v.blockUntil) {
		v.blocked = false
		v.tokens = rl.rate
		v.lastSeen = now
	}

	timePassed := now.Sub(v.lastSeen)
	v.tokens += int(timePassed / rl.window * time.Duration(rl.rate))
	if v.tokens > rl.rate {
		v.tokens = rl.rate
	}
	v.lastSeen = now

	if v.tokens <= 0 {
		v.blocked = true
		v.blockUntil = now.Add(rl.window)
		return true, v.blockUntil
	}

	return false, time.Time{}
}

func (rl *RateLimiter) consume(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, exists := rl.visitors[ip]; exists {
		v.tokens--
		v.lastSeen = time.Now()
	}
}

func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(time.Hour)

		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastSeen) > 2*time.Hour {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

var (
	// General API rate limiter: 60 requests per minute.
	GeneralLimiter = NewRateLimiter(60, time.Minute)

	// Message send limiter: keeps one client from flooding a channel.
	MessagingLimiter = NewRateLimiter(30, time.Minute)
)

func GeneralRateLimit() echo.MiddlewareFunc {
	return GeneralLimiter.RateLimitMiddleware()
}

func MessagingRateLimit() echo.MiddlewareFunc {
	return MessagingLimiter.RateLimitMiddleware()
}
