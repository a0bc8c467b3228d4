package middleware

import (
	"strconv"
	"sync"
	"time"

	"livestream-api/core/controller"
	"livestream-api/core/errors"
	"livestream-api/core/logger"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterStore keeps one token bucket per key and forgets idle keys.
type LimiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewLimiterStore(rps float64, burst int, idleTTL time.Duration) *LimiterStore {
	if burst < 1 {
		burst = 1
	}
	return &LimiterStore{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(rps),
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

func (s *LimiterStore) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.idleTTL > 0 && now.Sub(s.lastSweep) > s.idleTTL {
		s.sweepLocked(now)
	}
	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Sweep drops limiters not used within the idle TTL.
func (s *LimiterStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *LimiterStore) sweepLocked(now time.Time) int {
	s.lastSweep = now
	removed := 0
	cutoff := now.Add(-s.idleTTL)
	for key, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimit throttles per authenticated principal, falling back to the client
// IP. It must run after AuthMiddleware to key on the principal.
func RateLimit(store *LimiterStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if claims := TokenData(c); claims != nil {
				key = "user:" + strconv.FormatInt(claims.UserID, 10)
			}
			if !store.Allow(key) {
				logger.Warn("Middleware:RateLimit:Rejected", "key", key, "path", c.Path())
				return controller.NewErrorResponse(controller.HTTPStatus(errors.ErrTooManyRequests),
					errors.ErrTooManyRequests, "too many requests, slow down")
			}
			return next(c)
		}
	}
}
