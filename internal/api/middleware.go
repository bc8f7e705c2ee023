package api

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"

	"github.com/debemdeboas/postbox/internal/cache"
	"github.com/debemdeboas/postbox/internal/config"
)

// NewRouter wraps h with request logging, security headers and, when limiter
// is not nil, per-client rate limiting.
func NewRouter(h http.Handler, limiter *RateLimiter) http.Handler {
	var next http.Handler = h
	if limiter != nil {
		next = limiter.Middleware(next)
	}
	next = secureHeaders(next)
	next = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	})(next)
	next = hlog.RemoteAddrHandler("remote_addr")(next)
	next = hlog.RequestIDHandler("req_id", config.HRequestID)(next)
	return hlog.NewHandler(apiLogger)(next)
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		next.ServeHTTP(w, r)
	})
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps one token bucket per client host.
type RateLimiter struct {
	limit rate.Limit
	burst int

	clients *cache.Cache[string, *clientLimiter]
	now     func() time.Time
}

// NewRateLimiter returns nil when requestsPerSecond is not positive, which
// NewRouter treats as "no limiting".
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		clients: cache.NewCache[string, *clientLimiter](),
		now:     time.Now,
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) Allow(key string) bool {
	c := rl.clients.GetOrCreate(key, func() *clientLimiter {
		return &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	})
	now := rl.now()
	c.lastSeen.Store(now.UnixNano())
	return c.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientKey(r)) {
			hlog.FromRequest(r).Warn().Str("client", clientKey(r)).Msg("Rate limit exceeded")
			w.Header().Set(config.HRetryAfter, "1")
			writeJSON(w, r, http.StatusTooManyRequests, Message{Message: http.StatusText(http.StatusTooManyRequests)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sweep forgets clients idle for longer than idle.
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	cutoff := rl.now().Add(-idle).UnixNano()
	return rl.clients.DeleteFunc(func(_ string, c *clientLimiter) bool {
		return c.lastSeen.Load() < cutoff
	})
}

// Run sweeps idle clients every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(interval); n > 0 {
				apiLogger.Debug().
					Int("forgotten", n).
					Int("remaining", rl.clients.Len()).
					Msg("Forgot idle rate limit clients")
			}
		}
	}
}
