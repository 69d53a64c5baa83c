package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jsonfeed-validator/internal/observability/logging"
	"jsonfeed-validator/internal/observability/metrics"
	"jsonfeed-validator/pkg/config"
)

// RateLimiter enforces a token bucket per client IP.
// Every validation request triggers an outbound fetch, so the bucket bounds
// how much traffic a single client can make the server send.
type RateLimiter struct {
	config      config.RateLimitConfig
	ipExtractor IPExtractor

	mu      sync.Mutex
	clients map[string]*clientBucket

	now func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-IP limiter.
// A nil ipExtractor defaults to RemoteAddrExtractor.
//
// Example:
//
//	cfg := config.LoadRateLimitConfig(config.DefaultRateLimitConfig())
//	limiter := NewRateLimiter(cfg, &RemoteAddrExtractor{})
//	handler = limiter.Middleware(handler)
func NewRateLimiter(cfg config.RateLimitConfig, ipExtractor IPExtractor) *RateLimiter {
	if ipExtractor == nil {
		ipExtractor = &RemoteAddrExtractor{}
	}
	return &RateLimiter{
		config:      cfg,
		ipExtractor: ipExtractor,
		clients:     make(map[string]*clientBucket),
		now:         time.Now,
	}
}

// Middleware rejects requests over the client's budget with 429 Too Many
// Requests and a Retry-After header. Disabled limiters pass everything through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		logger := logging.FromContext(r.Context())

		ip, err := rl.ipExtractor.ExtractIP(r)
		if err != nil {
			logger.Warn("rate limiter: IP extraction failed, using RemoteAddr fallback",
				"error", err,
				"remote_addr", r.RemoteAddr,
			)
			ip, err = extractIPFromAddr(r.RemoteAddr)
			if err != nil {
				// httptest and unix sockets may not carry an address; share one bucket.
				ip = r.RemoteAddr
			}
		}

		if wait, ok := rl.allow(ip); !ok {
			metrics.RecordRateLimited()
			logger.Warn("rate limit exceeded",
				"ip", ip,
				"path", r.URL.Path,
				"retry_after", wait,
			)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow takes one token from the client's bucket. When the bucket is empty
// it returns the time until a token becomes available.
func (rl *RateLimiter) allow(ip string) (time.Duration, bool) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.clients[ip]
	if !ok {
		if len(rl.clients) >= rl.config.MaxClients {
			rl.evictLocked(now)
		}
		bucket = &clientBucket{
			limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
		}
		rl.clients[ip] = bucket
	}
	bucket.lastSeen = now

	res := bucket.limiter.ReserveN(now, 1)
	if !res.OK() {
		return 0, false
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return delay, false
	}
	return 0, true
}

// evictLocked frees room for a new client: idle buckets go first,
// then the least recently seen one.
func (rl *RateLimiter) evictLocked(now time.Time) {
	rl.removeIdleLocked(now)
	if len(rl.clients) < rl.config.MaxClients {
		return
	}

	var oldestIP string
	var oldest time.Time
	for ip, b := range rl.clients {
		if oldestIP == "" || b.lastSeen.Before(oldest) {
			oldestIP, oldest = ip, b.lastSeen
		}
	}
	delete(rl.clients, oldestIP)
}

func (rl *RateLimiter) removeIdleLocked(now time.Time) int {
	removed := 0
	for ip, b := range rl.clients {
		if now.Sub(b.lastSeen) > rl.config.IdleTTL {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

// CleanupExpired drops buckets idle for longer than IdleTTL and returns
// how many were removed.
func (rl *RateLimiter) CleanupExpired() int {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.removeIdleLocked(now)
}

// ActiveClients returns the number of tracked client buckets.
func (rl *RateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// retryAfterSeconds rounds up so clients never retry too early.
func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
