package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiterConfig mirrors config.LimitConfig.
type RateLimiterConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// bucket is a token bucket for one client.
type bucket struct {
	tokens float64
	last   time.Time
}

// RateLimiter applies a token bucket per client IP. Idle buckets are swept
// lazily when new clients arrive.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity float64
	rate     float64 // tokens per second
	rpm      int
	idleTTL  time.Duration
	swept    time.Time

	// now is replaced in tests.
	now func() time.Time
}

// NewRateLimiter creates a limiter from cfg.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: float64(cfg.BurstSize),
		rate:     float64(cfg.RequestsPerMinute) / 60,
		rpm:      cfg.RequestsPerMinute,
		idleTTL:  5 * time.Minute,
		swept:    time.Now(),
		now:      time.Now,
	}
}

// take refills the client's bucket and tries to spend one token. It reports
// the tokens left and how long until the next token when none was available.
func (rl *RateLimiter) take(client string) (ok bool, remaining int, retry time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[client]
	if !exists {
		if now.Sub(rl.swept) > time.Minute {
			rl.sweepLocked(now)
		}
		b = &bucket{tokens: rl.capacity, last: now}
		rl.buckets[client] = b
	}

	b.tokens = min(rl.capacity, b.tokens+now.Sub(b.last).Seconds()*rl.rate)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	wait := time.Duration((1 - b.tokens) / rl.rate * float64(time.Second))
	return false, 0, wait
}

// sweepLocked drops idle buckets. MUST be called with mu held.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for client, b := range rl.buckets {
		if now.Sub(b.last) > rl.idleTTL {
			delete(rl.buckets, client)
		}
	}
	rl.swept = now
}

// Allow spends a token for client if one is available.
func (rl *RateLimiter) Allow(client string) bool {
	ok, _, _ := rl.take(client)
	return ok
}

// Middleware rejects requests beyond the limit with 429. The health check is
// never limited.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			next.ServeHTTP(w, r)
			return
		}

		ok, remaining, retry := rl.take(getClientIP(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.rpm))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			secs := int(retry.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Rate limit exceeded. Try again in "+strconv.Itoa(secs)+" seconds.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP takes the leftmost valid X-Forwarded-For address, then
// X-Real-IP, then the connection's remote address.
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) != nil {
		return host
	}
	return "unknown"
}
