package api

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(rpm, burst int) (*RateLimiter, *manualClock) {
	clock := &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: rpm, BurstSize: burst})
	rl.now = clock.Now
	rl.swept = clock.now
	return rl, clock
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	rl, clock := newTestLimiter(60, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied within burst", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("request beyond burst allowed")
	}

	clock.Advance(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("token not refilled after one second at 60 rpm")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("more than one token refilled")
	}

	clock.Advance(time.Hour)
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("refill exceeded capacity or was lost at %d", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("bucket grew beyond capacity")
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	rl, _ := newTestLimiter(60, 1)
	if !rl.Allow("a") || !rl.Allow("b") {
		t.Fatal("first request of each client should pass")
	}
	if rl.Allow("a") {
		t.Error("client a not limited")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl, clock := newTestLimiter(60, 1)
	rl.Allow("old")
	clock.Advance(10 * time.Minute)
	rl.Allow("new")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.buckets["old"]; ok {
		t.Error("idle bucket was not swept")
	}
	if _, ok := rl.buckets["new"]; !ok {
		t.Error("new bucket missing")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(30, 1)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("/api/parse"); rec.Code != http.StatusOK || rec.Header().Get("X-RateLimit-Limit") != "30" {
		t.Fatalf("first request: %d %v", rec.Code, rec.Header())
	}
	rec := send("/api/parse")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "3" {
		t.Errorf("Retry-After = %q, want 3 (2s per token at 30 rpm)", rec.Header().Get("Retry-After"))
	}
	if rec := send("/api/health"); rec.Code != http.StatusOK {
		t.Errorf("health check was limited: %d", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.1:1", "203.0.113.5"},
		{"bad forwarded", map[string]string{"X-Forwarded-For": "nonsense"}, "10.0.0.1:1", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": " 2001:db8::1 "}, "10.0.0.1:1", "2001:db8::1"},
		{"bare remote", nil, "192.0.2.9", "192.0.2.9"},
		{"garbage", nil, "pipe", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServerRateLimitWired(t *testing.T) {
	cfg := testConfig()
	cfg.Limit.RequestsPerMinute = 1
	cfg.Limit.Burst = 1
	s := New(cfg, nil)
	h := s.Handler()

	first := do(t, h, http.MethodPost, "/api/normalize", "application/json", []byte(`{"words":[]}`))
	second := do(t, h, http.MethodPost, "/api/normalize", "application/json", []byte(`{"words":[]}`))
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Errorf("statuses = %d, %d; want 200, 429", first.Code, second.Code)
	}
}
