package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowedOrigin(t *testing.T) {
	h := CORS([]string{"https://ops.example.com"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ops.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORSUnknownOriginGetsNoHeaders(t *testing.T) {
	h := CORS([]string{"https://ops.example.com"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q for unlisted origin, want empty", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://ops.example.com"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/objects", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("preflight missing allow-methods header")
	}
}

// fakeLimiter scripts the limiter decisions.
type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func TestRateLimitAllows(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	h := RateLimit(limiter, 60, time.Minute)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "ratelimit:api:203.0.113.7" {
		t.Errorf("limiter keys = %v", limiter.keys)
	}
}

func TestRateLimitRejects(t *testing.T) {
	h := RateLimit(&fakeLimiter{allowed: false}, 60, time.Minute)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("retry-after = %q", got)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := RateLimit(&fakeLimiter{err: errors.New("redis down")}, 60, time.Minute)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want limiter failure to pass through", rec.Code)
	}
}

func TestExtractClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")

	if got := extractClientIP(req); got != "198.51.100.4" {
		t.Errorf("ip = %q", got)
	}
}
