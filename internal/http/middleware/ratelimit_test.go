package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBurstThenDeny(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	fixed := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatalf("expected burst of two to be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected third request to be denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("expected a separate bucket per key")
	}

	fixed = fixed.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("expected a token to refill after one second")
	}
}

func TestRateLimiterEvict(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(20 * time.Minute)
	rl.Allow("fresh")

	if n := rl.Evict(10 * time.Minute); n != 1 {
		t.Fatalf("expected one idle bucket evicted, got %d", n)
	}
	if _, ok := rl.limiters["fresh"]; !ok {
		t.Fatalf("expected fresh bucket kept")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	mw := RateLimit(NewRateLimiter(0.001, 1))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/admin/registry/reload", nil)
		req.RemoteAddr = fmt.Sprintf("192.0.2.10:%d", 40000+i)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [200 429], got %v", codes)
	}
}

func TestRateLimitMiddlewareSharesBucketAcrossSourcePorts(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	fixed := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for port := 40000; port < 40020; port++ {
		req := httptest.NewRequest(http.MethodPost, "/admin/registry/reload", nil)
		req.RemoteAddr = fmt.Sprintf("192.0.2.10:%d", port)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != 1 {
		t.Fatalf("expected 1 request allowed across source ports, got %d", allowed)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/registry/reload", nil)
	req.RemoteAddr = "192.0.2.11:40000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected a different client to get its own bucket, got %d", rec.Code)
	}
}

func TestClientKey(t *testing.T) {
	cases := map[string]string{
		"192.0.2.10:40000":  "192.0.2.10",
		"192.0.2.10":        "192.0.2.10",
		"[2001:db8::1]:443": "2001:db8::1",
		"2001:db8::1":       "2001:db8::1",
		"":                  "",
	}
	for in, want := range cases {
		if got := clientKey(in); got != want {
			t.Errorf("clientKey(%q) = %q, want %q", in, got, want)
		}
	}
}
