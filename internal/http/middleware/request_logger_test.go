package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

func TestRequestLoggerWritesTenantAndStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("info", &buf)

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tenant", nil)
	ctx := tenancy.WithTenant(context.Background(), "mindcare.localhost", tenancy.Descriptor{HostKey: "mindcare.localhost"})
	req = req.WithContext(ctx)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["host"] != "mindcare.localhost" {
		t.Fatalf("expected host in log, got %v", entry["host"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("expected status in log, got %v", entry["status"])
	}
	if entry["request_id"] != "req-42" {
		t.Fatalf("expected request id in log, got %v", entry["request_id"])
	}
}

func TestRequestLoggerGeneratesRequestID(t *testing.T) {
	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}
}
