package tenancy

import (
	"context"
	"testing"
)

func TestWithTenantAndTenantFromContext(t *testing.T) {
	d := Descriptor{HostKey: "bienestar.localhost", DisplayName: "Clínica Bienestar"}
	ctx := WithTenant(context.Background(), "bienestar.localhost", d)

	got, ok := TenantFromContext(ctx)
	if !ok {
		t.Fatalf("expected tenant to be present")
	}
	if got.DisplayName != "Clínica Bienestar" {
		t.Fatalf("expected Clínica Bienestar, got %s", got.DisplayName)
	}
	host, ok := HostFromContext(ctx)
	if !ok || host != "bienestar.localhost" {
		t.Fatalf("expected host bienestar.localhost, got %q", host)
	}
}

func TestTenantFromContext_EmptyOrMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := TenantFromContext(ctx); ok {
		t.Fatalf("expected missing tenant to return false")
	}
	if _, ok := HostFromContext(ctx); ok {
		t.Fatalf("expected missing host to return false")
	}

	ctx = context.WithValue(ctx, tenantKey, 42)
	if _, ok := TenantFromContext(ctx); ok {
		t.Fatalf("expected non-descriptor value to return false")
	}

	ctx = WithTenant(context.Background(), "", Descriptor{})
	if _, ok := TenantFromContext(ctx); ok {
		t.Fatalf("expected zero descriptor to return false")
	}
}
