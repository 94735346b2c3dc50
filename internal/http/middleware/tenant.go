package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/wolfman30/clinic-tenancy/internal/observability/metrics"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
)

// RequestHost returns the host a request was addressed to, lowercased and
// without port. X-Forwarded-Host is honored only when trustForwarded is set.
func RequestHost(r *http.Request, trustForwarded bool) string {
	host := r.Host
	if trustForwarded {
		if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
			host, _, _ = strings.Cut(fwd, ",")
		}
	}
	return normalizeHost(host)
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// ResolveTenant attaches the tenant for the request host to the context.
// Unknown hosts get the fallback tenant; they are not an error.
func ResolveTenant(resolver *tenancy.Resolver, m *metrics.TenancyMetrics, trustForwarded bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := RequestHost(r, trustForwarded)
			d, known := resolver.Lookup(host)
			m.ObserveResolution(resolver.Mode(host).String(), known)

			ctx := tenancy.WithTenant(r.Context(), host, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantOrigins reports whether an Origin header names a registered tenant
// host, so every clinic portal can call the API without listing it twice.
func TenantOrigins(resolver *tenancy.Resolver) func(origin string) bool {
	return func(origin string) bool {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		_, known := resolver.Lookup(normalizeHost(u.Hostname()))
		return known
	}
}
