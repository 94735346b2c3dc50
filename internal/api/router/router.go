package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/wolfman30/clinic-tenancy/internal/http/middleware"
	"github.com/wolfman30/clinic-tenancy/internal/observability/metrics"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger        *logging.Logger
	Resolver      *tenancy.Resolver
	TenantHandler *tenancy.Handler
	Metrics       *metrics.TenancyMetrics

	MetricsHandler  http.Handler
	AdminAuthSecret string
	// AdminRateLimiter throttles /admin routes per client IP (optional).
	AdminRateLimiter *httpmiddleware.RateLimiter

	CORSAllowedOrigins []string
	// CORSAllowTenantOrigins admits every registered tenant host as a CORS
	// origin in addition to CORSAllowedOrigins.
	CORSAllowTenantOrigins bool
	TrustForwardedHost     bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	var tenantOrigins func(string) bool
	if cfg.CORSAllowTenantOrigins {
		tenantOrigins = httpmiddleware.TenantOrigins(cfg.Resolver)
	}
	if len(cfg.CORSAllowedOrigins) > 0 || tenantOrigins != nil {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins, tenantOrigins))
	}
	// Tenant resolution wraps the request logger so log lines carry the host.
	r.Use(httpmiddleware.ResolveTenant(cfg.Resolver, cfg.Metrics, cfg.TrustForwardedHost))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.TenantHandler != nil {
			public.Route("/api", func(api chi.Router) {
				api.Get("/tenant", cfg.TenantHandler.GetTenant)
				api.Get("/tenants/summary", cfg.TenantHandler.GetSummary)
			})
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" && cfg.TenantHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			if cfg.AdminRateLimiter != nil {
				admin.Use(httpmiddleware.RateLimit(cfg.AdminRateLimiter))
			}
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret, cfg.Logger))
			admin.Post("/registry/reload", cfg.TenantHandler.ReloadRegistry)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
