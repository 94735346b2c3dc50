package tenancy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

// RegistryReloader reloads the registry on demand.
type RegistryReloader interface {
	ReloadNow(ctx context.Context) error
	SourceName() string
}

// Handler serves tenant lookups for the request host. It expects the
// ResolveTenant middleware to have stored the host in the request context.
type Handler struct {
	resolver *Resolver
	reloader RegistryReloader
	logger   *logging.Logger
}

// NewHandler creates a tenant HTTP handler. reloader may be nil when the
// registry is static.
func NewHandler(resolver *Resolver, reloader RegistryReloader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		resolver: resolver,
		reloader: reloader,
		logger:   logger,
	}
}

// TenantResponse describes the portal context of one host.
type TenantResponse struct {
	Host           string     `json:"host"`
	Known          bool       `json:"known"`
	Mode           Mode       `json:"mode"`
	Tenant         Descriptor `json:"tenant"`
	APIBaseURL     string     `json:"api_base_url"`
	FrontendOrigin string     `json:"frontend_origin"`
	PaymentURLs    ReturnURLs `json:"payment_urls"`
}

// Describe answers every resolver question for host in one value.
func (h *Handler) Describe(host string) TenantResponse {
	d, known := h.resolver.Lookup(host)
	return TenantResponse{
		Host:           host,
		Known:          known,
		Mode:           h.resolver.Mode(host),
		Tenant:         d,
		APIBaseURL:     h.resolver.APIBaseURL(host),
		FrontendOrigin: h.resolver.FrontendOrigin(host),
		PaymentURLs:    h.resolver.PaymentReturnURLs(host),
	}
}

// GetTenant returns the tenant for the request host.
// GET /api/tenant
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	host, _ := HostFromContext(r.Context())
	h.writeJSON(w, http.StatusOK, h.Describe(host))
}

// SummaryResponse is the global admin overview of registered clinics.
type SummaryResponse struct {
	TotalClinics int      `json:"total_clinics"`
	ClinicNames  []string `json:"clinic_names"`
	Mode         Mode     `json:"mode"`
}

// GetSummary lists the registered clinics. Only the global admin host may ask.
// GET /api/tenants/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	host, _ := HostFromContext(r.Context())
	if !h.resolver.IsGlobalAdmin(host) {
		http.Error(w, `{"error": "global admin host required"}`, http.StatusForbidden)
		return
	}

	clinics := h.resolver.Registry().Clinics()
	names := make([]string, 0, len(clinics))
	for _, c := range clinics {
		names = append(names, c.DisplayName)
	}
	h.writeJSON(w, http.StatusOK, SummaryResponse{
		TotalClinics: len(clinics),
		ClinicNames:  names,
		Mode:         ModeGlobalAdmin,
	})
}

// ReloadRegistry forces a registry reload from the configured source.
// POST /admin/registry/reload
func (h *Handler) ReloadRegistry(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		http.Error(w, `{"error": "registry reload not configured"}`, http.StatusServiceUnavailable)
		return
	}
	if err := h.reloader.ReloadNow(r.Context()); err != nil {
		h.logger.Error("manual registry reload failed", "source", h.reloader.SourceName(), "error", err)
		http.Error(w, `{"error": "registry reload failed"}`, http.StatusBadGateway)
		return
	}

	reg := h.resolver.Registry()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "reloaded",
		"source":    h.reloader.SourceName(),
		"tenants":   reg.Len(),
		"root_host": reg.RootHost(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
