package tenancy

import (
	"net"
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	DefaultDevSuffix       = "localhost"
	DefaultDevPort         = 8000
	DefaultFrontendDevPort = 5174
)

// Rules are the static, load-time inputs of URL derivation and mode detection.
type Rules struct {
	// DevSuffix identifies local development hosts: the suffix itself and any
	// subdomain of it.
	DevSuffix string
	// DevPort is the port the backend API listens on in development.
	DevPort int
	// FrontendDevPort is the port the portal SPA is served on in development.
	FrontendDevPort int
	// Domains are the root domains whose subdomains are clinic hosts.
	// Defaults to DevSuffix alone.
	Domains []string
}

// DefaultRules returns the development defaults.
func DefaultRules() Rules {
	return Rules{
		DevSuffix:       DefaultDevSuffix,
		DevPort:         DefaultDevPort,
		FrontendDevPort: DefaultFrontendDevPort,
		Domains:         []string{DefaultDevSuffix},
	}
}

func (r Rules) withDefaults() Rules {
	r.DevSuffix = normalizeDomain(r.DevSuffix)
	if r.DevSuffix == "" {
		r.DevSuffix = DefaultDevSuffix
	}
	if r.DevPort <= 0 {
		r.DevPort = DefaultDevPort
	}
	if r.FrontendDevPort <= 0 {
		r.FrontendDevPort = DefaultFrontendDevPort
	}
	domains := make([]string, 0, len(r.Domains))
	for _, d := range r.Domains {
		if d = normalizeDomain(d); d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		domains = []string{r.DevSuffix}
	}
	r.Domains = domains
	return r
}

// Mode is the portal context a host runs in. Exactly one mode holds per host.
type Mode int

const (
	ModeUnrecognized Mode = iota
	ModeGlobalAdmin
	ModeClinic
)

func (m Mode) String() string {
	switch m {
	case ModeGlobalAdmin:
		return "global_admin"
	case ModeClinic:
		return "clinic"
	default:
		return "unrecognized"
	}
}

// MarshalText renders the mode as its string name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name. Unknown names decode as ModeUnrecognized.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "global_admin":
		*m = ModeGlobalAdmin
	case "clinic":
		*m = ModeClinic
	default:
		*m = ModeUnrecognized
	}
	return nil
}

// ReturnURLs are the portal pages a payment checkout redirects back to.
type ReturnURLs struct {
	Success string `json:"success"`
	Cancel  string `json:"cancel"`
}

// Resolver answers tenant questions for an explicit host. Every method is a
// pure function of the host and the current registry snapshot.
type Resolver struct {
	registry atomic.Pointer[Registry]
	rules    Rules
}

// NewResolver panics on a nil registry: a resolver without one is a wiring bug.
func NewResolver(reg *Registry, rules Rules) *Resolver {
	if reg == nil {
		panic("tenancy: resolver requires a registry")
	}
	r := &Resolver{rules: rules.withDefaults()}
	r.registry.Store(reg)
	return r
}

// Registry returns the registry snapshot currently in use.
func (r *Resolver) Registry() *Registry {
	return r.registry.Load()
}

// Rules returns the effective rules, defaults applied.
func (r *Resolver) Rules() Rules {
	return r.rules
}

// Swap atomically replaces the registry. Concurrent readers see either the
// old or the new registry, never a mix. A nil registry is ignored.
func (r *Resolver) Swap(reg *Registry) *Registry {
	if reg == nil {
		return r.registry.Load()
	}
	return r.registry.Swap(reg)
}

// Resolve returns the descriptor registered for host, or the fallback.
func (r *Resolver) Resolve(host string) Descriptor {
	d, _ := r.Lookup(host)
	return d
}

// Lookup is Resolve that also reports whether host was registered. Unknown
// hosts still get the fallback descriptor.
func (r *Resolver) Lookup(host string) (Descriptor, bool) {
	reg := r.registry.Load()
	if d, ok := reg.Get(host); ok {
		return d, true
	}
	return reg.Fallback(), false
}

// IsGlobalAdmin reports whether host is the bare root host.
func (r *Resolver) IsGlobalAdmin(host string) bool {
	return host != "" && host == r.registry.Load().RootHost()
}

// IsMultiTenant reports whether host is a clinic subdomain of a recognized
// domain. The root host and foreign hosts are not.
func (r *Resolver) IsMultiTenant(host string) bool {
	if host == "" || r.IsGlobalAdmin(host) {
		return false
	}
	for _, d := range r.rules.Domains {
		if isSubdomain(host, d) {
			return true
		}
	}
	return false
}

// Mode classifies host into exactly one portal mode.
func (r *Resolver) Mode(host string) Mode {
	switch {
	case r.IsGlobalAdmin(host):
		return ModeGlobalAdmin
	case r.IsMultiTenant(host):
		return ModeClinic
	default:
		return ModeUnrecognized
	}
}

// UncoveredHosts lists registered clinic hosts that no recognized domain
// covers. They resolve to their own descriptor but classify as
// ModeUnrecognized, which usually means TENANT_DOMAINS is incomplete.
func (r *Resolver) UncoveredHosts() []string {
	var out []string
	for _, d := range r.registry.Load().Clinics() {
		if !r.IsMultiTenant(d.HostKey) {
			out = append(out, d.HostKey)
		}
	}
	return out
}

// IsDevHost reports whether host is served by a local development backend.
func (r *Resolver) IsDevHost(host string) bool {
	return host == r.rules.DevSuffix || isSubdomain(host, r.rules.DevSuffix)
}

// APIBaseURL derives the backend API root for host: plain HTTP on the dev
// port for development hosts, HTTPS on the default port otherwise. The host
// is copied verbatim, never percent-escaped.
func (r *Resolver) APIBaseURL(host string) string {
	if r.IsDevHost(host) {
		return "http://" + net.JoinHostPort(host, strconv.Itoa(r.rules.DevPort)) + "/api"
	}
	return "https://" + host + "/api"
}

// FrontendOrigin is the origin the portal itself is served from on host.
func (r *Resolver) FrontendOrigin(host string) string {
	if r.IsDevHost(host) {
		return "http://" + net.JoinHostPort(host, strconv.Itoa(r.rules.FrontendDevPort))
	}
	return "https://" + host
}

// PaymentReturnURLs builds the checkout success and cancel pages for host.
func (r *Resolver) PaymentReturnURLs(host string) ReturnURLs {
	origin := r.FrontendOrigin(host)
	return ReturnURLs{
		Success: origin + "/payment-success",
		Cancel:  origin + "/payment-cancel",
	}
}

func normalizeDomain(d string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
}

func isSubdomain(host, domain string) bool {
	return len(host) > len(domain)+1 && strings.HasSuffix(host, "."+domain)
}
