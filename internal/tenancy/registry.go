package tenancy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyHost            = errors.New("host key is empty")
	ErrInvalidHost          = errors.New("host key must be a lowercase hostname without port")
	ErrDuplicateHost        = errors.New("duplicate host key")
	ErrNoFallback           = errors.New("fallback descriptor is not registered")
	ErrMultipleGlobalAdmins = errors.New("more than one global admin descriptor")
	ErrGlobalAdminNotRoot   = errors.New("global admin descriptor must be the root host")
)

// Registry is an immutable host -> descriptor table with a designated
// fallback entry. Build it with NewRegistry; it is safe for concurrent reads.
type Registry struct {
	tenants  map[string]Descriptor
	hosts    []string
	fallback string
}

// NewRegistry validates the descriptors and builds a registry whose fallback
// (root) entry is the one registered under fallbackHost.
func NewRegistry(fallbackHost string, descriptors ...Descriptor) (*Registry, error) {
	reg := &Registry{
		tenants:  make(map[string]Descriptor, len(descriptors)),
		fallback: fallbackHost,
	}

	var globalAdmin string
	for _, d := range descriptors {
		if err := validateHost(d.HostKey); err != nil {
			return nil, fmt.Errorf("tenancy: descriptor %q: %w", d.DisplayName, err)
		}
		if _, dup := reg.tenants[d.HostKey]; dup {
			return nil, fmt.Errorf("tenancy: %q: %w", d.HostKey, ErrDuplicateHost)
		}
		if d.IsGlobalAdmin {
			if globalAdmin != "" {
				return nil, fmt.Errorf("tenancy: %q and %q: %w", globalAdmin, d.HostKey, ErrMultipleGlobalAdmins)
			}
			globalAdmin = d.HostKey
		}
		reg.tenants[d.HostKey] = d
		reg.hosts = append(reg.hosts, d.HostKey)
	}

	if _, ok := reg.tenants[fallbackHost]; !ok || fallbackHost == "" {
		return nil, fmt.Errorf("tenancy: fallback %q: %w", fallbackHost, ErrNoFallback)
	}
	if globalAdmin != "" && globalAdmin != fallbackHost {
		return nil, fmt.Errorf("tenancy: %q (root %q): %w", globalAdmin, fallbackHost, ErrGlobalAdminNotRoot)
	}

	sort.Strings(reg.hosts)
	return reg, nil
}

// MustRegistry is NewRegistry for static configuration; it panics on error.
func MustRegistry(fallbackHost string, descriptors ...Descriptor) *Registry {
	reg, err := NewRegistry(fallbackHost, descriptors...)
	if err != nil {
		panic(err)
	}
	return reg
}

func validateHost(host string) error {
	if host == "" {
		return ErrEmptyHost
	}
	if host != strings.ToLower(host) || strings.ContainsAny(host, ":/ \t") {
		return fmt.Errorf("%q: %w", host, ErrInvalidHost)
	}
	return nil
}

// Get returns the descriptor registered under host, by exact match.
func (r *Registry) Get(host string) (Descriptor, bool) {
	d, ok := r.tenants[host]
	return d, ok
}

// Fallback returns the descriptor used for unregistered hosts.
func (r *Registry) Fallback() Descriptor {
	return r.tenants[r.fallback]
}

// RootHost is the host key of the fallback entry.
func (r *Registry) RootHost() string {
	return r.fallback
}

// GlobalAdmin returns the global admin descriptor when one is configured.
func (r *Registry) GlobalAdmin() (Descriptor, bool) {
	d := r.Fallback()
	return d, d.IsGlobalAdmin
}

// Tenants returns every descriptor ordered by host key.
func (r *Registry) Tenants() []Descriptor {
	out := make([]Descriptor, 0, len(r.hosts))
	for _, h := range r.hosts {
		out = append(out, r.tenants[h])
	}
	return out
}

// Clinics returns the descriptors served on clinic hosts, i.e. everything but
// the root entry.
func (r *Registry) Clinics() []Descriptor {
	out := make([]Descriptor, 0, len(r.hosts))
	for _, h := range r.hosts {
		if h == r.fallback {
			continue
		}
		out = append(out, r.tenants[h])
	}
	return out
}

// Len reports the number of registered descriptors, fallback included.
func (r *Registry) Len() int {
	return len(r.tenants)
}
