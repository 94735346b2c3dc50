package tenancy

import "context"

type ctxKey string

const (
	tenantKey ctxKey = "clinic.tenant"
	hostKey   ctxKey = "clinic.host"
)

// WithTenant stores the resolved descriptor and the host it was resolved from.
func WithTenant(ctx context.Context, host string, d Descriptor) context.Context {
	ctx = context.WithValue(ctx, hostKey, host)
	return context.WithValue(ctx, tenantKey, d)
}

// TenantFromContext extracts the resolved descriptor if present.
func TenantFromContext(ctx context.Context) (Descriptor, bool) {
	d, ok := ctx.Value(tenantKey).(Descriptor)
	return d, ok && d.HostKey != ""
}

// HostFromContext returns the request host the tenant was resolved from.
func HostFromContext(ctx context.Context) (string, bool) {
	host, ok := ctx.Value(hostKey).(string)
	return host, ok && host != ""
}
