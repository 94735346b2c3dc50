package source

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-tenancy/internal/observability/metrics"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

var reloadTracer = otel.Tracer("clinic.internal.tenancy.source")

// Reloader periodically reloads the registry from a source and swaps it into
// the resolver. A failed load keeps the last good registry in place.
type Reloader struct {
	source   Source
	resolver *tenancy.Resolver
	metrics  *metrics.TenancyMetrics
	logger   *logging.Logger
	interval time.Duration
}

func NewReloader(src Source, resolver *tenancy.Resolver, m *metrics.TenancyMetrics, logger *logging.Logger) *Reloader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reloader{
		source:   src,
		resolver: resolver,
		metrics:  m,
		logger:   logger,
		interval: time.Minute,
	}
}

func (r *Reloader) WithInterval(d time.Duration) *Reloader {
	if d > 0 {
		r.interval = d
	}
	return r
}

// SourceName names the source reloads read from.
func (r *Reloader) SourceName() string {
	return r.source.Name()
}

// ReloadNow loads the registry once and swaps it in on success.
func (r *Reloader) ReloadNow(ctx context.Context) error {
	ctx, span := reloadTracer.Start(ctx, "tenancy.registry.reload")
	defer span.End()
	span.SetAttributes(attribute.String("registry.source", r.source.Name()))

	start := time.Now()
	reg, err := r.source.Load(ctx)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		r.metrics.ObserveReload(r.source.Name(), "error", elapsed)
		r.logger.Warn("tenant registry reload failed; keeping current registry",
			"source", r.source.Name(),
			"error", err,
		)
		return err
	}

	prev := r.resolver.Swap(reg)
	r.metrics.ObserveReload(r.source.Name(), "ok", elapsed)
	r.metrics.SetRegistrySize(reg.Len())
	span.SetAttributes(attribute.Int("registry.tenants", reg.Len()))
	r.logger.Info("tenant registry reloaded",
		"source", r.source.Name(),
		"tenants", reg.Len(),
		"previous_tenants", prev.Len(),
		"root_host", reg.RootHost(),
	)
	return nil
}

// Run reloads on every tick until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.ReloadNow(ctx)
		}
	}
}
