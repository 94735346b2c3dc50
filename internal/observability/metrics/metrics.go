package metrics

import "github.com/prometheus/client_golang/prometheus"

// TenancyMetrics exposes counters/gauges for tenant resolution and registry reloads.
type TenancyMetrics struct {
	resolutionsTotal *prometheus.CounterVec
	reloadsTotal     *prometheus.CounterVec
	reloadLatency    *prometheus.HistogramVec
	registryTenants  prometheus.Gauge
}

func NewTenancyMetrics(reg prometheus.Registerer) *TenancyMetrics {
	m := &TenancyMetrics{
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "tenancy",
			Name:      "resolutions_total",
			Help:      "Total host resolutions by portal mode and whether the host was registered",
		}, []string{"mode", "known"}),
		reloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "tenancy",
			Name:      "registry_reloads_total",
			Help:      "Total registry reload attempts",
		}, []string{"source", "status"}),
		reloadLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "tenancy",
			Name:      "registry_reload_seconds",
			Help:      "Latency of loading the registry from its source",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		registryTenants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "tenancy",
			Name:      "registry_tenants",
			Help:      "Descriptors in the active registry, fallback included",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.resolutionsTotal, m.reloadsTotal, m.reloadLatency, m.registryTenants)
	return m
}

func (m *TenancyMetrics) ObserveResolution(mode string, known bool) {
	if m == nil {
		return
	}
	label := "false"
	if known {
		label = "true"
	}
	m.resolutionsTotal.WithLabelValues(mode, label).Inc()
}

func (m *TenancyMetrics) ObserveReload(source, status string, seconds float64) {
	if m == nil {
		return
	}
	m.reloadsTotal.WithLabelValues(source, status).Inc()
	m.reloadLatency.WithLabelValues(source).Observe(seconds)
}

func (m *TenancyMetrics) SetRegistrySize(n int) {
	if m == nil {
		return
	}
	m.registryTenants.Set(float64(n))
}
