package capability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for discovery and resolution.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	discoveries   *prometheus.CounterVec
	scans         *prometheus.CounterVec
	discovered    *prometheus.GaugeVec
	resolveErrors prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		discoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capability_discovery_total",
				Help: "Capability lookups by cache result.",
			},
			[]string{"result"},
		),
		scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capability_module_scans_total",
				Help: "Number of times a module's types were enumerated.",
			},
			[]string{"module"},
		),
		discovered: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "capability_discovered_types",
				Help: "Number of concrete types discovered per capability.",
			},
			[]string{"capability"},
		),
		resolveErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "capability_resolve_errors_total",
				Help: "Number of failed instance builds.",
			},
		),
	}
	reg.MustRegister(m.discoveries, m.scans, m.discovered, m.resolveErrors)
	return m
}

// Scans returns the module scan counter, for tests and dashboards.
func (m *Metrics) Scans(module string) prometheus.Counter {
	return m.scans.WithLabelValues(module)
}

func (m *Metrics) hit() {
	if m != nil {
		m.discoveries.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.discoveries.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) scanned(module string) {
	if m != nil {
		m.scans.WithLabelValues(module).Inc()
	}
}

func (m *Metrics) found(capability string, n int) {
	if m != nil {
		m.discovered.WithLabelValues(capability).Set(float64(n))
	}
}

func (m *Metrics) resolveFailed() {
	if m != nil {
		m.resolveErrors.Inc()
	}
}
