package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petermazzocco/interior-admin/internal/catalog"
	"github.com/petermazzocco/interior-admin/models"
)

// Metrics counts catalog intents and asset host calls.
type Metrics struct {
	registry   *prometheus.Registry
	intents    *prometheus.CounterVec
	assetCalls *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interior",
			Subsystem: "catalog",
			Name:      "intents_total",
			Help:      "Catalog intents by collection, operation and outcome.",
		}, []string{"kind", "op", "state"}),
		assetCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interior",
			Subsystem: "assets",
			Name:      "calls_total",
			Help:      "Asset host calls by operation and result.",
		}, []string{"op", "result"}),
	}
	m.registry.MustRegister(
		m.intents,
		m.assetCalls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Intent(kind models.Kind, op string, state catalog.State) {
	m.intents.WithLabelValues(string(kind), op, string(state)).Inc()
}

func (m *Metrics) AssetCall(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.assetCalls.WithLabelValues(op, result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
