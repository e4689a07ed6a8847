package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webhook_sandbox"

// Metrics holds the sandbox's collectors on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	samplesGenerated  *prometheus.CounterVec
	deliveries        *prometheus.CounterVec
	deliveryDurations prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samplesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_generated_total",
			Help:      "Sample notifications generated, by kind.",
		}, []string{"kind"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Delivery attempts to registered endpoints, by outcome.",
		}, []string{"status"}),
		deliveryDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Time spent posting a sample to an endpoint.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.samplesGenerated,
		m.deliveries,
		m.deliveryDurations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) SampleGenerated(kind string) {
	m.samplesGenerated.WithLabelValues(kind).Inc()
}

func (m *Metrics) DeliveryAttempted(status string, seconds float64) {
	m.deliveries.WithLabelValues(status).Inc()
	m.deliveryDurations.Observe(seconds)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
