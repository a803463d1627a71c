package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusConfig holds Prometheus server configuration.
type PrometheusConfig struct {
	Enabled bool
	Host    string
	Port    int
	Path    string
}

// NewHandler builds the http.Handler that serves the collector's
// counters in Prometheus exposition format, using a private registry
// so dabcore never pollutes prometheus.DefaultRegisterer.
func NewHandler(c *Collector) http.Handler {
	reg := prometheus.NewRegistry()
	c.Register(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
