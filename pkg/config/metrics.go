package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/datavault/pkg/metrics"
)

// MetricsResult carries the outcome of metrics initialization.
type MetricsResult struct {
	// Server is the metrics HTTP server, nil when metrics are disabled.
	// The caller owns starting and shutting it down.
	Server *http.Server
}

// InitializeMetrics sets up the Prometheus registry and metrics HTTP server
// when metrics are enabled. When disabled, nothing is registered and
// collection has zero overhead.
func InitializeMetrics(cfg *Config) MetricsResult {
	if !cfg.Metrics.Enabled {
		return MetricsResult{}
	}

	metrics.InitRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	return MetricsResult{
		Server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}
