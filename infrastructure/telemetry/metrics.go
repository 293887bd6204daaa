package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"
)

// Scan engine metrics. Registered on the default registry at init.
var (
	ScansStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depsentry_scans_started_total",
		Help: "Number of scan invocations started.",
	})

	ScansCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depsentry_scans_completed_total",
		Help: "Number of scan invocations completed, by outcome.",
	}, []string{"outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depsentry_cache_hits_total",
		Help: "Number of scans answered from the result cache.",
	})

	RegistryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depsentry_registry_requests_total",
		Help: "Outbound requests to the vulnerability registry, by endpoint.",
	}, []string{"endpoint"})

	DetailFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depsentry_detail_fetch_failures_total",
		Help: "Phase-2 detail fetches that were skipped after failing.",
	})
)

// StartMetricsServer exposes Prometheus metrics on addr in the background.
func StartMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("[telemetry] metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warnf("[telemetry] metrics server stopped: %v", err)
		}
	}()
}
