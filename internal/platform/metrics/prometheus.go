package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/wanderlust/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry              *prometheus.Registry
	ListingsCreatedTotal  prometheus.Counter
	ListingsUpdatedTotal  prometheus.Counter
	ListingsDeletedTotal  prometheus.Counter
	SideEffectErrorsTotal *prometheus.CounterVec
	HTTPRequestLatency    *prometheus.HistogramVec
}

// NewMetricsManager creates the collectors on a private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	listingsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	})
	listingsUpdated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_updated_total",
		Help:      "Total number of listings updated.",
	})
	listingsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_deleted_total",
		Help:      "Total number of listings deleted.",
	})
	sideEffectErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "side_effect_errors_total",
		Help:      "Non-fatal failures of secondary operations, by kind.",
	}, []string{"effect"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	registry.MustRegister(
		listingsCreated,
		listingsUpdated,
		listingsDeleted,
		sideEffectErrors,
		latency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:              registry,
		ListingsCreatedTotal:  listingsCreated,
		ListingsUpdatedTotal:  listingsUpdated,
		ListingsDeletedTotal:  listingsDeleted,
		SideEffectErrorsTotal: sideEffectErrors,
		HTTPRequestLatency:    latency,
	}
}

// ObserveRequest records one HTTP request.
func (m *MetricsManager) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// NewMetricsServer returns the HTTP server exposing /metrics for registry.
func NewMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server configured", zap.String("port", port), zap.String("path", "/metrics"))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
