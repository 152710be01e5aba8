package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the marketplace API's Prometheus collectors on a private
// registry.
type Manager struct {
	Registry            *prometheus.Registry
	CartMutationsTotal  *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	APIErrorsTotal      *prometheus.CounterVec
}

func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of successful cart mutations by operation.",
	}, []string{"operation"})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	apiErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by route and error type.",
	}, []string{"route", "error_type"})

	registry.MustRegister(
		cartMutations,
		httpRequests,
		httpDuration,
		apiErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:            registry,
		CartMutationsTotal:  cartMutations,
		HTTPRequestsTotal:   httpRequests,
		HTTPRequestDuration: httpDuration,
		APIErrorsTotal:      apiErrors,
	}
}

// CartMutation is safe to call on a nil Manager.
func (m *Manager) CartMutation(operation string) {
	if m == nil {
		return
	}
	m.CartMutationsTotal.WithLabelValues(operation).Inc()
}

func (m *Manager) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Manager) APIError(route, errorType string) {
	if m == nil {
		return
	}
	m.APIErrorsTotal.WithLabelValues(route, errorType).Inc()
}

// StartMetricsServer serves /metrics on its own port in a goroutine. It
// returns nil when no port is configured.
func StartMetricsServer(port string, log logger.Logger, registry *prometheus.Registry) *http.Server {
	if port == "" {
		log.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Prometheus metrics server starting on :%s/metrics", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Prometheus metrics server failed: %v", err)
		}
	}()

	return server
}
