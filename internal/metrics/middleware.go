package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Gateway HTTP metrics, labelled by chi route pattern so case uuids in
// paths do not explode cardinality.
var (
	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nyaybodh",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route", "status"},
	)

	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nyaybodh",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of gateway requests",
		},
		[]string{"method", "route", "status"},
	)

	GatewayInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nyaybodh",
			Subsystem: "gateway",
			Name:      "requests_in_flight",
			Help:      "Gateway requests currently being served",
		},
	)
)

var gatewayOnce sync.Once

// RegisterGatewayMetrics registers the gateway HTTP metrics. Safe to call more than once.
func RegisterGatewayMetrics() {
	gatewayOnce.Do(func() {
		prometheus.MustRegister(GatewayRequestDuration)
		prometheus.MustRegister(GatewayRequestsTotal)
		prometheus.MustRegister(GatewayInFlight)
	})
}

// Middleware records duration, count and concurrency of gateway requests.
func Middleware() func(next http.Handler) http.Handler {
	RegisterGatewayMetrics()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			GatewayInFlight.Inc()
			defer GatewayInFlight.Dec()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routeLabel(r)
			code := strconv.Itoa(status)

			GatewayRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
			GatewayRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
		})
	}
}

// routeLabel returns the matched chi pattern, e.g. "/cases/{uuid}/pdf".
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unmatched"
	}
	return rctx.RoutePattern()
}
