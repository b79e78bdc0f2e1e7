package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Module provides the prometheus instrumentation.
var Module = fx.Module("observability.metrics",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewFinanceMetrics),
)

type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return NewHTTPMetricsWith(prometheus.DefaultRegisterer)
}

func NewHTTPMetricsWith(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counts and latencies per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// FinanceMetrics counts ledger mutations and overdue sweeps.
type FinanceMetrics struct {
	SweeperRuns        prometheus.Counter
	SweeperClinicRows  prometheus.Counter
	SweeperPatientRows prometheus.Counter
	Mutations          *prometheus.CounterVec
}

func NewFinanceMetrics() *FinanceMetrics {
	return NewFinanceMetricsWith(prometheus.DefaultRegisterer)
}

func NewFinanceMetricsWith(reg prometheus.Registerer) *FinanceMetrics {
	factory := promauto.With(reg)
	return &FinanceMetrics{
		SweeperRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "finance_overdue_sweeps_total",
			Help: "Manual overdue sweeps executed.",
		}),
		SweeperClinicRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "finance_overdue_clinic_rows_total",
			Help: "Clinic ledger rows promoted to overdue.",
		}),
		SweeperPatientRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "finance_overdue_patient_rows_total",
			Help: "Patient ledger charges promoted to overdue.",
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_ledger_mutations_total",
			Help: "Ledger mutations by ledger and action.",
		}, []string{"ledger", "action"}),
	}
}
