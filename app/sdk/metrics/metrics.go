// Package metrics constructs the metrics the application will track.
package metrics

import (
	"context"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The promauto package registers collectors against
// a process wide registry so there isn't much choice here.
var m *metrics

// metrics represents the set of metrics we gather.
type metrics struct {
	goroutines  prometheus.Gauge
	requests    prometheus.Counter
	errors      prometheus.Counter
	panics      prometheus.Counter
	resolutions *prometheus.CounterVec
}

// init constructs the metrics value that will be used to capture metrics.
func init() {
	m = &metrics{
		goroutines: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "printdesk_goroutines",
			Help: "Current number of goroutines.",
		}),
		requests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "printdesk_requests_total",
			Help: "Total number of requests handled.",
		}),
		errors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "printdesk_errors_total",
			Help: "Total number of requests that resulted in an error.",
		}),
		panics: promauto.NewCounter(prometheus.CounterOpts{
			Name: "printdesk_panics_total",
			Help: "Total number of recovered panics.",
		}),
		resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "printdesk_context_resolutions_total",
			Help: "Total number of workgroup context resolutions by outcome.",
		}, []string{"outcome"}),
	}
}

// =============================================================================

type ctxKey int

const key ctxKey = 1

// Set sets the metrics data into the context.
func Set(ctx context.Context) context.Context {
	return context.WithValue(ctx, key, m)
}

// AddRequests increments the request counter and samples the goroutine
// count every hundred requests.
func AddRequests(ctx context.Context) {
	v, ok := ctx.Value(key).(*metrics)
	if !ok {
		return
	}

	v.requests.Inc()
	v.goroutines.Set(float64(runtime.NumGoroutine()))
}

// AddErrors increments the errors metric by 1.
func AddErrors(ctx context.Context) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.errors.Inc()
	}
}

// AddPanics increments the panics metric by 1.
func AddPanics(ctx context.Context) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.panics.Inc()
	}
}

// AddResolution counts a workgroup context resolution with its outcome,
// "resolved" or "failed".
func AddResolution(ctx context.Context, outcome string) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.resolutions.WithLabelValues(outcome).Inc()
	}
}
