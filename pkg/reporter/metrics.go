package reporter

import (
	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "testoor"

// Metrics records run events as prometheus metrics.
type Metrics struct {
	tests        *prometheus.CounterVec
	durations    *prometheus.HistogramVec
	suites       *prometheus.CounterVec
	hookFailures *prometheus.CounterVec
	running      prometheus.Gauge
}

// Ensure interface compliance.
var _ report.Observer = (*Metrics)(nil)

// NewMetrics registers the run metrics with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	factory := promauto.With(reg)

	return &Metrics{
		tests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tests_total",
			Help:      "Count of settled tests",
		}, []string{
			"result",
			"failure",
		}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "test_duration_seconds",
			Help:      "Duration of executed tests",
			Buckets:   prometheus.DefBuckets,
		}, []string{
			"result",
		}),
		suites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suites_total",
			Help:      "Count of finished suites",
		}, []string{
			"result",
		}),
		hookFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hook_failures_total",
			Help:      "Count of failed before-all and after-all hooks",
		}, []string{
			"hook",
		}),
		running: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "suites_running",
			Help:      "Number of suites entered and not yet exited",
		}),
	}
}

// SuiteEntered implements report.Observer.
func (m *Metrics) SuiteEntered(report.SuiteEvent) {
	m.running.Inc()
}

// SuiteExited implements report.Observer.
func (m *Metrics) SuiteExited(ev report.SuiteEvent) {
	m.running.Dec()
	m.suites.WithLabelValues(string(ev.Result)).Inc()
}

// TestSettled implements report.Observer.
func (m *Metrics) TestSettled(ev report.TestEvent) {
	m.tests.WithLabelValues(string(ev.Result), string(ev.Failure)).Inc()

	if ev.Result != report.ResultSkipped {
		m.durations.WithLabelValues(string(ev.Result)).Observe(ev.Duration.Seconds())
	}
}

// HookFailed implements report.Observer.
func (m *Metrics) HookFailed(ev report.HookEvent) {
	m.hookFailures.WithLabelValues(ev.Hook).Inc()
}
