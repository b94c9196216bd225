package reporter

import (
	"testing"
	"time"

	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "")

	m.SuiteEntered(report.SuiteEvent{Name: "Math"})
	m.TestSettled(report.TestEvent{Name: "add", Result: report.ResultSuccess, Duration: time.Millisecond})
	m.TestSettled(report.TestEvent{Name: "sub", Result: report.ResultFailure, Failure: report.FailureTest})
	m.TestSettled(report.TestEvent{Name: "slow", Result: report.ResultFailure, Failure: report.FailureTimeout})
	m.TestSettled(report.TestEvent{Name: "mul", Result: report.ResultSkipped})

	assert.InDelta(t, 1, testutil.ToFloat64(m.running), 0)

	m.HookFailed(report.HookEvent{Suite: "Math", Hook: "after-all"})
	m.SuiteExited(report.SuiteEvent{Name: "Math", Result: report.ResultFailure})

	assert.InDelta(t, 1, testutil.ToFloat64(m.tests.WithLabelValues("success", "")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.tests.WithLabelValues("failure", "test")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.tests.WithLabelValues("failure", "timeout")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.tests.WithLabelValues("skipped", "")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.hookFailures.WithLabelValues("after-all")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.suites.WithLabelValues("failure")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.running), 0)

	// Skipped tests are not observed.
	assert.Equal(t, 2, testutil.CollectAndCount(m.durations))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}

	assert.Contains(t, names, "testoor_tests_total")
	assert.Contains(t, names, "testoor_test_duration_seconds")
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg, "dup")

	assert.Panics(t, func() { NewMetrics(reg, "dup") })
}
