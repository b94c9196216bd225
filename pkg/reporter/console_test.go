package reporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer

	c := NewConsole(&buf)
	c.SuiteEntered(report.SuiteEvent{Name: "Math", Path: []string{"Math"}})
	c.TestSettled(report.TestEvent{
		Name:     "add",
		Depth:    1,
		Result:   report.ResultSuccess,
		Duration: 1500 * time.Microsecond,
	})
	c.TestSettled(report.TestEvent{
		Name:     "sub",
		Depth:    1,
		Result:   report.ResultFailure,
		Reason:   "bad",
		Failure:  report.FailureTest,
		Duration: 2 * time.Millisecond,
	})
	c.TestSettled(report.TestEvent{Name: "mul", Depth: 1, Result: report.ResultSkipped})
	c.SuiteEntered(report.SuiteEvent{Name: "Nested", Depth: 1})
	c.HookFailed(report.HookEvent{Suite: "Nested", Depth: 1, Hook: "after-all", Reason: "cleanup"})
	c.SuiteExited(report.SuiteEvent{Name: "Nested", Depth: 1, Result: report.ResultFailure})
	c.SuiteExited(report.SuiteEvent{Name: "Math", Result: report.ResultFailure, NumberOfTests: 3})

	expected := "Math\n" +
		"  ✓ add (1.5ms)\n" +
		"  ✗ sub (2ms)\n" +
		"    test: bad\n" +
		"  - mul (skipped)\n" +
		"  Nested\n" +
		"    ! after-all hook failed: cleanup\n" +
		"\n" +
		"Math: 3 tests, failure\n"

	assert.Equal(t, expected, buf.String())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{in: 0, expected: "0s"},
		{in: 1234 * time.Nanosecond, expected: "1µs"},
		{in: 12345 * time.Microsecond, expected: "12.3ms"},
		{in: 2345 * time.Millisecond, expected: "2.345s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.in))
		})
	}
}
