package reporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/stretchr/testify/assert"
)

func sampleReport() *report.Report {
	inner := report.NewComposite("Nested")
	inner.Add(report.NewFailure("slow", "test has timed out", report.FailureTimeout, 60*time.Millisecond))

	root := report.NewComposite("Math")
	root.Add(report.NewSuccess("add", time.Millisecond))
	root.Add(report.NewFailure("sub", "bad", report.FailureTest, time.Millisecond))
	root.Add(report.NewSkipped("mul"))
	root.Add(inner)

	return root
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer

	WriteSummary(&buf, sampleReport(), 80*time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"Test results",
		"Math",
		"add",
		"sub",
		"bad",
		"mul",
		"Nested",
		"slow",
		"TOTAL",
		"1 timed out",
	} {
		assert.Contains(t, out, want)
	}
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "✓ pass", resultString(report.ResultSuccess))
	assert.Equal(t, "✗ fail", resultString(report.ResultFailure))
	assert.Equal(t, "- skip", resultString(report.ResultSkipped))
	assert.Empty(t, timedOut(report.Stats{}))
}
