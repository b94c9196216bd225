package reporter

import (
	"sync"
	"testing"
	"time"

	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress(t *testing.T) {
	p := NewProgress()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return start }

	snap := p.Snapshot()
	assert.Equal(t, StatePending, snap.State)
	assert.Nil(t, snap.StartedAt)

	_, ok := p.Report()
	assert.False(t, ok)

	p.SuiteEntered(report.SuiteEvent{Name: "Math"})
	p.SuiteEntered(report.SuiteEvent{Name: "Nested", Depth: 1})
	p.TestSettled(report.TestEvent{Name: "add", Path: []string{"Math", "Nested", "add"}, Result: report.ResultSuccess})
	p.TestSettled(report.TestEvent{
		Name:     "slow",
		Path:     []string{"Math", "Nested", "slow"},
		Result:   report.ResultFailure,
		Reason:   "test has timed out",
		Failure:  report.FailureTimeout,
		Duration: 50 * time.Millisecond,
	})

	snap = p.Snapshot()
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, "Math/Nested", snap.CurrentSuite)
	require.NotNil(t, snap.StartedAt)
	assert.Equal(t, start, *snap.StartedAt)
	assert.Equal(t, report.Stats{Total: 2, Passed: 1, Failed: 1, TimedOut: 1}, snap.Stats)
	require.Len(t, snap.Failures, 1)
	assert.Equal(t, FailedTest{
		Path:     "Math/Nested/slow",
		Reason:   "test has timed out",
		Failure:  report.FailureTimeout,
		Duration: 50,
	}, snap.Failures[0])

	p.SuiteExited(report.SuiteEvent{Name: "Nested", Depth: 1})
	assert.Equal(t, "Math", p.Snapshot().CurrentSuite)

	final := sampleReport()
	p.Finish(final)

	snap = p.Snapshot()
	assert.Equal(t, StateFinished, snap.State)
	assert.Equal(t, "failure", snap.Result)
	assert.Equal(t, final.Stats(), snap.Stats)
	assert.Empty(t, snap.CurrentSuite)

	got, ok := p.Report()
	require.True(t, ok)
	assert.Same(t, final, got)
}

func TestProgress_SnapshotIsACopy(t *testing.T) {
	p := NewProgress()
	p.TestSettled(report.TestEvent{Name: "a", Result: report.ResultFailure, Reason: "x"})

	snap := p.Snapshot()
	snap.Failures[0].Reason = "changed"

	assert.Equal(t, "x", p.Snapshot().Failures[0].Reason)
}

func TestProgress_ConcurrentReads(t *testing.T) {
	p := NewProgress()

	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				_ = p.Snapshot()
			}
		}()
	}

	for j := 0; j < 100; j++ {
		p.TestSettled(report.TestEvent{Name: "t", Result: report.ResultSuccess})
	}

	wg.Wait()

	assert.Equal(t, 100, p.Snapshot().Stats.Passed)
}
