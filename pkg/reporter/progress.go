package reporter

import (
	"strings"
	"sync"
	"time"

	"github.com/ethpandaops/testoor/pkg/report"
)

// Run states reported by Progress.
const (
	StatePending  = "pending"
	StateRunning  = "running"
	StateFinished = "finished"
)

// FailedTest is one failure recorded while the run progresses.
type FailedTest struct {
	Path     string             `json:"path"`
	Reason   string             `json:"reason"`
	Failure  report.FailureKind `json:"failure"`
	Duration float64            `json:"duration_ms"`
}

// Snapshot is the state of a run at one point in time.
type Snapshot struct {
	State        string       `json:"state"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	CurrentSuite string       `json:"current_suite,omitempty"`
	Result       string       `json:"result,omitempty"`
	Stats        report.Stats `json:"stats"`
	Failures     []FailedTest `json:"failures"`
}

// Progress tracks a run from its events. It is safe to read from other
// goroutines while the run writes to it.
type Progress struct {
	mu       sync.RWMutex
	snapshot Snapshot
	suites   []string
	final    *report.Report
	now      func() time.Time
}

// Ensure interface compliance.
var _ report.Observer = (*Progress)(nil)

// NewProgress creates a tracker in the pending state.
func NewProgress() *Progress {
	return &Progress{
		snapshot: Snapshot{State: StatePending},
		now:      time.Now,
	}
}

// SuiteEntered implements report.Observer.
func (p *Progress) SuiteEntered(ev report.SuiteEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.snapshot.State == StatePending {
		now := p.now()
		p.snapshot.State = StateRunning
		p.snapshot.StartedAt = &now
	}

	p.suites = append(p.suites, ev.Name)
	p.snapshot.CurrentSuite = strings.Join(p.suites, "/")
}

// SuiteExited implements report.Observer.
func (p *Progress) SuiteExited(report.SuiteEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.suites) > 0 {
		p.suites = p.suites[:len(p.suites)-1]
	}

	p.snapshot.CurrentSuite = strings.Join(p.suites, "/")
}

// TestSettled implements report.Observer.
func (p *Progress) TestSettled(ev report.TestEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snapshot.Stats.Total++

	switch ev.Result {
	case report.ResultSuccess:
		p.snapshot.Stats.Passed++
	case report.ResultFailure:
		p.snapshot.Stats.Failed++

		if ev.Failure == report.FailureTimeout {
			p.snapshot.Stats.TimedOut++
		}

		p.snapshot.Failures = append(p.snapshot.Failures, FailedTest{
			Path:     ev.PathString(),
			Reason:   ev.Reason,
			Failure:  ev.Failure,
			Duration: float64(ev.Duration) / float64(time.Millisecond),
		})
	default:
		p.snapshot.Stats.Skipped++
	}
}

// HookFailed implements report.Observer.
func (p *Progress) HookFailed(report.HookEvent) {}

// Finish records the final report. The statistics are taken from rep, which
// accounts for failed after-all hooks that rewrite already settled tests.
func (p *Progress) Finish(rep *report.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.final = rep
	p.snapshot.State = StateFinished
	p.snapshot.FinishedAt = &now
	p.snapshot.CurrentSuite = ""
	p.suites = nil

	if rep != nil {
		p.snapshot.Stats = rep.Stats()
		p.snapshot.Result = string(rep.Result())
	}
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := p.snapshot
	snap.Failures = make([]FailedTest, len(p.snapshot.Failures))
	copy(snap.Failures, p.snapshot.Failures)

	return snap
}

// Report returns the final report once Finish was called.
func (p *Progress) Report() (*report.Report, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.final, p.final != nil
}
