// Package reporter renders run events and reports for humans and machines.
package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ethpandaops/testoor/pkg/report"
)

// Console prints an indented line for every suite and test as the run
// progresses.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// Ensure interface compliance.
var _ report.Observer = (*Console)(nil)

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// SuiteEntered prints the suite name.
func (c *Console) SuiteEntered(ev report.SuiteEvent) {
	c.printf(ev.Depth, "%s", ev.Name)
}

// SuiteExited prints the outcome line once the root suite is done.
func (c *Console) SuiteExited(ev report.SuiteEvent) {
	if ev.Depth != 0 {
		return
	}

	c.printf(0, "")
	c.printf(0, "%s: %d tests, %s", ev.Name, ev.NumberOfTests, ev.Result)
}

// TestSettled prints the test outcome.
func (c *Console) TestSettled(ev report.TestEvent) {
	switch ev.Result {
	case report.ResultSuccess:
		c.printf(ev.Depth, "✓ %s (%s)", ev.Name, formatDuration(ev.Duration))
	case report.ResultFailure:
		c.printf(ev.Depth, "✗ %s (%s)", ev.Name, formatDuration(ev.Duration))
		c.printf(ev.Depth+1, "%s: %s", ev.Failure, ev.Reason)
	default:
		c.printf(ev.Depth, "- %s (skipped)", ev.Name)
	}
}

// HookFailed prints the hook failure under its suite.
func (c *Console) HookFailed(ev report.HookEvent) {
	c.printf(ev.Depth+1, "! %s hook failed: %s", ev.Hook, ev.Reason)
}

func (c *Console) printf(depth int, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf(format, args...)
	if line == "" {
		fmt.Fprintln(c.w)

		return
	}

	fmt.Fprintf(c.w, "%s%s\n", strings.Repeat("  ", depth), line)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(100 * time.Microsecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}
