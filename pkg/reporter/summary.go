package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteSummary renders rep as a table with one row per suite and test and a
// totals footer. elapsed is the wall-clock time of the run.
func WriteSummary(w io.Writer, rep *report.Report, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Test results (%s)", units.HumanDuration(elapsed)))

	t.AppendHeader(table.Row{
		"Type", "Name", "Duration", "Tests", "Passed", "Failed", "Skipped", "Result", "Reason",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Name", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Reason", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	rep.Walk(func(path []string, node *report.Report) {
		name := strings.Repeat("  ", len(path)-1) + node.Name

		if node.IsLeaf() {
			t.AppendRow(table.Row{
				"",
				name,
				formatDuration(node.Duration),
				1,
				boolToInt(node.Kind == report.KindSuccess),
				boolToInt(node.Kind == report.KindFailure),
				boolToInt(node.Kind == report.KindSkipped),
				resultString(node.Result()),
				node.Reason,
			})

			return
		}

		stats := node.Stats()
		t.AppendRow(table.Row{
			"Suite",
			name,
			formatDuration(node.TotalDuration()),
			"-",
			stats.Passed,
			stats.Failed,
			stats.Skipped,
			resultString(node.Result()),
			"",
		})
	})

	switch rep.Result() {
	case report.ResultFailure:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	stats := rep.Stats()
	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(rep.TotalDuration()),
		stats.Total,
		stats.Passed,
		stats.Failed,
		stats.Skipped,
		resultString(rep.Result()),
		timedOut(stats),
	})

	t.Render()
}

func resultString(r report.Result) string {
	switch r {
	case report.ResultSuccess:
		return "✓ pass"
	case report.ResultFailure:
		return "✗ fail"
	default:
		return "- skip"
	}
}

func timedOut(stats report.Stats) string {
	if stats.TimedOut == 0 {
		return ""
	}

	return fmt.Sprintf("%d timed out", stats.TimedOut)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
