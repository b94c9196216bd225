package reporter

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/ethpandaops/testoor/pkg/report"
)

// MaxMarkdownChars keeps a markdown summary under the GitHub step summary limit.
const MaxMarkdownChars = 65000

// GenerateMarkdown renders rep as a markdown summary capped at maxChars
// characters. A non-positive maxChars disables the cap. The failed tests
// section comes last and is truncated first.
func GenerateMarkdown(rep *report.Report, elapsed time.Duration, maxChars int) string {
	var sb strings.Builder

	sb.Grow(4096)

	fmt.Fprintf(&sb, "# Test Run: %s\n\n", rep.Name)

	writeMarkdownOverview(&sb, rep, elapsed)
	writeMarkdownSuites(&sb, rep)
	writeMarkdownFailures(&sb, rep, maxChars)

	return sb.String()
}

// AppendMarkdown appends the markdown summary of rep to the file at path,
// creating it when missing.
func AppendMarkdown(path string, rep *report.Report, elapsed time.Duration) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening markdown summary: %w", err)
	}

	if _, err := f.WriteString(GenerateMarkdown(rep, elapsed, MaxMarkdownChars)); err != nil {
		_ = f.Close()

		return fmt.Errorf("writing markdown summary: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing markdown summary: %w", err)
	}

	return nil
}

func writeMarkdownOverview(sb *strings.Builder, rep *report.Report, elapsed time.Duration) {
	stats := rep.Stats()

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|---|---|\n")
	fmt.Fprintf(sb, "| Result | %s |\n", resultString(rep.Result()))
	fmt.Fprintf(sb, "| Elapsed | %s |\n", units.HumanDuration(elapsed))
	fmt.Fprintf(sb, "| Test Time | %s |\n", formatDuration(rep.TotalDuration()))
	fmt.Fprintf(sb, "| Tests | %d |\n", stats.Total)
	fmt.Fprintf(sb, "| Passed | %d |\n", stats.Passed)
	fmt.Fprintf(sb, "| Failed | %d |\n", stats.Failed)
	fmt.Fprintf(sb, "| Skipped | %d |\n", stats.Skipped)

	if stats.TimedOut > 0 {
		fmt.Fprintf(sb, "| Timed Out | %d |\n", stats.TimedOut)
	}

	sb.WriteString("\n")
}

func writeMarkdownSuites(sb *strings.Builder, rep *report.Report) {
	sb.WriteString("## Suites\n\n")
	sb.WriteString("| Suite | Passed | Failed | Skipped | Result |\n")
	sb.WriteString("|---|---:|---:|---:|---|\n")

	rep.Walk(func(path []string, node *report.Report) {
		if node.IsLeaf() {
			return
		}

		stats := node.Stats()
		fmt.Fprintf(sb, "| %s | %d | %d | %d | %s |\n",
			markdownCell(strings.Join(path, " / ")),
			stats.Passed, stats.Failed, stats.Skipped,
			resultString(node.Result()))
	})

	sb.WriteString("\n")
}

func writeMarkdownFailures(sb *strings.Builder, rep *report.Report, maxChars int) {
	type failure struct {
		path string
		node *report.Report
	}

	var failed []failure

	rep.Walk(func(path []string, node *report.Report) {
		if node.Kind == report.KindFailure {
			failed = append(failed, failure{path: strings.Join(path, " / "), node: node})
		}
	})

	if len(failed) == 0 {
		return
	}

	sb.WriteString("## Failed Tests\n\n")
	sb.WriteString("| Test | Failure | Reason |\n")
	sb.WriteString("|---|---|---|\n")

	// Reserve space for the truncation message.
	const reserveChars = 100

	for i, f := range failed {
		row := fmt.Sprintf("| %s | %s | %s |\n",
			markdownCell(f.path), f.node.Failure, markdownCell(f.node.Reason))

		if maxChars > 0 && sb.Len()+len(row)+reserveChars > maxChars {
			fmt.Fprintf(sb,
				"\n*%d more failed test(s) not shown "+
					"(output truncated at %d chars)*\n",
				len(failed)-i, maxChars)

			return
		}

		sb.WriteString(row)
	}
}

var markdownCellReplacer = strings.NewReplacer("|", "\\|", "\r\n", "<br>", "\n", "<br>")

func markdownCell(s string) string {
	return markdownCellReplacer.Replace(s)
}
